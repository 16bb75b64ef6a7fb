// Package vision provides the client for the facial-emotion inference
// capability. The descriptor it returns is opaque to the orchestrator and
// attached verbatim to evaluations.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// FallbackDescriptor is returned when the capability is unavailable.
var FallbackDescriptor = json.RawMessage(`{"emotion":"unknown"}`)

// EmotionClient talks to the emotion inference capability service.
type EmotionClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewEmotionClient creates an emotion inference client with a bounded
// timeout.
func NewEmotionClient(baseURL string, timeout time.Duration) *EmotionClient {
	return &EmotionClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze sends raw image bytes and returns the opaque emotion descriptor.
func (c *EmotionClient) Analyze(ctx context.Context, image []byte, filename string) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/emotion", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emotion API error [%d]: %s", resp.StatusCode, string(respBody))
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("emotion API returned invalid JSON")
	}
	return json.RawMessage(respBody), nil
}
