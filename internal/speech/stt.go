package speech

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

// Transcript is the speech-to-text capability's result shape.
type Transcript struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration"`
}

// STTClient talks to the speech-to-text capability service.
type STTClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSTTClient creates a transcription client with a bounded timeout.
func NewSTTClient(baseURL string, timeout time.Duration) *STTClient {
	return &STTClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transcribe sends raw audio bytes and returns the transcript. Callers
// treat failures as degraded (empty transcript), never fatal.
func (c *STTClient) Transcribe(ctx context.Context, audio []byte, filename string) (Transcript, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Transcript{}, fmt.Errorf("failed to write audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Transcript{}, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transcribe", &body)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Transcript{}, fmt.Errorf("STT API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result Transcript
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Transcript{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result, nil
}
