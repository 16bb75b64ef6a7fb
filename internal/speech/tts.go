package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Synthesizer converts question text into an opaque audio reference. A
// failed synthesis degrades to an empty reference; the session continues.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// TTSClient talks to the text-to-speech capability service.
type TTSClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTTSClient creates a synthesis client with a bounded timeout.
func NewTTSClient(baseURL string, timeout time.Duration) *TTSClient {
	return &TTSClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize returns the audio reference (URL or path) for the text.
func (c *TTSClient) Synthesize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/synthesize", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("TTS API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		AudioURL string `json:"audio_url"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.AudioURL, nil
}
