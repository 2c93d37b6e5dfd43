package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// elevenLabsClient is the real provider client. Every call is bounded by the
// configured timeout; connectivity failures surface as ErrUnreachable and
// provider error responses as *ProviderError.
type elevenLabsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewElevenLabsClient builds the real provider client.
func NewElevenLabsClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &elevenLabsClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *elevenLabsClient) IsConfigured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

type synthesisBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize performs a single non-streaming synthesis call and returns the
// full audio buffer (mp3).
func (c *elevenLabsClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", c.baseURL, req.VoiceID)
	body, err := c.post(ctx, url, req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audio body: %v", ErrUnreachable, err)
	}
	return audio, nil
}

// Stream performs a streaming synthesis call. The caller owns the returned
// reader and must close it; closing early aborts the provider transfer.
func (c *elevenLabsClient) Stream(ctx context.Context, req Request) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?output_format=mp3_44100_128", c.baseURL, req.VoiceID)
	return c.post(ctx, url, req)
}

func (c *elevenLabsClient) post(ctx context.Context, url string, req Request) (io.ReadCloser, error) {
	payload, err := json.Marshal(synthesisBody{
		Text:    req.Text,
		ModelID: req.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       req.Stability,
			SimilarityBoost: req.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return resp.Body, nil
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// Voices lists the voices available to the configured API key.
func (c *elevenLabsClient) Voices(ctx context.Context) ([]Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var parsed voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding voices response: %w", err)
	}
	return parsed.Voices, nil
}
