// Package tts talks to an ElevenLabs-compatible text-to-speech provider.
// It ships two implementations of the same Client contract: a real HTTP
// client and a deterministic fake for tests and unconfigured deployments.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Request is a single provider synthesis call. Callers are responsible for
// keeping Text under the provider's per-request character limit (see
// SplitText).
type Request struct {
	Text            string
	VoiceID         string
	Stability       float64
	SimilarityBoost float64
	ModelID         string
}

// Voice is one selectable provider voice.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ErrUnreachable marks connectivity failures (DNS, dial, timeout). Callers
// can retry later. Provider-returned error responses are *ProviderError
// instead, so "retry later" and "bad request" stay distinguishable.
var ErrUnreachable = errors.New("tts provider unreachable")

// ProviderError is a non-2xx response from the provider itself.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts provider returned %d: %s", e.StatusCode, e.Body)
}

// Client is the provider contract. Synthesize materializes the full audio;
// Stream hands back the provider's byte stream for incremental playback.
type Client interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	Stream(ctx context.Context, req Request) (io.ReadCloser, error)
	Voices(ctx context.Context) ([]Voice, error)
	IsConfigured() bool
}
