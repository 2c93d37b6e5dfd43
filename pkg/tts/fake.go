package tts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
)

// fakeClient returns deterministic synthetic audio with zero external calls.
// It is contractually identical to the real client, which lets the chunking,
// caching and streaming logic be tested without a provider. It is also the
// automatic fallback when no API key is configured.
type fakeClient struct{}

// NewFakeClient builds the deterministic test-mode client.
func NewFakeClient() Client {
	return fakeClient{}
}

func (fakeClient) IsConfigured() bool { return true }

// fakeAudio derives bytes purely from the request tuple: same request, same
// bytes, with length proportional to the text so duration-ish behavior is
// preserved.
func fakeAudio(req Request) []byte {
	seed := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.3f|%.3f|%s",
		req.Text, req.VoiceID, req.Stability, req.SimilarityBoost, req.ModelID)))

	size := 256 + 16*len(req.Text)
	out := make([]byte, 0, size)
	block := seed[:]
	for len(out) < size {
		out = append(out, block...)
		next := sha256.Sum256(block)
		block = next[:]
	}
	return out[:size]
}

func (fakeClient) Synthesize(_ context.Context, req Request) ([]byte, error) {
	return fakeAudio(req), nil
}

func (fakeClient) Stream(_ context.Context, req Request) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(fakeAudio(req))), nil
}

func (fakeClient) Voices(_ context.Context) ([]Voice, error) {
	return []Voice{
		{ID: "fake-voice-rachel", Name: "Rachel", Category: "premade"},
		{ID: "fake-voice-adam", Name: "Adam", Category: "premade"},
		{ID: "fake-voice-bella", Name: "Bella", Category: "premade"},
	}, nil
}
