package tts

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFakeClientDeterministic(t *testing.T) {
	c := NewFakeClient()
	req := Request{Text: "Describe a conflict you resolved.", VoiceID: "fake-voice-rachel", Stability: 0.5, SimilarityBoost: 0.75, ModelID: "m1"}

	a, err := c.Synthesize(context.Background(), req)
	assert.NoError(t, err)
	b, err := c.Synthesize(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, a, b)

	// A different tuple yields different audio.
	req2 := req
	req2.VoiceID = "fake-voice-adam"
	other, err := c.Synthesize(context.Background(), req2)
	assert.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestFakeClientStreamMatchesSynthesize(t *testing.T) {
	c := NewFakeClient()
	req := Request{Text: "Walk me through your resume.", VoiceID: "v", ModelID: "m"}

	buf, err := c.Synthesize(context.Background(), req)
	assert.NoError(t, err)

	stream, err := c.Stream(context.Background(), req)
	assert.NoError(t, err)
	defer stream.Close()
	streamed, err := io.ReadAll(stream)
	assert.NoError(t, err)

	assert.Equal(t, buf, streamed)
}

func TestFakeClientFixedVoices(t *testing.T) {
	c := NewFakeClient()
	voices, err := c.Voices(context.Background())
	assert.NoError(t, err)
	assert.Len(t, voices, 3)
	assert.Equal(t, "fake-voice-rachel", voices[0].ID)
}
