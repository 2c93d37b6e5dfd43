package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SynthesisRequest identifies one logical piece of speech. Two requests with
// the same normalized tuple always produce the same audio, which is what
// makes the cache key stable.
type SynthesisRequest struct {
	Text            string  `json:"text"`
	VoiceID         string  `json:"voice_id"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	ModelID         string  `json:"model_id"`
}

// CacheKey returns the stable content hash of the request tuple. Text is
// normalized (trimmed, inner whitespace collapsed) so cosmetic differences
// in question text do not fragment the cache.
func (r SynthesisRequest) CacheKey() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%.3f|%.3f|%s",
		NormalizeSpeechText(r.Text), r.VoiceID, r.Stability, r.SimilarityBoost, r.ModelID)
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeSpeechText collapses runs of whitespace (including newlines) into
// single spaces and trims the ends.
func NormalizeSpeechText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// AudioChunk is one ordered fragment of synthesized speech. Chunks for a
// request are always delivered in Index order. A terminal failure travels on
// the last chunk's Err; Data and Err are never both set.
type AudioChunk struct {
	Index int
	Data  []byte
	Err   error
}

// Voice describes one selectable provider voice.
type Voice struct {
	ID       string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// AudioCacheRepository is the durable store for synthesized audio. Entries
// are immutable once written (same key ⇒ same bytes), so concurrent writers
// racing to populate a key are harmless and no invalidation exists beyond
// storage-layer eviction.
type AudioCacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error) // ErrNotFound on miss
	Put(ctx context.Context, key string, audio []byte, req SynthesisRequest) error
}

// VoiceUsecase is the synthesis gateway: chunking, caching, streaming and
// warmup sit behind it.
type VoiceUsecase interface {
	// Synthesize returns the fully materialized audio for the request,
	// serving from cache when possible and populating it otherwise.
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
	// Stream lazily produces ordered audio chunks for immediate playback.
	// The producer stops when ctx is cancelled (consumer disconnect).
	Stream(ctx context.Context, req SynthesisRequest) (<-chan AudioChunk, error)
	// Warmup pre-renders audio for every question of the interview on a
	// bounded worker pool. Fire-and-forget: it returns the number of items
	// queued and never blocks on, or fails with, synthesis results.
	Warmup(ctx context.Context, interviewID int64) (int, error)
	// CancelWarmup aborts any in-flight warmup for the interview. Called
	// when the interview reaches a terminal state.
	CancelWarmup(interviewID int64)
	Voices(ctx context.Context) ([]Voice, error)
}

// VoiceCloneUsage records the last clone per requesting user for cooldown
// enforcement.
type VoiceCloneUsage struct {
	UserID      string    `json:"user_id"`
	LastCloneAt time.Time `json:"last_clone_at"`
}

// VoiceCloneRepository persists clone usage. TryRecord must be atomic per
// user: of two concurrent calls inside the cooldown window, exactly one may
// succeed.
type VoiceCloneRepository interface {
	// TryRecord records a clone at `now` if the user's previous clone is
	// older than the cooldown. Returns false when still cooling down.
	TryRecord(ctx context.Context, userID string, now time.Time, cooldown time.Duration) (bool, error)
}

// VoiceCloneUsecase enforces the per-user clone cooldown.
type VoiceCloneUsecase interface {
	CheckAndRecord(ctx context.Context, userID string) error
}
