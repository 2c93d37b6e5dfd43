package postgres

import (
	"context"
	"errors"
	"time"

	"go-interview-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// audioCacheRepo is the durable audio cache. Rows are immutable: the same
// cache key always maps to the same bytes, so a write race between two
// synthesizers of the same content is resolved with ON CONFLICT DO NOTHING.
type audioCacheRepo struct {
	db *pgxpool.Pool
}

// NewAudioCacheRepository creates a new audio cache repository
func NewAudioCacheRepository(db *pgxpool.Pool) domain.AudioCacheRepository {
	return &audioCacheRepo{db: db}
}

func (r *audioCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT audio FROM audio_cache WHERE cache_key = $1`
	var audio []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&audio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return audio, nil
}

func (r *audioCacheRepo) Put(ctx context.Context, key string, audio []byte, req domain.SynthesisRequest) error {
	query := `
		INSERT INTO audio_cache (cache_key, audio, byte_size, voice_id, model_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cache_key) DO NOTHING`

	_, err := r.db.Exec(ctx, query, key, audio, len(audio), req.VoiceID, req.ModelID, time.Now())
	return err
}
