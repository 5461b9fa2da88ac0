package postgres

import (
	"context"
	"errors"
	"fmt"

	"noisemap/internal/domain/marker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

// AudioRepository хранит аудиозаписи в bytea; одна запись на маркер.
type AudioRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewAudioRepository(pool *pgxpool.Pool, log *slog.Logger) *AudioRepository {
	return &AudioRepository{
		pool: pool,
		log:  log.With("component", "audio_repository"),
	}
}

func (r *AudioRepository) SaveAudio(ctx context.Context, clip *marker.AudioClip) error {
	const query = `
		INSERT INTO marker_audio (marker_id, content_type, data, digest, size, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (marker_id) DO UPDATE
		SET content_type = EXCLUDED.content_type,
		    data = EXCLUDED.data,
		    digest = EXCLUDED.digest,
		    size = EXCLUDED.size,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		clip.MarkerID, clip.ContentType, clip.Data, clip.Digest, clip.Size, clip.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to save audio", "marker_id", clip.MarkerID, "error", err)
		return fmt.Errorf("save audio: %w", err)
	}

	return nil
}

func (r *AudioRepository) GetAudio(ctx context.Context, markerID int) (*marker.AudioClip, error) {
	const query = `
		SELECT marker_id, content_type, data, digest, size, updated_at
		FROM marker_audio
		WHERE marker_id = $1`

	var clip marker.AudioClip
	err := r.pool.QueryRow(ctx, query, markerID).Scan(
		&clip.MarkerID, &clip.ContentType, &clip.Data, &clip.Digest, &clip.Size, &clip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, marker.ErrAudioNotFound
		}
		r.log.Error("failed to get audio", "marker_id", markerID, "error", err)
		return nil, fmt.Errorf("get audio: %w", err)
	}

	return &clip, nil
}
