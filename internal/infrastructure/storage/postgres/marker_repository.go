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

type MarkerRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewMarkerRepository(pool *pgxpool.Pool, log *slog.Logger) *MarkerRepository {
	return &MarkerRepository{
		pool: pool,
		log:  log.With("component", "marker_repository"),
	}
}

const markerColumns = `id, lon, lat, marker_type, title, volume, audio_status`

func (r *MarkerRepository) List(ctx context.Context) ([]marker.Marker, error) {
	const query = `SELECT ` + markerColumns + ` FROM markers ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list markers", "error", err)
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	markers := make([]marker.Marker, 0)
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		markers = append(markers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markers: %w", err)
	}

	return markers, nil
}

func (r *MarkerRepository) Get(ctx context.Context, id int) (*marker.Marker, error) {
	const query = `SELECT ` + markerColumns + ` FROM markers WHERE id = $1`

	m, err := scanMarker(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, marker.ErrNotFound
		}
		r.log.Error("failed to get marker", "marker_id", id, "error", err)
		return nil, fmt.Errorf("get marker: %w", err)
	}

	return m, nil
}

func (r *MarkerRepository) Create(ctx context.Context, m *marker.Marker) (int, error) {
	const query = `
		INSERT INTO markers (lon, lat, marker_type, title, volume, audio_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		m.Position.Lon, m.Position.Lat, int(m.Type), m.Title, m.Volume, int(m.AudioStatus),
	).Scan(&m.ID)
	if err != nil {
		r.log.Error("failed to create marker", "error", err)
		return 0, fmt.Errorf("create marker: %w", err)
	}

	return m.ID, nil
}

func (r *MarkerRepository) Update(ctx context.Context, m *marker.Marker) error {
	const query = `
		UPDATE markers
		SET lon = $2, lat = $3, marker_type = $4, title = $5, volume = $6,
		    audio_status = $7, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		m.ID, m.Position.Lon, m.Position.Lat, int(m.Type), m.Title, m.Volume, int(m.AudioStatus),
	)
	if err != nil {
		r.log.Error("failed to update marker", "marker_id", m.ID, "error", err)
		return fmt.Errorf("update marker: %w", err)
	}
	if result.RowsAffected() == 0 {
		return marker.ErrNotFound
	}

	return nil
}

func (r *MarkerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM markers WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete marker", "marker_id", id, "error", err)
		return fmt.Errorf("delete marker: %w", err)
	}
	if result.RowsAffected() == 0 {
		return marker.ErrNotFound
	}

	return nil
}

func (r *MarkerRepository) SetAudioStatus(ctx context.Context, id int, status marker.AudioStatus) error {
	const query = `UPDATE markers SET audio_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, int(status))
	if err != nil {
		return fmt.Errorf("set audio status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return marker.ErrNotFound
	}

	return nil
}

func scanMarker(row pgx.Row) (*marker.Marker, error) {
	var (
		m           marker.Marker
		markerType  int
		audioStatus int
	)

	err := row.Scan(&m.ID, &m.Position.Lon, &m.Position.Lat, &markerType, &m.Title, &m.Volume, &audioStatus)
	if err != nil {
		return nil, err
	}
	m.Type = marker.Type(markerType)
	m.AudioStatus = marker.AudioStatus(audioStatus)

	return &m, nil
}
