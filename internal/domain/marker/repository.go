package marker

import (
	"context"
)

// Repository хранит маркеры.
type Repository interface {
	List(ctx context.Context) ([]Marker, error)
	Get(ctx context.Context, id int) (*Marker, error)
	Create(ctx context.Context, m *Marker) (int, error)
	Update(ctx context.Context, m *Marker) error
	Delete(ctx context.Context, id int) error
	SetAudioStatus(ctx context.Context, id int, status AudioStatus) error
}

// AudioRepository хранит аудиозаписи, привязанные к маркерам.
type AudioRepository interface {
	SaveAudio(ctx context.Context, clip *AudioClip) error
	GetAudio(ctx context.Context, markerID int) (*AudioClip, error)
}
