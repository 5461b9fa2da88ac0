package marker

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"noisemap/internal/domain/push"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slog"
)

// DefaultMaxAudioBytes ограничивает размер одной записи.
const DefaultMaxAudioBytes = 10 << 20

// Notifier fans out marker changes to push subscribers.
type Notifier interface {
	Publish(e push.Event)
}

type Servicer interface {
	List(ctx context.Context) ([]Marker, error)
	Find(ctx context.Context, id int) (*Marker, error)
	Create(ctx context.Context, m Marker) (int, error)
	Update(ctx context.Context, m Marker) error
	Delete(ctx context.Context, id int) error
	SaveAudio(ctx context.Context, id int, contentType string, data []byte) error
	Audio(ctx context.Context, id int) (*AudioClip, error)
}

type ServiceConfig struct {
	MaxAudioBytes int64
}

// Service implements marker business logic and publishes a push event for
// every successful change.
type Service struct {
	repo     Repository
	audio    AudioRepository
	notifier Notifier
	log      *slog.Logger
	config   *ServiceConfig
}

func NewService(repo Repository, audio AudioRepository, notifier Notifier, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil || config.MaxAudioBytes <= 0 {
		config = &ServiceConfig{MaxAudioBytes: DefaultMaxAudioBytes}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Service{
		repo:     repo,
		audio:    audio,
		notifier: notifier,
		log:      log.With("component", "marker_service"),
		config:   config,
	}
}

// List returns every marker.
func (s *Service) List(ctx context.Context) ([]Marker, error) {
	markers, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list markers", "error", err)
		return nil, fmt.Errorf("list markers: %w", err)
	}
	return markers, nil
}

// Find returns a marker by ID.
func (s *Service) Find(ctx context.Context, id int) (*Marker, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to find marker", "marker_id", id, "error", err)
		return nil, fmt.Errorf("find marker: %w", err)
	}
	return m, nil
}

// Create stores a new marker. The ID of m is ignored.
func (s *Service) Create(ctx context.Context, m Marker) (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	m.ID = 0

	id, err := s.repo.Create(ctx, &m)
	if err != nil {
		s.log.Error("failed to create marker", "error", err)
		return 0, fmt.Errorf("create marker: %w", err)
	}

	s.log.Info("marker created", "marker_id", id)
	s.notifier.Publish(push.Add(id))

	return id, nil
}

// Update overwrites a marker. Last write wins.
func (s *Service) Update(ctx context.Context, m Marker) error {
	if err := m.Validate(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, &m); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to update marker", "marker_id", m.ID, "error", err)
		return fmt.Errorf("update marker: %w", err)
	}

	s.log.Info("marker updated", "marker_id", m.ID)
	s.notifier.Publish(push.Update(m.ID))

	return nil
}

// Delete removes a marker together with its audio clip.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		s.log.Error("failed to delete marker", "marker_id", id, "error", err)
		return fmt.Errorf("delete marker: %w", err)
	}

	s.log.Info("marker deleted", "marker_id", id)
	s.notifier.Publish(push.Delete(id))

	return nil
}

// SaveAudio stores the clip for marker id and flags the marker as recorded.
func (s *Service) SaveAudio(ctx context.Context, id int, contentType string, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyAudio
	}
	if int64(len(data)) > s.config.MaxAudioBytes {
		return ErrAudioTooLarge
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if _, err := s.Find(ctx, id); err != nil {
		return err
	}

	sum := blake2b.Sum256(data)
	clip := &AudioClip{
		MarkerID:    id,
		ContentType: contentType,
		Data:        data,
		Digest:      hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
		UpdatedAt:   time.Now(),
	}

	if err := s.audio.SaveAudio(ctx, clip); err != nil {
		s.log.Error("failed to save audio", "marker_id", id, "error", err)
		return fmt.Errorf("save audio: %w", err)
	}

	if err := s.repo.SetAudioStatus(ctx, id, AudioRecorded); err != nil {
		s.log.Error("failed to set audio status", "marker_id", id, "error", err)
		return fmt.Errorf("set audio status: %w", err)
	}

	s.log.Info("audio saved", "marker_id", id, "size", clip.Size, "digest", clip.Digest)
	s.notifier.Publish(push.Update(id))

	return nil
}

// Audio returns the stored clip of marker id.
func (s *Service) Audio(ctx context.Context, id int) (*AudioClip, error) {
	clip, err := s.audio.GetAudio(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAudioNotFound) {
			return nil, ErrAudioNotFound
		}
		s.log.Error("failed to get audio", "marker_id", id, "error", err)
		return nil, fmt.Errorf("get audio: %w", err)
	}
	return clip, nil
}

type nopNotifier struct{}

func (nopNotifier) Publish(push.Event) {}
