package client

import (
	"noisemap/internal/domain/marker"

	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// Renderer получает полный набор маркеров после каждого изменения хранилища.
type Renderer interface {
	Refresh(markers []marker.Marker) error
}

// Store - упорядоченный набор маркеров клиента. Не потокобезопасен:
// изменять его может только горутина-владелец App.
type Store struct {
	markers  []marker.Marker
	renderer Renderer
	log      *slog.Logger
}

func NewStore(renderer Renderer, log *slog.Logger) *Store {
	return &Store{
		markers:  []marker.Marker{},
		renderer: renderer,
		log:      log.With("component", "marker_store"),
	}
}

// Add добавляет m в конец. Повторный ID добавляется еще раз.
func (s *Store) Add(m marker.Marker) {
	s.markers = append(s.markers, m)
	s.refresh()
}

// Remove удаляет все записи с данным ID.
func (s *Store) Remove(id int) {
	s.markers = lo.Reject(s.markers, func(m marker.Marker, _ int) bool {
		return m.ID == id
	})
	s.refresh()
}

// ReplaceAll заменяет набор целиком.
func (s *Store) ReplaceAll(markers []marker.Marker) {
	s.markers = append(make([]marker.Marker, 0, len(markers)), markers...)
	s.refresh()
}

// Find возвращает первую запись с данным ID.
func (s *Store) Find(id int) (marker.Marker, bool) {
	return lo.Find(s.markers, func(m marker.Marker) bool {
		return m.ID == id
	})
}

// Markers возвращает копию текущего набора.
func (s *Store) Markers() []marker.Marker {
	return append([]marker.Marker(nil), s.markers...)
}

func (s *Store) Len() int {
	return len(s.markers)
}

// IDs возвращает ID маркеров в порядке хранилища.
func (s *Store) IDs() []int {
	return lo.Map(s.markers, func(m marker.Marker, _ int) int {
		return m.ID
	})
}

func (s *Store) refresh() {
	if s.renderer == nil {
		return
	}
	if err := s.renderer.Refresh(s.Markers()); err != nil {
		s.log.Warn("Не удалось обновить слой", "error", err)
	}
}
