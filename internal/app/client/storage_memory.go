package client

import (
	"noisemap/internal/domain/marker"
)

// MemoryStorage - кэш в памяти, используется если SQLite недоступен
type MemoryStorage struct {
	markers []marker.Marker
}

var _ Cache = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load() ([]marker.Marker, error) {
	return append([]marker.Marker{}, m.markers...), nil
}

func (m *MemoryStorage) Save(markers []marker.Marker) error {
	m.markers = append([]marker.Marker{}, markers...)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
