package client

import (
	"testing"

	"noisemap/internal/domain/marker"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

// countingRenderer запоминает каждый вызов Refresh.
type countingRenderer struct {
	calls [][]marker.Marker
	err   error
}

func (r *countingRenderer) Refresh(markers []marker.Marker) error {
	r.calls = append(r.calls, markers)
	return r.err
}

func (r *countingRenderer) last() []marker.Marker {
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func mk(id int) marker.Marker {
	return marker.Marker{ID: id, Position: marker.Position{Lon: float64(id), Lat: float64(id)}}
}

func TestStore_MutationsRefreshOnce(t *testing.T) {
	r := &countingRenderer{}
	s := NewStore(r, slog.Default())

	s.ReplaceAll([]marker.Marker{mk(1), mk(2)})
	assert.Len(t, r.calls, 1)

	s.Add(mk(3))
	assert.Len(t, r.calls, 2)

	s.Remove(2)
	assert.Len(t, r.calls, 3)

	assert.Equal(t, []int{1, 3}, s.IDs())
	assert.Equal(t, s.Markers(), r.last())
}

func TestStore_AddDuplicates(t *testing.T) {
	s := NewStore(nil, slog.Default())

	s.Add(mk(1))
	s.Add(mk(1))

	assert.Equal(t, []int{1, 1}, s.IDs())
}

func TestStore_RemoveAllMatching(t *testing.T) {
	s := NewStore(nil, slog.Default())
	s.ReplaceAll([]marker.Marker{mk(1), mk(2), mk(1), mk(3)})

	s.Remove(1)

	assert.Equal(t, []int{2, 3}, s.IDs())
}

func TestStore_RemoveMissingKeepsOthers(t *testing.T) {
	s := NewStore(nil, slog.Default())
	s.ReplaceAll([]marker.Marker{mk(1), mk(2)})

	s.Remove(42)

	assert.Equal(t, []int{1, 2}, s.IDs())
}

func TestStore_Find(t *testing.T) {
	s := NewStore(nil, slog.Default())
	s.ReplaceAll([]marker.Marker{mk(1), mk(2)})

	m, ok := s.Find(2)
	assert.True(t, ok)
	assert.Equal(t, 2, m.ID)

	_, ok = s.Find(5)
	assert.False(t, ok)
}

func TestStore_RendererErrorIgnored(t *testing.T) {
	r := &countingRenderer{err: assert.AnError}
	s := NewStore(r, slog.Default())

	s.Add(mk(1))

	assert.Equal(t, 1, s.Len())
}

func TestStore_ReplaceAllCopiesInput(t *testing.T) {
	s := NewStore(nil, slog.Default())
	in := []marker.Marker{mk(1)}

	s.ReplaceAll(in)
	in[0].ID = 99

	assert.Equal(t, []int{1}, s.IDs())
}
