package layer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"noisemap/internal/domain/marker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func testMarkers() []marker.Marker {
	return []marker.Marker{
		{ID: 1, Position: marker.Position{Lon: 37.6173, Lat: 55.7558}, Type: marker.TypeUnchecked, Title: marker.StrPtr("Red Square")},
		{ID: 2, Position: marker.Position{Lon: 37.6175, Lat: 55.7558}, Type: marker.TypeChecked, Volume: 62, AudioStatus: marker.AudioRecorded},
		{ID: 3, Position: marker.Position{Lon: 30.3141, Lat: 59.9386}},
	}
}

func TestLayer_RefreshBuildsFeatures(t *testing.T) {
	l := New("", slog.Default())

	require.NoError(t, l.Refresh(testMarkers()))

	data, err := l.GeoJSON()
	require.NoError(t, err)

	var fc featureCollection
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)

	first := fc.Features[0]
	assert.Equal(t, "Point", first.Geometry.Type)
	assert.InDeltaSlice(t, []float64{37.6173, 55.7558}, first.Geometry.Coordinates, 1e-9)
	assert.Equal(t, "Red Square", first.Properties[PropTitle])
	assert.EqualValues(t, 1, first.Properties[PropID])
	assert.EqualValues(t, 1, first.Properties[PropType])

	second := fc.Features[1]
	assert.Equal(t, marker.DefaultTitle, second.Properties[PropTitle])
	assert.EqualValues(t, 62, second.Properties[PropVolume])
	assert.EqualValues(t, 1, second.Properties[PropAudioStatus])

	assert.Equal(t, 1, l.Refreshes())
	assert.Equal(t, 3, l.Len())
}

func TestLayer_QueryAt(t *testing.T) {
	l := New("", slog.Default())
	require.NoError(t, l.Refresh(testMarkers()))

	// Маркеры 1 и 2 в ~22 м друг от друга в метрах проекции.
	ids, err := l.QueryAt(37.6173, 55.7558, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	ids, err = l.QueryAt(37.6173, 55.7558, 50)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	ids, err = l.QueryAt(0, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLayer_QueryAtOutOfRange(t *testing.T) {
	l := New("", slog.Default())

	_, err := l.QueryAt(0, 89.9, 10)

	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLayer_RefreshReplacesIndex(t *testing.T) {
	l := New("", slog.Default())
	require.NoError(t, l.Refresh(testMarkers()))
	require.NoError(t, l.Refresh(testMarkers()[2:]))

	ids, err := l.QueryAt(37.6173, 55.7558, 50)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 2, l.Refreshes())
}

func TestLayer_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.geojson")
	l := New(path, slog.Default())

	require.NoError(t, l.Refresh(testMarkers()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc featureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Len(t, fc.Features, 3)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}
