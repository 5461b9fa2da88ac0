// Package layer отрисовывает маркеры как источник GeoJSON и отвечает на
// запросы попадания по точке.
//
// Поиск идет по R-дереву в метрах Web Mercator (EPSG:3857).
package layer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"noisemap/internal/domain/marker"

	"github.com/dhconnelly/rtreego"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
	"golang.org/x/exp/slog"
)

const (
	dimensions  = 2
	minChildren = 2
	maxChildren = 16

	// за пределами этой широты Web Mercator вырождается
	maxMercatorLat = 85.05112878
)

var ErrOutOfRange = errors.New("координаты вне диапазона web mercator")

// Свойства отрисованного объекта.
const (
	PropID          = "id"
	PropTitle       = "title"
	PropType        = "type"
	PropIcon        = "icon"
	PropVolume      = "volume"
	PropAudioStatus = "audio-status"
)

// pointTolerance - полуразмер прямоугольника точки в индексе, метры.
const pointTolerance = 0.01

type item struct {
	id   int
	x, y float64
	rect *rtreego.Rect
}

func (i *item) Bounds() *rtreego.Rect {
	return i.rect
}

// Layer хранит последнюю коллекцию объектов и ее пространственный индекс.
type Layer struct {
	mu         sync.RWMutex
	collection geom.GeoJSONFeatureCollection
	tree       *rtreego.Rtree
	refreshes  int

	toMercator func(a, b, c float64) (float64, float64, float64)
	path       string
	log        *slog.Logger
}

// New создает пустой слой. Если path задан, каждое обновление пишет
// коллекцию в этот файл.
func New(path string, log *slog.Logger) *Layer {
	if log == nil {
		log = slog.Default()
	}

	return &Layer{
		collection: geom.GeoJSONFeatureCollection{},
		tree:       rtreego.NewTree(dimensions, minChildren, maxChildren),
		toMercator: wgs84.EPSG().Transform(4326, 3857),
		path:       path,
		log:        log.With("component", "render_layer"),
	}
}

// Refresh перестраивает коллекцию и индекс.
func (l *Layer) Refresh(markers []marker.Marker) error {
	features := make(geom.GeoJSONFeatureCollection, 0, len(markers))
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)

	for _, m := range markers {
		pt, err := geom.NewPoint(geom.Coordinates{
			XY: geom.XY{X: m.Position.Lon, Y: m.Position.Lat},
		})
		if err != nil {
			l.log.Warn("Пропущен маркер с некорректными координатами", "id", m.ID, "error", err)
			continue
		}

		features = append(features, geom.GeoJSONFeature{
			Geometry: pt.AsGeometry(),
			ID:       m.ID,
			Properties: map[string]interface{}{
				PropID:          m.ID,
				PropTitle:       m.DisplayTitle(),
				PropType:        int(m.Type),
				PropIcon:        m.Type.Icon(),
				PropVolume:      m.Volume,
				PropAudioStatus: int(m.AudioStatus),
			},
		})

		x, y, err := l.project(m.Position.Lon, m.Position.Lat)
		if err != nil {
			l.log.Debug("Маркер не попал в индекс", "id", m.ID, "error", err)
			continue
		}
		tree.Insert(&item{id: m.ID, x: x, y: y, rect: rtreego.Point{x, y}.ToRect(pointTolerance)})
	}

	l.mu.Lock()
	l.collection = features
	l.tree = tree
	l.refreshes++
	l.mu.Unlock()

	if l.path == "" {
		return nil
	}
	return l.writeFile(features)
}

// QueryAt возвращает ID маркеров не дальше toleranceMeters от точки,
// ближайшие первыми.
func (l *Layer) QueryAt(lon, lat, toleranceMeters float64) ([]int, error) {
	x, y, err := l.project(lon, lat)
	if err != nil {
		return nil, err
	}
	if toleranceMeters <= 0 {
		toleranceMeters = 1
	}

	bounds, err := rtreego.NewRect(
		rtreego.Point{x - toleranceMeters, y - toleranceMeters},
		[]float64{2 * toleranceMeters, 2 * toleranceMeters},
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка границ запроса: %w", err)
	}

	l.mu.RLock()
	found := l.tree.SearchIntersect(bounds)
	l.mu.RUnlock()

	type hit struct {
		id   int
		dist float64
	}
	hits := make([]hit, 0, len(found))
	for _, s := range found {
		it := s.(*item)
		d := math.Hypot(it.x-x, it.y-y)
		if d > toleranceMeters {
			continue
		}
		hits = append(hits, hit{id: it.id, dist: d})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids, nil
}

// GeoJSON возвращает текущую коллекцию.
func (l *Layer) GeoJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return json.Marshal(l.collection)
}

// Len возвращает число отрисованных объектов.
func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.collection)
}

// Refreshes возвращает число перестроений слоя.
func (l *Layer) Refreshes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.refreshes
}

func (l *Layer) project(lon, lat float64) (float64, float64, error) {
	if lat < -maxMercatorLat || lat > maxMercatorLat || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: lon=%v lat=%v", ErrOutOfRange, lon, lat)
	}
	x, y, _ := l.toMercator(lon, lat, 0)
	return x, y, nil
}

// writeFile пишет во временный файл и переименовывает его, чтобы читатель
// никогда не видел частично записанный слой.
func (l *Layer) writeFile(features geom.GeoJSONFeatureCollection) error {
	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("ошибка сериализации слоя: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".layer-*.geojson")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла слоя: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи слоя: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия слоя: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("ошибка замены файла слоя: %w", err)
	}
	return nil
}
