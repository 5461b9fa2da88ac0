package marker

import (
	"math"
	"time"
)

// Type - состояние точки на карте, определяет иконку маркера.
type Type int

const (
	TypeEmpty     Type = 0
	TypeUnchecked Type = 1
	TypeChecked   Type = 2
)

// Valid сообщает, известен ли тип.
func (t Type) Valid() bool {
	return t >= TypeEmpty && t <= TypeChecked
}

// Icon возвращает имя изображения, которым тип рисуется на карте.
func (t Type) Icon() string {
	switch t {
	case TypeUnchecked:
		return "unchecked-point"
	case TypeChecked:
		return "checked-point"
	default:
		return "empty-point"
	}
}

// AudioStatus показывает, прикреплена ли к маркеру аудиозапись.
type AudioStatus int

const (
	AudioNone     AudioStatus = 0
	AudioRecorded AudioStatus = 1
)

func (s AudioStatus) Valid() bool {
	return s == AudioNone || s == AudioRecorded
}

// DefaultTitle is shown for markers that have no title yet.
const DefaultTitle = "New marker"

// amplitudeRef is the reference amplitude for the decibel scale.
const amplitudeRef = 1.2

// Position is a WGS84 point.
type Position struct {
	Lon float64
	Lat float64
}

func (p Position) Valid() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90 &&
		!math.IsNaN(p.Lon) && !math.IsNaN(p.Lat)
}

// Marker is a point of interest with optional audio recording metadata.
// A marker with AudioStatus == AudioRecorded is expected to have an audio
// clip stored on the server under the same ID.
type Marker struct {
	ID          int
	Position    Position
	Type        Type
	Title       *string
	Volume      int
	AudioStatus AudioStatus
}

// DisplayTitle returns the title or DefaultTitle when none is set.
func (m Marker) DisplayTitle() string {
	if m.Title == nil {
		return DefaultTitle
	}
	return *m.Title
}

// AttachAudio marks the marker as having a fresh recording of the given loudness.
func (m *Marker) AttachAudio(volume int) {
	if volume < 0 {
		volume = 0
	}
	m.Volume = volume
	m.AudioStatus = AudioRecorded
	m.Type = TypeUnchecked
}

// DetachAudio resets the recording state.
func (m *Marker) DetachAudio() {
	m.Volume = 0
	m.AudioStatus = AudioNone
	m.Type = TypeEmpty
}

// Validate проверяет инварианты маркера перед сохранением.
func (m Marker) Validate() error {
	switch {
	case !m.Position.Valid():
		return ErrInvalidPosition
	case !m.Type.Valid():
		return ErrInvalidType
	case !m.AudioStatus.Valid():
		return ErrInvalidAudioStatus
	case m.Volume < 0:
		return ErrInvalidVolume
	}
	return nil
}

// Decibels converts a peak recorder amplitude into a non-negative decibel value.
func Decibels(amplitude int) int {
	if amplitude <= 0 {
		return 0
	}
	db := int(math.Round(20 * math.Log10(float64(amplitude)/amplitudeRef)))
	if db < 0 {
		return 0
	}
	return db
}

// AudioClip is the stored recording of a marker.
type AudioClip struct {
	MarkerID    int
	ContentType string
	Data        []byte
	Digest      string
	Size        int64
	UpdatedAt   time.Time
}

// StrPtr is a helper for optional titles.
func StrPtr(s string) *string {
	return &s
}
