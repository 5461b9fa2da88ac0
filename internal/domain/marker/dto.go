package marker

import (
	"fmt"
	"strconv"
)

// Payload - представление маркера на проводе. Координаты передаются строками,
// так их отправляет и ожидает мобильный клиент.
type Payload struct {
	ID          int     `json:"id" example:"1" doc:"ID маркера, назначается сервером"`
	X           string  `json:"x" example:"37.6173" doc:"Долгота"`
	Y           string  `json:"y" example:"55.7558" doc:"Широта"`
	MarkerType  int     `json:"markerType" enum:"0,1,2" doc:"0 - пустой, 1 - не проверен, 2 - проверен"`
	Title       *string `json:"title" required:"false" nullable:"true" doc:"Название точки"`
	Volume      int     `json:"volume" minimum:"0" doc:"Громкость записи, дБ"`
	AudioStatus int     `json:"audioStatus" enum:"0,1" doc:"0 - нет записи, 1 - запись загружена"`
}

// ToPayload converts a marker to its wire form.
func ToPayload(m Marker) Payload {
	return Payload{
		ID:          m.ID,
		X:           strconv.FormatFloat(m.Position.Lon, 'f', -1, 64),
		Y:           strconv.FormatFloat(m.Position.Lat, 'f', -1, 64),
		MarkerType:  int(m.Type),
		Title:       m.Title,
		Volume:      m.Volume,
		AudioStatus: int(m.AudioStatus),
	}
}

// ToPayloads converts a list of markers.
func ToPayloads(markers []Marker) []Payload {
	out := make([]Payload, len(markers))
	for i, m := range markers {
		out[i] = ToPayload(m)
	}
	return out
}

// Marker parses the wire form. Coordinates that are not decimal numbers
// yield ErrInvalidPosition.
func (p Payload) Marker() (Marker, error) {
	lon, err := strconv.ParseFloat(p.X, 64)
	if err != nil {
		return Marker{}, fmt.Errorf("%w: x=%q", ErrInvalidPosition, p.X)
	}
	lat, err := strconv.ParseFloat(p.Y, 64)
	if err != nil {
		return Marker{}, fmt.Errorf("%w: y=%q", ErrInvalidPosition, p.Y)
	}

	return Marker{
		ID:          p.ID,
		Position:    Position{Lon: lon, Lat: lat},
		Type:        Type(p.MarkerType),
		Title:       p.Title,
		Volume:      p.Volume,
		AudioStatus: AudioStatus(p.AudioStatus),
	}, nil
}
