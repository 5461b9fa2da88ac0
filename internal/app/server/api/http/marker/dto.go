package marker

import (
	"mime/multipart"

	"noisemap/internal/domain/marker"
)

type listOutput struct {
	Body []marker.Payload
}

type findInput struct {
	ID int `path:"id" example:"1" doc:"ID маркера"`
}

type findOutput struct {
	Body marker.Payload
}

type editInput struct {
	Body marker.Payload
}

type createInput struct {
	Body marker.Payload
}

type deleteInput struct {
	ID int `path:"id" example:"1" doc:"ID маркера"`
}

type output struct {
	Body operationResponse
}

type operationResponse struct {
	ID      int    `json:"id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// uploadInput - загрузка аудио. Маркер определяется параметром id,
// а если он не задан - по имени файла вида "<id>.mp3".
type uploadInput struct {
	MarkerID int `query:"id" required:"false" doc:"ID маркера; по умолчанию берется из имени файла"`
	RawBody  multipart.Form
}

type audioInput struct {
	ID          int    `path:"id" example:"1" doc:"ID маркера"`
	IfNoneMatch string `header:"If-None-Match" required:"false"`
}

type audioOutput struct {
	Status      int
	ContentType string `header:"Content-Type"`
	ETag        string `header:"ETag"`
	Body        []byte
}
