package marker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"noisemap/internal/domain/marker"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// multipartOverhead - запас на заголовки multipart сверх размера файла.
const multipartOverhead = 64 << 10

type Handler struct {
	service       marker.Servicer
	log           *slog.Logger
	middleware    huma.Middlewares
	maxAudioBytes int64
}

func NewHandler(service marker.Servicer, log *slog.Logger, mws huma.Middlewares, maxAudioBytes int64) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if maxAudioBytes <= 0 {
		maxAudioBytes = marker.DefaultMaxAudioBytes
	}
	return &Handler{
		service:       service,
		log:           log.With("component", "marker_handler"),
		middleware:    mws,
		maxAudioBytes: maxAudioBytes,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.editOp(), h.edit)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.uploadAudioOp(), h.uploadAudio)
	huma.Register(api, h.audioOp(), h.audio)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	markers, err := h.service.List(ctx)
	if err != nil {
		return nil, h.humaError(err)
	}

	return &listOutput{Body: marker.ToPayloads(markers)}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	m, err := h.service.Find(ctx, input.ID)
	if err != nil {
		return nil, h.humaError(err)
	}

	return &findOutput{Body: marker.ToPayload(*m)}, nil
}

func (h *Handler) edit(ctx context.Context, input *editInput) (*output, error) {
	m, err := input.Body.Marker()
	if err != nil {
		return nil, h.humaError(err)
	}

	if err := h.service.Update(ctx, m); err != nil {
		return nil, h.humaError(err)
	}

	return &output{Body: operationResponse{ID: m.ID, Status: "Ok"}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	m, err := input.Body.Marker()
	if err != nil {
		return nil, h.humaError(err)
	}

	id, err := h.service.Create(ctx, m)
	if err != nil {
		return nil, h.humaError(err)
	}

	return &output{Body: operationResponse{ID: id, Status: "Ok"}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*output, error) {
	if err := h.service.Delete(ctx, input.ID); err != nil {
		return nil, h.humaError(err)
	}

	return &output{Body: operationResponse{ID: input.ID, Status: "Ok"}}, nil
}

func (h *Handler) uploadAudio(ctx context.Context, input *uploadInput) (*output, error) {
	files := input.RawBody.File["file"]
	if len(files) == 0 {
		return nil, huma.Error422UnprocessableEntity("form field \"file\" is required")
	}
	fh := files[0]

	if fh.Size > h.maxAudioBytes {
		return nil, h.humaError(marker.ErrAudioTooLarge)
	}

	id := input.MarkerID
	if id == 0 {
		var err error
		id, err = markerIDFromFilename(fh.Filename)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, h.humaError(fmt.Errorf("open uploaded file: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxAudioBytes+1))
	if err != nil {
		return nil, h.humaError(fmt.Errorf("read uploaded file: %w", err))
	}

	if err := h.service.SaveAudio(ctx, id, fh.Header.Get("Content-Type"), data); err != nil {
		return nil, h.humaError(err)
	}

	return &output{Body: operationResponse{ID: id, Status: "Ok"}}, nil
}

func (h *Handler) audio(ctx context.Context, input *audioInput) (*audioOutput, error) {
	clip, err := h.service.Audio(ctx, input.ID)
	if err != nil {
		return nil, h.humaError(err)
	}

	etag := strconv.Quote(clip.Digest)
	if input.IfNoneMatch != "" && input.IfNoneMatch == etag {
		return &audioOutput{Status: http.StatusNotModified, ETag: etag}, nil
	}

	return &audioOutput{
		Status:      http.StatusOK,
		ContentType: clip.ContentType,
		ETag:        etag,
		Body:        clip.Data,
	}, nil
}

// markerIDFromFilename извлекает ID из имени вида "12.mp3".
// Допускается и "12.0.mp3": так число сериализуется некоторыми клиентами.
func markerIDFromFilename(name string) (int, error) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	if id, err := strconv.Atoi(stem); err == nil && id > 0 {
		return id, nil
	}
	if f, err := strconv.ParseFloat(stem, 64); err == nil && f > 0 && f == float64(int(f)) {
		return int(f), nil
	}

	return 0, fmt.Errorf("cannot derive marker id from file name %q", name)
}

func (h *Handler) humaError(err error) error {
	switch {
	case errors.Is(err, marker.ErrNotFound), errors.Is(err, marker.ErrAudioNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, marker.ErrInvalidData), errors.Is(err, marker.ErrEmptyAudio):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, marker.ErrAudioTooLarge):
		return huma.NewError(http.StatusRequestEntityTooLarge, err.Error())
	}

	h.log.Error("request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}
