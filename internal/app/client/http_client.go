package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"noisemap/internal/app/client/config"
	"noisemap/internal/domain/marker"

	"golang.org/x/exp/slog"
)

// ErrServer - сервер ответил статусом >= 400.
var ErrServer = errors.New("ошибка сервера")

// StatusError несет код ответа сервера.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("сервер вернул %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("сервер вернул %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrServer }

// SyncChannel - обмен данными о маркерах с сервером.
type SyncChannel interface {
	FetchAll(ctx context.Context) ([]marker.Marker, error)
	FetchOne(ctx context.Context, id int) (marker.Marker, error)
	UpdateMarker(ctx context.Context, m marker.Marker) error
	UploadAudio(ctx context.Context, id int, data []byte) error
	CreateMarker(ctx context.Context, m marker.Marker) (int, error)
	DeleteMarker(ctx context.Context, id int) error
	FetchAudio(ctx context.Context, id int) ([]byte, error)
	HealthCheck(ctx context.Context) error
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

var _ SyncChannel = (*httpClient)(nil)

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "sync_channel"),
		baseURL:   cfg.BaseURL(),
		userAgent: "Noisemap-Client/1.0",
	}
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка проверки сервера: %w", err)
	}

	if err := h.parseResponse(resp, nil); err != nil {
		return fmt.Errorf("ошибка проверки сервера: %w", err)
	}
	return nil
}

// FetchAll получает все маркеры.
func (h *httpClient) FetchAll(ctx context.Context) ([]marker.Marker, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/markers/all", nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения маркеров: %w", err)
	}

	var payloads []marker.Payload
	if err := h.parseResponse(resp, &payloads); err != nil {
		return nil, fmt.Errorf("ошибка получения маркеров: %w", err)
	}

	markers := make([]marker.Marker, 0, len(payloads))
	for _, p := range payloads {
		m, err := p.Marker()
		if err != nil {
			return nil, fmt.Errorf("ошибка получения маркеров: %w", err)
		}
		markers = append(markers, m)
	}

	return markers, nil
}

// FetchOne получает маркер по ID.
func (h *httpClient) FetchOne(ctx context.Context, id int) (marker.Marker, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/markers/"+strconv.Itoa(id), nil)
	if err != nil {
		return marker.Marker{}, fmt.Errorf("ошибка получения маркера %d: %w", id, err)
	}

	var p marker.Payload
	if err := h.parseResponse(resp, &p); err != nil {
		return marker.Marker{}, fmt.Errorf("ошибка получения маркера %d: %w", id, err)
	}

	m, err := p.Marker()
	if err != nil {
		return marker.Marker{}, fmt.Errorf("ошибка получения маркера %d: %w", id, err)
	}
	return m, nil
}

// UpdateMarker перезаписывает маркер на сервере.
func (h *httpClient) UpdateMarker(ctx context.Context, m marker.Marker) error {
	resp, err := h.doRequest(ctx, http.MethodPut, "/api/markers/edit", marker.ToPayload(m))
	if err != nil {
		return fmt.Errorf("ошибка обновления маркера %d: %w", m.ID, err)
	}

	if err := h.parseResponse(resp, nil); err != nil {
		return fmt.Errorf("ошибка обновления маркера %d: %w", m.ID, err)
	}
	return nil
}

// CreateMarker создает маркер и возвращает назначенный сервером ID.
func (h *httpClient) CreateMarker(ctx context.Context, m marker.Marker) (int, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/markers", marker.ToPayload(m))
	if err != nil {
		return 0, fmt.Errorf("ошибка создания маркера: %w", err)
	}

	var createResp struct {
		ID int `json:"id"`
	}
	if err := h.parseResponse(resp, &createResp); err != nil {
		return 0, fmt.Errorf("ошибка создания маркера: %w", err)
	}

	return createResp.ID, nil
}

// DeleteMarker удаляет маркер.
func (h *httpClient) DeleteMarker(ctx context.Context, id int) error {
	resp, err := h.doRequest(ctx, http.MethodDelete, "/api/markers/"+strconv.Itoa(id), nil)
	if err != nil {
		return fmt.Errorf("ошибка удаления маркера %d: %w", id, err)
	}

	if err := h.parseResponse(resp, nil); err != nil {
		return fmt.Errorf("ошибка удаления маркера %d: %w", id, err)
	}
	return nil
}

// UploadAudio отправляет запись как multipart-форму: поле file, имя "<id>.mp3".
func (h *httpClient) UploadAudio(ctx context.Context, id int, data []byte) error {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%d.mp3"`, id))
	hdr.Set("Content-Type", "audio/mpeg")

	part, err := w.CreatePart(hdr)
	if err != nil {
		return fmt.Errorf("ошибка загрузки записи %d: %w", id, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("ошибка загрузки записи %d: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ошибка загрузки записи %d: %w", id, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/markers/audio/add", body)
	if err != nil {
		return fmt.Errorf("ошибка загрузки записи %d: %w", id, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("User-Agent", h.userAgent)

	h.log.Debug("Загрузка записи", "marker_id", id, "bytes", len(data))

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка загрузки записи %d: %w", id, err)
	}

	if err := h.parseResponse(resp, nil); err != nil {
		return fmt.Errorf("ошибка загрузки записи %d: %w", id, err)
	}
	return nil
}

// FetchAudio скачивает запись маркера.
func (h *httpClient) FetchAudio(ctx context.Context, id int) ([]byte, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/markers/audio/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записи %d: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записи %d: чтение тела: %w", id, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ошибка получения записи %d: %w", id, statusError(resp.StatusCode, data))
	}

	return data, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", h.userAgent)

	h.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка разбора ответа: %w", err)
		}
	}

	return nil
}

// statusError достает detail из ответа huma (application/problem+json).
func statusError(code int, body []byte) error {
	var problem struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &problem)
	return &StatusError{Code: code, Detail: problem.Detail}
}
