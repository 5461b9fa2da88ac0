package marker

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"noisemap/internal/domain/marker"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context) ([]marker.Marker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marker.Marker), args.Error(1)
}

func (m *MockService) Find(ctx context.Context, id int) (*marker.Marker, error) {
	args := m.Called(ctx, id)
	// Безопасное приведение nil к указателю
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marker.Marker), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, mk marker.Marker) (int, error) {
	args := m.Called(ctx, mk)
	return args.Int(0), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, mk marker.Marker) error {
	args := m.Called(ctx, mk)
	return args.Error(0)
}

func (m *MockService) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) SaveAudio(ctx context.Context, id int, contentType string, data []byte) error {
	args := m.Called(ctx, id, contentType, data)
	return args.Error(0)
}

func (m *MockService) Audio(ctx context.Context, id int) (*marker.AudioClip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marker.AudioClip), args.Error(1)
}

func testMarker(id int) marker.Marker {
	return marker.Marker{
		ID:       id,
		Position: marker.Position{Lon: 37.6173, Lat: 55.7558},
		Type:     marker.TypeUnchecked,
		Title:    marker.StrPtr("Cafe"),
	}
}

func newTestAPI(t *testing.T, svc *MockService, maxAudio int64) humatest.TestAPI {
	_, api := humatest.New(t)
	NewHandler(svc, slog.Default(), huma.Middlewares{}, maxAudio).SetupRoutes(api)
	return api
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf, w.FormDataContentType()
}

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything).Return([]marker.Marker{testMarker(1), testMarker(2)}, nil)
	api := newTestAPI(t, svc, 0)

	resp := api.Get("/api/markers/all")

	assert.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `"id":1`)
	assert.Contains(t, body, `"x":"37.6173"`)
	assert.Contains(t, body, `"y":"55.7558"`)
	assert.Contains(t, body, `"markerType":1`)
	svc.AssertExpectations(t)
}

func TestHandler_Find(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		m := testMarker(7)
		svc.On("Find", mock.Anything, 7).Return(&m, nil)
		h := NewHandler(svc, slog.Default(), nil, 0)

		out, err := h.find(context.Background(), &findInput{ID: 7})

		require.NoError(t, err)
		assert.Equal(t, 7, out.Body.ID)
		assert.Equal(t, "Cafe", *out.Body.Title)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Find", mock.Anything, 9).Return(nil, marker.ErrNotFound)
		api := newTestAPI(t, svc, 0)

		resp := api.Get("/api/markers/9")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestHandler_Edit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Update", mock.Anything, mock.MatchedBy(func(m marker.Marker) bool {
			return m.ID == 3 && m.Volume == 40 && m.AudioStatus == marker.AudioRecorded
		})).Return(nil)
		api := newTestAPI(t, svc, 0)

		resp := api.Put("/api/markers/edit", map[string]any{
			"id":          3,
			"x":           "30.1",
			"y":           "59.9",
			"markerType":  1,
			"title":       "Park",
			"volume":      40,
			"audioStatus": 1,
		})

		assert.Equal(t, http.StatusOK, resp.Code)
		svc.AssertExpectations(t)
	})

	t.Run("BadCoordinates", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, slog.Default(), nil, 0)

		input := &editInput{Body: marker.ToPayload(testMarker(3))}
		input.Body.X = "east"

		_, err := h.edit(context.Background(), input)

		var se huma.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnprocessableEntity, se.GetStatus())
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("UnknownMarker", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Update", mock.Anything, mock.Anything).Return(marker.ErrNotFound)
		h := NewHandler(svc, slog.Default(), nil, 0)

		_, err := h.edit(context.Background(), &editInput{Body: marker.ToPayload(testMarker(3))})

		var se huma.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.GetStatus())
	})
}

func TestHandler_Create(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, mock.Anything).Return(12, nil)
	h := NewHandler(svc, slog.Default(), nil, 0)

	out, err := h.create(context.Background(), &createInput{Body: marker.ToPayload(testMarker(0))})

	require.NoError(t, err)
	assert.Equal(t, 12, out.Body.ID)
	assert.Equal(t, "Ok", out.Body.Status)
}

func TestHandler_Delete(t *testing.T) {
	svc := new(MockService)
	svc.On("Delete", mock.Anything, 4).Return(nil)
	api := newTestAPI(t, svc, 0)

	resp := api.Delete("/api/markers/4")

	assert.Equal(t, http.StatusOK, resp.Code)
	svc.AssertExpectations(t)
}

func TestHandler_UploadAudio(t *testing.T) {
	data := []byte("ID3 fake mp3 frames")

	t.Run("IDFromFilename", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SaveAudio", mock.Anything, 5, "audio/mpeg", data).Return(nil)
		api := newTestAPI(t, svc, 0)

		body, ct := multipartBody(t, "5.mp3", "audio/mpeg", data)
		resp := api.Post("/api/markers/audio/add", "Content-Type: "+ct, body)

		assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("IDFromQuery", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SaveAudio", mock.Anything, 8, "audio/mpeg", data).Return(nil)
		api := newTestAPI(t, svc, 0)

		body, ct := multipartBody(t, "recording.mp3", "audio/mpeg", data)
		resp := api.Post("/api/markers/audio/add?id=8", "Content-Type: "+ct, body)

		assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("UnknownMarker", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SaveAudio", mock.Anything, 5, mock.Anything, mock.Anything).Return(marker.ErrNotFound)
		api := newTestAPI(t, svc, 0)

		body, ct := multipartBody(t, "5.mp3", "audio/mpeg", data)
		resp := api.Post("/api/markers/audio/add", "Content-Type: "+ct, body)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("BadFilename", func(t *testing.T) {
		svc := new(MockService)
		api := newTestAPI(t, svc, 0)

		body, ct := multipartBody(t, "noise.mp3", "audio/mpeg", data)
		resp := api.Post("/api/markers/audio/add", "Content-Type: "+ct, body)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		svc.AssertNotCalled(t, "SaveAudio", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TooLarge", func(t *testing.T) {
		svc := new(MockService)
		api := newTestAPI(t, svc, 4)

		body, ct := multipartBody(t, "5.mp3", "audio/mpeg", data)
		resp := api.Post("/api/markers/audio/add", "Content-Type: "+ct, body)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	})
}

func TestHandler_Audio(t *testing.T) {
	clip := &marker.AudioClip{
		MarkerID:    5,
		ContentType: "audio/mpeg",
		Data:        []byte("mp3"),
		Digest:      "abc123",
		Size:        3,
	}

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Audio", mock.Anything, 5).Return(clip, nil)
		api := newTestAPI(t, svc, 0)

		resp := api.Get("/api/markers/audio/5")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "audio/mpeg", resp.Header().Get("Content-Type"))
		assert.Equal(t, strconv.Quote("abc123"), resp.Header().Get("ETag"))
		assert.Equal(t, "mp3", resp.Body.String())
	})

	t.Run("NotModified", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Audio", mock.Anything, 5).Return(clip, nil)
		h := NewHandler(svc, slog.Default(), nil, 0)

		out, err := h.audio(context.Background(), &audioInput{ID: 5, IfNoneMatch: `"abc123"`})

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotModified, out.Status)
		assert.Nil(t, out.Body)
	})

	t.Run("NoAudio", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Audio", mock.Anything, 6).Return(nil, marker.ErrAudioNotFound)
		api := newTestAPI(t, svc, 0)

		resp := api.Get("/api/markers/audio/6")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestMarkerIDFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    int
		wantErr bool
	}{
		{name: "integer", file: "12.mp3", want: 12},
		{name: "float form", file: "12.0.mp3", want: 12},
		{name: "with directory", file: "/sdcard/rec/3.mp3", want: 3},
		{name: "not a number", file: "noise.mp3", wantErr: true},
		{name: "zero", file: "0.mp3", wantErr: true},
		{name: "fraction", file: "1.5.mp3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := markerIDFromFilename(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_InternalErrorHidden(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything).Return(nil, assert.AnError)
	api := newTestAPI(t, svc, 0)

	resp := api.Get("/api/markers/all")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.False(t, strings.Contains(resp.Body.String(), assert.AnError.Error()))
}
