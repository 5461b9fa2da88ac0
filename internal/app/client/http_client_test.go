package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"noisemap/internal/app/client/config"
	"noisemap/internal/domain/marker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestClient(t *testing.T, handler http.Handler) *httpClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ServerAddress:  strings.TrimPrefix(srv.URL, "http://"),
		RequestTimeout: 5 * time.Second,
	}
	return NewHTTPClient(cfg, slog.Default())
}

func TestHTTPClient_FetchAll(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/markers/all", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":1,"x":"37.6173","y":"55.7558","markerType":1,"title":"Cafe","volume":0,"audioStatus":0},
			{"id":2,"x":"30.3","y":"59.9","markerType":2,"volume":44,"audioStatus":1}
		]`)
	}))

	markers, err := c.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, 37.6173, markers[0].Position.Lon)
	assert.Equal(t, "Cafe", markers[0].DisplayTitle())
	assert.Nil(t, markers[1].Title)
	assert.Equal(t, marker.AudioRecorded, markers[1].AudioStatus)
}

func TestHTTPClient_FetchAllMalformed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"x":"east","y":"55"}]`)
	}))

	_, err := c.FetchAll(context.Background())

	assert.ErrorIs(t, err, marker.ErrInvalidPosition)
}

func TestHTTPClient_FetchOneNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/markers/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":404,"title":"Not Found","detail":"marker not found"}`)
	}))

	_, err := c.FetchOne(context.Background(), 7)

	require.ErrorIs(t, err, ErrServer)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "marker not found", se.Detail)
	assert.EqualError(t, err, "ошибка получения маркера 7: сервер вернул 404: marker not found")
}

func TestHTTPClient_UpdateMarker(t *testing.T) {
	var got marker.Payload
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/markers/edit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"status":"Ok","id":3}`)
	}))

	m := marker.Marker{ID: 3, Position: marker.Position{Lon: 1.5, Lat: 2.25}, Type: marker.TypeChecked, Volume: 40, AudioStatus: marker.AudioRecorded}
	require.NoError(t, c.UpdateMarker(context.Background(), m))

	assert.Equal(t, marker.ToPayload(m), got)
	assert.Equal(t, "1.5", got.X)
	assert.Equal(t, "2.25", got.Y)
}

func TestHTTPClient_CreateAndDelete(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/markers":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"status":"Ok","id":11}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/markers/11":
			_, _ = io.WriteString(w, `{"status":"Ok","id":11}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	id, err := c.CreateMarker(context.Background(), marker.Marker{Position: marker.Position{Lon: 1, Lat: 1}})
	require.NoError(t, err)
	assert.Equal(t, 11, id)

	assert.NoError(t, c.DeleteMarker(context.Background(), 11))
}

func TestHTTPClient_UploadAudio(t *testing.T) {
	data := []byte("ID3 frames")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/markers/audio/add", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, "12.mp3", fh.Filename)
		assert.Equal(t, "audio/mpeg", fh.Header.Get("Content-Type"))
		body, _ := io.ReadAll(f)
		assert.Equal(t, data, body)

		_, _ = io.WriteString(w, `{"status":"Ok","id":12}`)
	}))

	assert.NoError(t, c.UploadAudio(context.Background(), 12, data))
}

func TestHTTPClient_FetchAudio(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/markers/audio/2" {
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte{0xff, 0xfb})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	data, err := c.FetchAudio(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfb}, data)

	_, err = c.FetchAudio(context.Background(), 3)
	assert.ErrorIs(t, err, ErrServer)
}

func TestHTTPClient_HealthCheck(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"OK"}`)
	}))

	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	c := NewHTTPClient(&config.Config{ServerAddress: addr, RequestTimeout: time.Second}, slog.Default())

	_, err := c.FetchAll(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrServer)
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
