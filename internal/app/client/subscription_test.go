package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"noisemap/internal/app/server/hub"
	"noisemap/internal/domain/push"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type eventSink struct {
	mu     sync.Mutex
	events []push.Event
}

func (s *eventSink) handle(e push.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) snapshot() []push.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]push.Event(nil), s.events...)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func runSubscription(t *testing.T, sub *Subscription, sink *eventSink) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx, sink.handle) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Error("subscription did not stop")
		}
	})
}

func TestSubscription_ReceivesHubEvents(t *testing.T) {
	log := slog.Default()
	h := hub.New(log, hub.Config{})
	h.Start()
	t.Cleanup(h.Stop)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sink := &eventSink{}
	sub := NewSubscription(wsURL(srv), 50*time.Millisecond, log)
	runSubscription(t, sub, sink)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, sub.Connected())

	h.Publish(push.Add(1))
	h.Publish(push.Update(1))
	h.Publish(push.Delete(1))

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []push.Event{push.Add(1), push.Update(1), push.Delete(1)}, sink.snapshot())
}

func TestSubscription_SkipsMalformedFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		_ = conn.Write(ctx, websocket.MessageText, []byte(`not json`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"target":"Ping","arguments":[1]}`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"target":"DeleteMarker","arguments":["x"]}`))
		_ = conn.Write(ctx, websocket.MessageBinary, []byte{1, 2, 3})
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"target":"DeleteMarker","arguments":[5]}`))

		// держим соединение, пока клиент не закроет его
		_, _, _ = conn.Read(context.Background())
	}))
	t.Cleanup(srv.Close)

	sink := &eventSink{}
	runSubscription(t, NewSubscription(wsURL(srv), 50*time.Millisecond, slog.Default()), sink)

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, push.Delete(5), sink.snapshot()[0])
}

func TestSubscription_Reconnects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"target":"AddMarker","arguments":[1]}`))
		_ = conn.Close(websocket.StatusGoingAway, "bye")
	}))
	t.Cleanup(srv.Close)

	sink := &eventSink{}
	sub := NewSubscription(wsURL(srv), 20*time.Millisecond, slog.Default())
	runSubscription(t, sub, sink)

	require.Eventually(t, func() bool { return sub.Dials() >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, len(sink.snapshot()), 2)
}

func TestSubscription_DialFailureRetries(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	sub := NewSubscription(url, 10*time.Millisecond, slog.Default())
	runSubscription(t, sub, &eventSink{})

	require.Eventually(t, func() bool { return sub.Dials() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, sub.Connected())
}
