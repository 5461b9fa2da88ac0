// Package hub fans out marker change events to WebSocket subscribers.
//
// Every connected client receives every event; a client whose write fails
// or times out is dropped. Events are delivered from a single broadcast
// loop, so subscribers see them in publish order.
package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"noisemap/internal/domain/push"

	"github.com/coder/websocket"
	"golang.org/x/exp/slog"
)

const (
	defaultBuffer       = 100
	defaultWriteTimeout = 5 * time.Second
)

type Config struct {
	Buffer       int
	WriteTimeout time.Duration
}

type Hub struct {
	clients   map[*websocket.Conn]struct{}
	clientsMu sync.RWMutex

	broadcast    chan push.Event
	writeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	log *slog.Logger
}

func New(log *slog.Logger, cfg Config) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:      make(map[*websocket.Conn]struct{}),
		broadcast:    make(chan push.Event, cfg.Buffer),
		writeTimeout: cfg.WriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
		log:          log.With("component", "push_hub"),
	}
}

// Start запускает цикл рассылки.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.broadcastLoop()
}

// Stop закрывает все подключения и дожидается завершения цикла рассылки.
func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
	h.log.Info("push hub stopped")
}

// Publish queues e for delivery. It never blocks: when the queue is full
// the event is dropped.
func (h *Hub) Publish(e push.Event) {
	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.broadcast <- e:
	default:
		h.log.Warn("broadcast queue full, dropping event", "event", e.String())
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the subscriber until it
// disconnects or the hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.log.Info("subscriber connected", "remote_addr", r.RemoteAddr, "total", count)

	h.readLoop(conn)
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		case e := <-h.broadcast:
			frame, err := push.Encode(e)
			if err != nil {
				h.log.Error("failed to encode event", "event", e.String(), "error", err)
				continue
			}

			h.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(h.ctx, h.writeTimeout)
				err := conn.Write(ctx, websocket.MessageText, frame)
				cancel()
				if err != nil {
					h.log.Warn("failed to deliver event", "event", e.String(), "error", err)
					h.removeClient(conn)
				}
			}

			h.log.Debug("event delivered", "event", e.String(), "subscribers", len(conns))
		}
	}
}

// readLoop drains client frames; subscribers are not expected to send anything.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.log.Info("subscriber disconnected", "total", count)
}
