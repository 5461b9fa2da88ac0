package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"noisemap/internal/domain/push"

	"github.com/coder/websocket"
	"golang.org/x/exp/slog"
)

const defaultReconnectDelay = 5 * time.Second

// Subscription держит WebSocket-подписку на изменения маркеров.
// При обрыве соединения переподключается с фиксированной задержкой.
type Subscription struct {
	url       string
	delay     time.Duration
	log       *slog.Logger
	connected atomic.Bool
	dials     atomic.Int64
}

func NewSubscription(url string, delay time.Duration, log *slog.Logger) *Subscription {
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	return &Subscription{
		url:   url,
		delay: delay,
		log:   log.With("component", "push_subscription"),
	}
}

// Run передает каждое разобранное событие в handle до отмены ctx.
// Всегда возвращает ctx.Err().
func (s *Subscription) Run(ctx context.Context, handle func(push.Event)) error {
	for {
		err := s.session(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("Соединение с сервером потеряно, переподключаемся", "error", err, "delay", s.delay)

		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Connected сообщает, открыто ли сейчас соединение.
func (s *Subscription) Connected() bool {
	return s.connected.Load()
}

// Dials возвращает число попыток подключения.
func (s *Subscription) Dials() int64 {
	return s.dials.Load()
}

func (s *Subscription) session(ctx context.Context, handle func(push.Event)) error {
	s.dials.Add(1)

	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("ошибка подключения к %s: %w", s.url, err)
	}
	defer conn.CloseNow()

	s.connected.Store(true)
	defer s.connected.Store(false)

	s.log.Info("Соединение с сервером установлено", "url", s.url)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("ошибка чтения: %w", err)
		}
		if typ != websocket.MessageText {
			s.log.Debug("Пропущен нетекстовый кадр", "type", typ)
			continue
		}

		e, err := push.Decode(data)
		if err != nil {
			if errors.Is(err, push.ErrUnknownKind) {
				s.log.Debug("Пропущено неизвестное событие", "error", err)
			} else {
				s.log.Warn("Пропущен некорректный кадр", "error", err)
			}
			continue
		}

		handle(e)
	}
}
