package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"noisemap/internal/app/client/config"
	"noisemap/internal/app/client/layer"
	"noisemap/internal/domain/marker"
	"noisemap/internal/domain/push"

	"golang.org/x/exp/slog"
)

const inboxSize = 64

var ErrStopped = errors.New("клиент остановлен")

// Subscriber доставляет push-события до отмены контекста.
type Subscriber interface {
	Run(ctx context.Context, handle func(push.Event)) error
}

// Change описывает примененное к хранилищу изменение.
type Change struct {
	Event   push.Event
	Markers int
	Err     error
}

// App владеет хранилищем маркеров. Все изменения хранилища выполняются
// в одной горутине (loop); push-события, действия пользователя и результаты
// сетевых вызовов приходят к ней сообщениями через inbox.
type App struct {
	log   *slog.Logger
	sync  SyncChannel
	sub   Subscriber
	cache Cache
	layer *layer.Layer
	store *Store

	inbox    chan message
	listener func(Change)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type message interface{}

type (
	pushMsg struct {
		event push.Event
	}
	fetchAllMsg   struct{}
	fetchedAllMsg struct {
		markers []marker.Marker
		err     error
	}
	fetchedOneMsg struct {
		event  push.Event
		marker marker.Marker
		err    error
	}
	snapshotMsg struct {
		reply chan []marker.Marker
	}
)

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	var cache Cache
	sqliteStorage, err := NewSQLiteStorage(cfg.CachePath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		cache = NewMemoryStorage()
	} else {
		cache = sqliteStorage
	}

	return newApp(
		NewHTTPClient(cfg, log),
		NewSubscription(cfg.PushURL(), cfg.ReconnectDelay, log),
		cache,
		layer.New(cfg.LayerPath, log),
		log,
	), nil
}

func newApp(sc SyncChannel, sub Subscriber, cache Cache, l *layer.Layer, log *slog.Logger) *App {
	if cache == nil {
		cache = NewMemoryStorage()
	}
	a := &App{
		log:   log.With("component", "client_app"),
		sync:  sc,
		sub:   sub,
		cache: cache,
		layer: l,
		inbox: make(chan message, inboxSize),
	}
	a.store = NewStore(rendererFunc(a.render), log)
	return a
}

// SetListener задает fn, который вызывается из горутины-владельца после
// каждого примененного события. Вызывать до Start.
func (a *App) SetListener(fn func(Change)) {
	a.listener = fn
}

// Layer возвращает слой, который обновляет хранилище.
func (a *App) Layer() *layer.Layer {
	return a.layer
}

// Start отрисовывает снимок из кэша, затем запускает начальную загрузку
// и push-подписку.
func (a *App) Start(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	cached, err := a.cache.Load()
	if err != nil {
		a.log.Warn("Не удалось загрузить кэш маркеров", "error", err)
	} else if len(cached) > 0 {
		a.store.ReplaceAll(cached)
		a.log.Info("Отрисованы маркеры из кэша", "count", len(cached))
	}

	a.wg.Add(1)
	go a.loop()

	if a.sub != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			_ = a.sub.Run(a.ctx, a.HandleEvent)
		}()
	}

	a.Refresh()
}

// Stop отменяет текущие запросы и подписку и дожидается их завершения.
func (a *App) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	a.wg.Wait()

	if err := a.cache.Close(); err != nil {
		a.log.Warn("Не удалось закрыть кэш маркеров", "error", err)
	}
	a.log.Info("Клиент остановлен")
}

// Refresh запрашивает полную перезагрузку маркеров.
func (a *App) Refresh() {
	a.post(fetchAllMsg{})
}

// HandleEvent передает push-событие горутине-владельцу.
func (a *App) HandleEvent(e push.Event) {
	a.post(pushMsg{event: e})
}

// Markers возвращает содержимое хранилища глазами владельца.
func (a *App) Markers(ctx context.Context) ([]marker.Marker, error) {
	reply := make(chan []marker.Marker, 1)
	if !a.post(snapshotMsg{reply: reply}) {
		return nil, ErrStopped
	}

	select {
	case markers := <-reply:
		return markers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.ctx.Done():
		return nil, ErrStopped
	}
}

// post возвращает false, если приложение не запущено или уже остановлено.
func (a *App) post(msg message) bool {
	if a.ctx == nil {
		return false
	}
	select {
	case a.inbox <- msg:
		return true
	case <-a.ctx.Done():
		return false
	}
}

func (a *App) loop() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case msg := <-a.inbox:
			a.handle(msg)
		}
	}
}

func (a *App) handle(msg message) {
	switch m := msg.(type) {
	case fetchAllMsg:
		a.goFetchAll()

	case fetchedAllMsg:
		if m.err != nil {
			a.log.Error("Не удалось загрузить маркеры", "error", m.err)
			a.emit(Change{Err: m.err})
			return
		}
		a.store.ReplaceAll(m.markers)
		a.log.Info("Маркеры загружены", "count", len(m.markers))
		a.emit(Change{})

	case pushMsg:
		a.log.Debug("Получено push-событие", "event", m.event.String())
		switch m.event.Kind {
		case push.KindAdd, push.KindUpdate:
			a.goFetchOne(m.event)
		case push.KindDelete:
			a.store.Remove(m.event.MarkerID)
			a.emit(Change{Event: m.event})
		}

	case fetchedOneMsg:
		if m.err != nil {
			a.log.Error("Не удалось загрузить маркер", "event", m.event.String(), "error", m.err)
			a.emit(Change{Event: m.event, Err: m.err})
			return
		}
		if m.event.Kind == push.KindUpdate {
			a.store.Remove(m.event.MarkerID)
		}
		a.store.Add(m.marker)
		a.emit(Change{Event: m.event})

	case snapshotMsg:
		m.reply <- a.store.Markers()

	default:
		a.log.Warn("Неизвестное сообщение", "type", fmt.Sprintf("%T", msg))
	}
}

// goFetchAll и goFetchOne выполняют запрос вне владельца и возвращают
// результат сообщением.
func (a *App) goFetchAll() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		markers, err := a.sync.FetchAll(a.ctx)
		a.post(fetchedAllMsg{markers: markers, err: err})
	}()
}

func (a *App) goFetchOne(e push.Event) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		m, err := a.sync.FetchOne(a.ctx, e.MarkerID)
		a.post(fetchedOneMsg{event: e, marker: m, err: err})
	}()
}

func (a *App) emit(c Change) {
	if a.listener == nil {
		return
	}
	c.Markers = a.store.Len()
	a.listener(c)
}

// render обновляет слой и кэш. Ошибки кэша не мешают отрисовке.
func (a *App) render(markers []marker.Marker) error {
	if err := a.cache.Save(markers); err != nil {
		a.log.Warn("Не удалось сохранить кэш маркеров", "error", err)
	}
	if a.layer == nil {
		return nil
	}
	return a.layer.Refresh(markers)
}

type rendererFunc func([]marker.Marker) error

func (f rendererFunc) Refresh(markers []marker.Marker) error {
	return f(markers)
}
