// Package cli хранит общее для команд клиента состояние: конфигурацию,
// канал синхронизации и настройки вывода.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"noisemap/internal/app/client"
	"noisemap/internal/app/client/config"

	"golang.org/x/exp/slog"
	"golang.org/x/term"
)

var ErrNoRuntime = errors.New("приложение не инициализировано")

type runtimeKey struct{}

// Runtime собирается в PersistentPreRunE корневой команды.
type Runtime struct {
	Config *config.Config
	Log    *slog.Logger
	Sync   client.SyncChannel
	JSON   bool
	Out    io.Writer
	Table  bool
}

func NewRuntime(cfg *config.Config, log *slog.Logger, jsonOutput bool) *Runtime {
	return &Runtime{
		Config: cfg,
		Log:    log,
		Sync:   client.NewHTTPClient(cfg, log),
		JSON:   jsonOutput,
		Out:    os.Stdout,
		Table:  term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func FromContext(ctx context.Context) (*Runtime, error) {
	rt, ok := ctx.Value(runtimeKey{}).(*Runtime)
	if !ok || rt == nil {
		return nil, ErrNoRuntime
	}
	return rt, nil
}
