package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// драйвер postgres и файловый источник регистрируются при импорте
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/exp/slog"
)

// ErrDirty - предыдущая миграция упала на середине, схему нужно чинить вручную.
var ErrDirty = errors.New("database schema is dirty")

// Migrator - часть migrate.Migrate, которая нужна Runner.
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (source error, database error)
}

// Engine открывает Migrator по URL источника и строке подключения.
type Engine func(sourceURL, databaseURL string) (Migrator, error)

// Runner приводит схему маркеров к последней версии.
type Runner struct {
	source string
	dsn    string
	engine Engine
	log    *slog.Logger
}

func NewRunner(source, dsn string, engine Engine, log *slog.Logger) *Runner {
	if engine == nil {
		engine = Open
	}
	return &Runner{
		source: source,
		dsn:    dsn,
		engine: engine,
		log:    log.With("component", "migration"),
	}
}

// Open - Engine поверх golang-migrate.
func Open(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up применяет недостающие миграции и возвращает текущую версию схемы.
func (r *Runner) Up() (version uint, err error) {
	m, err := r.engine(r.source, r.dsn)
	if err != nil {
		return 0, fmt.Errorf("open migrator %s: %w", r.source, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			srcErr = fmt.Errorf("close migration source: %w", srcErr)
		}
		if dbErr != nil {
			dbErr = fmt.Errorf("close migration database: %w", dbErr)
		}
		err = errors.Join(err, srcErr, dbErr)
	}()

	if before, dirty, vErr := m.Version(); vErr == nil && dirty {
		return before, fmt.Errorf("version %d: %w", before, ErrDirty)
	}

	upErr := m.Up()
	switch {
	case errors.Is(upErr, migrate.ErrNoChange):
		r.log.Debug("schema is up to date")
	case upErr != nil:
		return 0, fmt.Errorf("migration up: %w", upErr)
	}

	version, _, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	r.log.Info("schema migrated", "version", version)
	return version, nil
}
