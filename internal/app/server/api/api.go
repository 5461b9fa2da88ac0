// GET    /api/markers/all          # Все маркеры
// GET    /api/markers/{id}         # Один маркер
// POST   /api/markers              # Создать маркер
// PUT    /api/markers/edit         # Обновить маркер
// DELETE /api/markers/{id}         # Удалить маркер
// POST   /api/markers/audio/add    # Загрузить аудио (multipart, поле file)
// GET    /api/markers/audio/{id}   # Скачать аудио
// GET    /api/v1/health            # Health check
// GET    /update                   # WebSocket: AddMarker / UpdateMarker / DeleteMarker

package api

import (
	"noisemap/internal/app/server/api/http/health"
	markerAPI "noisemap/internal/app/server/api/http/marker"
	"noisemap/internal/app/server/api/http/middleware"
	"noisemap/internal/app/server/api/http/middleware/logger"
	"noisemap/internal/app/server/config"
	"noisemap/internal/app/server/hub"
	"noisemap/internal/domain/marker"
	"noisemap/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

const pushPath = "/update"

type Handlers struct {
	Health *health.Handler
	Marker *markerAPI.Handler
}

// New создает *chi.Mux со всеми операциями API и WebSocket-хабом.
func New(storage *postgres.Storage, h *hub.Hub, cfg *config.Config, log *slog.Logger) *chi.Mux {
	markerRepo := postgres.NewMarkerRepository(storage.Pool(), log)
	audioRepo := postgres.NewAudioRepository(storage.Pool(), log)
	service := marker.NewService(markerRepo, audioRepo, h, log, &marker.ServiceConfig{
		MaxAudioBytes: cfg.Audio.MaxBytes,
	})

	return router(service, h, cfg.Audio.MaxBytes, log)
}

func router(service marker.Servicer, h *hub.Hub, maxAudioBytes int64, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)

	mux.Handle(pushPath, h)

	API := humachi.New(mux, huma.DefaultConfig("Noisemap API", "1.0.0"))

	handlers := handlers(service, h, maxAudioBytes, log)
	handlers.Health.SetupRoutes(API)
	handlers.Marker.SetupRoutes(API)

	return mux
}

func handlers(service marker.Servicer, h *hub.Hub, maxAudioBytes int64, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := health.NewHandler(log, middlewares.GetAllAndClear(), h)

	middlewares.Add(loggerMW.Middleware())
	markerHandler := markerAPI.NewHandler(service, log, middlewares.GetAllAndClear(), maxAudioBytes)

	return &Handlers{
		Health: healthHandler,
		Marker: markerHandler,
	}
}
