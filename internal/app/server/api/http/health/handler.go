package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// SubscriberCounter reports how many push subscribers are connected.
type SubscriberCounter interface {
	ClientCount() int
}

type Handler struct {
	log        *slog.Logger
	middleware huma.Middlewares
	hub        SubscriberCounter
}

func NewHandler(log *slog.Logger, middleware huma.Middlewares, hub SubscriberCounter) *Handler {
	return &Handler{
		log:        log,
		middleware: middleware,
		hub:        hub,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	subscribers := 0
	if h.hub != nil {
		subscribers = h.hub.ClientCount()
	}

	return &Output{
		Body: HealthResponse{
			Status:      "OK",
			Subscribers: subscribers,
		},
	}, nil
}
