package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/cinedigest/cinedigest/internal/app"
	"github.com/cinedigest/cinedigest/internal/ports"
)

// Runner est la surface du pipeline consommée par l'API.
type Runner interface {
	Run(ctx context.Context) (*app.RunResult, error)
	LastResult() (*app.RunResult, error)
}

type Server struct {
	logger zerolog.Logger
	runner Runner
	bus    ports.EventBus
}

func NewServer(logger zerolog.Logger, runner Runner, bus ports.EventBus) *Server {
	return &Server{logger: logger, runner: runner, bus: bus}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	// Le digest rendu, pour les humains.
	r.Get("/digest", s.handleDigestHTML)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/events", s.handleEvents)
		r.Get("/schedule", s.handleSchedule)
		r.Get("/runs/last", s.handleLastRun)
		r.Post("/run", s.handleRun)
	})

	return r
}
