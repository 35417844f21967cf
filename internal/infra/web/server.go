package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/infra/worker"
	"nomadlybot/internal/usecase"
)

// TaskQueue accepts background work. *worker.Pool satisfies it.
type TaskQueue interface {
	Submit(task worker.Task) error
}

// Deps are the usecases the admin API drives. Relay and FreeLinks may be nil;
// their routes then answer 503.
type Deps struct {
	Broadcasts       usecase.BroadcastUseCase
	Relay            usecase.GroupRelayUseCase
	FreeLinks        usecase.FreeLinksUseCase
	Queue            TaskQueue
	SupportsLanguage func(model.Language) bool
	// OnRun observes manually triggered runs after they finish.
	OnRun func(model.BroadcastRun)
}

type Server struct {
	deps   Deps
	auth   *AuthManager
	port   int
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(deps Deps, auth *AuthManager, port int, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "AdminAPI").Logger()
	if deps.SupportsLanguage == nil {
		deps.SupportsLanguage = func(model.Language) bool { return true }
	}
	return &Server{deps: deps, auth: auth, port: port, log: &compLog}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Timeout(60 * time.Second))
		r.Post("/auth/token", s.handleToken)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/broadcasts/{theme}/{lang}", s.handleTriggerBroadcast)
			r.Get("/broadcasts", s.handleListBroadcasts)
			r.Post("/groups/notify", s.handleNotifyGroups)
			r.Post("/groups/events/{kind}", s.handleGroupEvent)
			r.Post("/free-links/{chatID}", s.handleResetFreeLinks)
		})
	})
	return r
}

// Start blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.port).Msg("admin API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
