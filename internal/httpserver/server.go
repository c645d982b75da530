package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger проверка доступности зависимости, например *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PreviewCounter количество живых превью
type PreviewCounter interface {
	Live() int
}

// Server служебный HTTP: health-check для оркестратора контейнеров
type Server struct {
	server   *http.Server
	db       Pinger
	previews PreviewCounter
	logger   *slog.Logger
}

// New собирает сервер. db может быть nil, если база не настроена.
func New(addr string, db Pinger, previews PreviewCounter, logger *slog.Logger) *Server {
	s := &Server{
		db:       db,
		previews: previews,
		logger:   logger,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.health)
	r.Get("/healthz", s.health)
	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Previews int    `json:"live_previews"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "disabled"}
	code := http.StatusOK

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Error("database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	if s.previews != nil {
		resp.Previews = s.previews.Live()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("error serializing response body", "error", err)
	}
}

// Run слушает addr до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
