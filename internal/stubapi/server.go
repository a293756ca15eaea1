// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/research-crawler/pkg/types"
)

// Detail texts returned by the service, matching the real crawler front end.
const (
	detailNoAwards = "未找到符合條件的獎項資料"
	detailNoImpact = "未找到計畫編號 %s 的詳細信息"
	detailNoPlan   = "未找到計畫名稱 '%s' 的數據。"
)

// Server answers the award lookup endpoints from an Index.
type Server struct {
	index  *Index
	delay  time.Duration
	router *chi.Mux
	logger *slog.Logger
}

// NewServer creates a server over index. cfg.Delay, when set, is waited
// out before every award response.
func NewServer(index *Index, cfg types.StubConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		index:  index,
		delay:  cfg.Delay,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/health", s.handleHealth)

	s.router.Route("/api/awards", func(r chi.Router) {
		r.Use(s.slowDown)
		r.Get("/", s.handleSearch)
		r.Get("/detail/{projectNo}", s.handleImpactDetail)
		r.Get("/{planName}", s.handleByPlanName)
	})
}

// handleHealth reports liveness.
// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleSearch returns the awards of one investigator.
// GET /api/awards?pi_name=NAME
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("pi_name"))
	if name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{
				"loc":  []string{"query", "pi_name"},
				"msg":  "field required",
				"type": "value_error.missing",
			}},
		})
		return
	}

	records, err := s.index.ByPIName(r.Context(), name)
	if err != nil {
		s.serverError(w, r, "querying awards", err)
		return
	}
	if len(records) == 0 {
		writeDetail(w, http.StatusNotFound, detailNoAwards)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleImpactDetail returns the impact statement of one project.
// GET /api/awards/detail/{projectNo}
func (s *Server) handleImpactDetail(w http.ResponseWriter, r *http.Request) {
	projectNo := chi.URLParam(r, "projectNo")

	impact, ok, err := s.index.Impact(r.Context(), projectNo)
	if err != nil {
		s.serverError(w, r, "querying impact", err)
		return
	}
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf(detailNoImpact, projectNo))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"project_no": projectNo, "impact": impact})
}

// handleByPlanName returns the records of one plan.
// GET /api/awards/{planName}
func (s *Server) handleByPlanName(w http.ResponseWriter, r *http.Request) {
	plan := chi.URLParam(r, "planName")

	records, err := s.index.ByPlanName(r.Context(), plan)
	if err != nil {
		s.serverError(w, r, "querying plan", err)
		return
	}
	if len(records) == 0 {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf(detailNoPlan, plan))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Error("stub request failed", "op", op, "path", r.URL.Path, "error", err)
	writeDetail(w, http.StatusInternalServerError, "查詢失敗: "+err.Error())
}

// slowDown holds award responses for the configured delay.
func (s *Server) slowDown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.delay > 0 {
			t := time.NewTimer(s.delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request at a level chosen by its status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := []any{
			"status", status,
			"method", r.Method,
			"path", r.URL.Path,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, "query", r.URL.RawQuery)
		}

		switch {
		case status >= 500:
			s.logger.Error("request completed", attrs...)
		case status >= 400:
			s.logger.Warn("request completed", attrs...)
		default:
			s.logger.Info("request completed", attrs...)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v) //nolint:errcheck // client went away
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// ListenAndServe serves s on addr until ctx is done, then shuts down,
// giving in-flight requests up to five seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("stub award service starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("stub award service stopped")
	return nil
}
