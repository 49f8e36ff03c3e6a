// Package httpapi serves the scheduler over JSON HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
	"github.com/sandeepkv93/dayplan/internal/summary"
)

var errBadRequest = errors.New("httpapi: bad request")

// Service is what the routes need from app.Container.
type Service interface {
	AddTask(ctx context.Context, name string, deadline time.Time, tag string, estimatedTime, sections int) (model.Task, error)
	RemoveTask(ctx context.Context, name string) error
	AddClass(ctx context.Context, name string, days []string, start, end model.ClockTime) (model.ClassSchedule, error)
	SetWorkingHours(ctx context.Context, day string, start, end model.ClockTime) (model.WorkingHours, error)
	CompleteTask(ctx context.Context, name string, actualTime int) (model.HistoryEntry, error)

	Tasks() []model.Task
	Classes() []model.ClassSchedule
	WorkingHours() []model.WorkingHours
	Schedule(date model.Date, prefs model.Preferences) []scheduler.Entry
	NextTask(prefs model.Preferences, energy model.EnergyTier) (model.Task, bool, error)
	DailySummary(date model.Date) summary.Daily
	WeeklySummary(start model.Date) summary.Weekly

	Preferences(tag string, priority float64, estimatedTime int) model.Preferences
	TaskDefaults() (string, int)
	Today() model.Date
	Location() *time.Location
}

type Server struct {
	svc     Service
	logger  *slog.Logger
	handler http.Handler
}

func New(svc Service, logger *slog.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s := &Server{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/tasks", s.route(map[string]http.HandlerFunc{
		http.MethodGet:    s.listTasks,
		http.MethodPost:   s.postTask,
		http.MethodDelete: s.deleteTask,
	}))
	mux.HandleFunc("/classes", s.route(map[string]http.HandlerFunc{
		http.MethodGet:  s.listClasses,
		http.MethodPost: s.postClass,
	}))
	mux.HandleFunc("/work-hours", s.route(map[string]http.HandlerFunc{
		http.MethodGet:  s.listWorkingHours,
		http.MethodPost: s.postWorkingHours,
	}))
	mux.HandleFunc("/schedule", s.route(map[string]http.HandlerFunc{
		http.MethodGet: s.getSchedule,
	}))
	mux.HandleFunc("/next", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.postNext,
	}))
	mux.HandleFunc("/complete", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.postComplete,
	}))
	mux.HandleFunc("/summary/daily", s.route(map[string]http.HandlerFunc{
		http.MethodGet: s.getDailySummary,
	}))
	mux.HandleFunc("/summary/weekly", s.route(map[string]http.HandlerFunc{
		http.MethodGet: s.getWeeklySummary,
	}))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) route(methods map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h, ok := methods[r.Method]
		if !ok {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrDuplicateTask):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidTask),
		errors.Is(err, model.ErrInvalidClass),
		errors.Is(err, model.ErrInvalidInterval),
		errors.Is(err, model.ErrInvalidEstimate),
		errors.Is(err, model.ErrInvalidActualTime),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidClockTime),
		errors.Is(err, model.ErrUnknownWeekday),
		errors.Is(err, model.ErrUnknownEnergyTier):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
