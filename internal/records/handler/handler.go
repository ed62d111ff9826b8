// Package handler is the thin REST read surface consumed by the UI:
// collections, detail, and search over the records repositories. It carries
// no business logic; every request runs on its own unit of work session.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kgv/internal/records/models"
	"kgv/pkg/platform/sentinel"
)

// ApplicationReader is the read contract the handlers need from the
// application repository.
type ApplicationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetActive(ctx context.Context) ([]*models.Application, error)
	Search(ctx context.Context, term string) ([]*models.Application, error)
}

// DistrictReader is the read contract for district reference data.
type DistrictReader interface {
	GetAll(ctx context.Context) ([]*models.District, error)
}

// Session is one request-scoped view over the repositories. Sessions are not
// shared across requests.
type Session interface {
	Applications() ApplicationReader
	Districts() DistrictReader
	Close() error
}

// Handler serves the read endpoints.
type Handler struct {
	sessions func() Session
	log      *slog.Logger
}

// New constructs the handler; sessions must yield a fresh Session per call.
func New(sessions func() Session, log *slog.Logger) *Handler {
	return &Handler{sessions: sessions, log: log}
}

// Router wires the public read endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health", h.handleHealth)
	r.Get("/api/applications", h.handleListApplications)
	r.Get("/api/applications/search", h.handleSearchApplications)
	r.Get("/api/applications/{id}", h.handleGetApplication)
	r.Get("/api/districts", h.handleListDistricts)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	s := h.sessions()
	defer s.Close()

	apps, err := s.Applications().GetActive(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationList(apps))
}

func (h *Handler) handleSearchApplications(w http.ResponseWriter, r *http.Request) {
	s := h.sessions()
	defer s.Close()

	apps, err := s.Applications().Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationList(apps))
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	s := h.sessions()
	defer s.Close()

	app, err := s.Applications().GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDetail(app))
}

func (h *Handler) handleListDistricts(w http.ResponseWriter, r *http.Request) {
	s := h.sessions()
	defer s.Close()

	districts, err := s.Districts().GetAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]districtResponse, 0, len(districts))
	for _, d := range districts {
		out = append(out, toDistrictResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeError translates the sentinel taxonomy into HTTP statuses: not-found
// becomes 404, duplicate-key and concurrency conflicts become 409.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, sentinel.ErrDuplicateKey):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	case errors.Is(err, sentinel.ErrConcurrencyConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict, reload and retry"})
	default:
		h.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
