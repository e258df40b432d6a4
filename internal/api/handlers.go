package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/motioneffector/wiki/internal/apperr"
	"github.com/motioneffector/wiki/internal/models"
	"github.com/motioneffector/wiki/internal/wikiservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *wikiservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *wikiservice.Service) *Handler {
	return &Handler{svc: svc}
}

func pageID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// writeServiceError maps service-layer sentinel errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListPages handles GET /api/pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListPages(r.Context(), limit, offset, q.Get("tag"), q.Get("type"), q.Get("sort"))
	if err != nil {
		writeServiceError(w, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": items,
		"total": total,
	})
}

// CreatePage handles POST /api/pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var in wikiservice.CreatePageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	page, err := h.svc.CreatePage(r.Context(), in)
	if err != nil {
		writeServiceError(w, "create page", err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// GetPage handles GET /api/pages/{id}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetPage(r.Context(), pageID(r))
	if err != nil {
		writeServiceError(w, "get page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UpdatePage handles PUT /api/pages/{id} with optimistic concurrency via
// the If-Match header.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var in wikiservice.UpdatePageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	page, err := h.svc.UpdatePage(r.Context(), pageID(r), in, ifMatch)
	if err != nil {
		writeServiceError(w, "update page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeletePage handles DELETE /api/pages/{id}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePage(r.Context(), pageID(r)); err != nil {
		writeServiceError(w, "delete page", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenamePage handles POST /api/pages/{id}/rename.
func (h *Handler) RenamePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req struct {
		Title    string `json:"title"`
		UpdateID bool   `json:"update_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	page, err := h.svc.RenamePage(r.Context(), pageID(r), req.Title, req.UpdateID)
	if err != nil {
		writeServiceError(w, "rename page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Links handles GET /api/pages/{id}/links.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"links": h.svc.Links(r.Context(), pageID(r)),
	})
}

// Backlinks handles GET /api/pages/{id}/backlinks.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"backlinks": h.svc.Backlinks(r.Context(), pageID(r)),
	})
}

// Connected handles GET /api/pages/{id}/connected?depth=N.
func (h *Handler) Connected(w http.ResponseWriter, r *http.Request) {
	depth := 1
	if raw := r.URL.Query().Get("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("depth must be a non-negative integer"))
			return
		}
		depth = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": h.svc.Connected(r.Context(), pageID(r), depth),
	})
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"graph": h.svc.Graph(r.Context()),
	})
}

// DeadLinks handles GET /api/graph/dead-links.
func (h *Handler) DeadLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dead_links": h.svc.DeadLinks(r.Context()),
	})
}

// Orphans handles GET /api/graph/orphans.
func (h *Handler) Orphans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"orphans": h.svc.Orphans(r.Context()),
	})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit, r.URL.Query().Get("tag"))
	if err != nil {
		writeServiceError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Export handles GET /api/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": h.svc.Export(r.Context()),
	})
}

// Import handles POST /api/import?mode=replace|merge|skip.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	mode, err := wikiservice.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req struct {
		Pages []*models.Page `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	stats, err := h.svc.Import(r.Context(), req.Pages, mode)
	if err != nil {
		writeServiceError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
