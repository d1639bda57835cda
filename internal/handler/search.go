package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gltch/gltch-cloud/internal/service"
)

// Searcher runs a web search. Implemented by service.SearchService.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]service.SearchResult, error)
}

// SearchHandler handles HTTP requests for web search.
type SearchHandler struct {
	svc    Searcher
	logger *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc Searcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		svc:    svc,
		logger: logger,
	}
}

// Search handles GET /api/v1/search?q=...&n=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	query := r.URL.Query().Get("q")
	numResults := 0
	if n := r.URL.Query().Get("n"); n != "" {
		if parsed, err := strconv.Atoi(n); err == nil && parsed > 0 && parsed <= 10 {
			numResults = parsed
		}
	}

	results, err := h.svc.Search(r.Context(), query, numResults)
	if err != nil {
		if errors.Is(err, service.ErrContentRequired) {
			writeError(w, http.StatusBadRequest, "QUERY_REQUIRED", "Search query is required")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results":   results,
		"formatted": service.FormatResults(results),
	})
}
