// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gltch/gltch-cloud/internal/auth"
	"github.com/gltch/gltch-cloud/internal/handler/dto"
	"github.com/gltch/gltch-cloud/internal/model"
)

// Root handles GET /.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "GLTCH Cloud API",
		"version": "0.1.0",
	})
}

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// identityFromRequest extracts the verified identity placed on the
// context by the auth middleware.
func identityFromRequest(ctx context.Context) *model.AuthContext {
	return auth.AuthFromContext(ctx)
}

// requireIdentity extracts the caller identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*model.AuthContext, bool) {
	identity := identityFromRequest(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
		return nil, false
	}
	return identity, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes a uniform error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
