package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/photo-report/internal/compress"
	"github.com/kozaktomas/photo-report/internal/layout"
	"github.com/kozaktomas/photo-report/internal/session"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondSessionError maps controller errors to HTTP statuses.
func respondSessionError(w http.ResponseWriter, err error) {
	var decodeErr *compress.DecodeError
	var encodeErr *compress.EncodeError
	switch {
	case errors.Is(err, session.ErrAssetNotFound):
		respondError(w, http.StatusNotFound, "asset not found")
	case errors.Is(err, session.ErrNoImages):
		respondError(w, http.StatusBadRequest, "no images")
	case errors.Is(err, layout.ErrInvalidPerPage):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &decodeErr):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &encodeErr):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrMissingDependency):
		log.Printf("ERROR: %v", err)
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("ERROR: %s", sanitizeForLog(err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
