package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// SessionsHandler creates and discards report sessions.
type SessionsHandler struct {
	config   *config.Config
	registry *middleware.SessionRegistry
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(cfg *config.Config, registry *middleware.SessionRegistry) *SessionsHandler {
	return &SessionsHandler{config: cfg, registry: registry}
}

// SessionResponse describes a report session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Variant   string `json:"variant"`
	PerPage   int    `json:"per_page"`
	Assets    int    `json:"assets"`
	ExpiresAt string `json:"expires_at"`
}

func (h *SessionsHandler) describe(rs *middleware.ReportSession) SessionResponse {
	return SessionResponse{
		SessionID: rs.ID,
		Variant:   h.config.Report.Variant,
		PerPage:   rs.Session.Options().PerPage,
		Assets:    rs.Session.Len(),
		ExpiresAt: rs.ExpiresAt.Format(time.RFC3339),
	}
}

// Create starts a new empty report session.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	rs, err := h.registry.Create()
	if err != nil {
		log.Printf("ERROR: failed to create report session: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	respondJSON(w, http.StatusCreated, h.describe(rs))
}

// Get returns the session summary.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rs := middleware.GetReportSessionFromContext(r.Context())
	if rs == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, h.describe(rs))
}

// Delete discards a session and all of its photos.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.registry.Delete(chi.URLParam(r, "sid"))
	w.WriteHeader(http.StatusNoContent)
}
