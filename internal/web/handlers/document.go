package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/session"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// DocumentHandler estimates and generates report documents.
type DocumentHandler struct {
	config *config.Config
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{config: cfg}
}

// EstimateResponse is the predicted document size.
type EstimateResponse struct {
	session.Estimate
	LimitBytes int    `json:"limit_bytes"`
	OverLimit  bool   `json:"over_limit"`
	Warning    string `json:"warning,omitempty"`
}

func newEstimateResponse(est session.Estimate, limit int) EstimateResponse {
	resp := EstimateResponse{Estimate: est, LimitBytes: limit}
	if est.Warning != nil {
		resp.OverLimit = true
		resp.Warning = est.Warning.Error()
	}
	return resp
}

// parseTarget reads the optional per-photo byte budget from the query.
func parseTarget(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("target")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid target %q", raw)
	}
	return n, nil
}

// Estimate compresses every asset (cached) and returns the expected size.
func (h *DocumentHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	target, err := parseTarget(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Precompress(r.Context(), target, h.config.Report.Concurrency); err != nil {
		respondSessionError(w, err)
		return
	}
	est, err := s.EstimateDocumentSize(target)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newEstimateResponse(est, s.Options().SoftLimitBytes))
}

// GenerateRequest is the body of a document request.
type GenerateRequest struct {
	Number      string `json:"number"`
	PerPage     int    `json:"per_page"`
	TargetBytes int    `json:"target_bytes"`
	Confirmed   bool   `json:"confirmed"`
}

// Generate renders the session into a PDF. An estimate over the soft limit
// answers 409 with the estimate until the request is sent again confirmed.
func (h *DocumentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.TargetBytes < 0 {
		respondError(w, http.StatusBadRequest, "target_bytes must not be negative")
		return
	}

	if s.Len() > 0 {
		if err := s.Precompress(r.Context(), req.TargetBytes, h.config.Report.Concurrency); err != nil {
			respondSessionError(w, err)
			return
		}
	}

	doc, err := s.Generate(r.Context(), session.GenerateRequest{
		Number:      req.Number,
		PerPage:     req.PerPage,
		TargetBytes: req.TargetBytes,
		Confirmed:   req.Confirmed,
	})
	var capacity *session.CapacityWarning
	if errors.As(err, &capacity) {
		est, estErr := s.EstimateDocumentSize(req.TargetBytes)
		if estErr != nil {
			respondSessionError(w, estErr)
			return
		}
		respondJSON(w, http.StatusConflict, newEstimateResponse(est, capacity.LimitBytes))
		return
	}
	if err != nil {
		respondSessionError(w, err)
		return
	}

	for _, warning := range doc.Report.Warnings {
		log.Printf("WARNING: %s", warning)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", documentFilename(doc.Report.ReportNumber)))
	w.Header().Set("X-Report-Pages", strconv.Itoa(doc.Report.PageCount))
	w.Header().Set("X-Report-Bytes", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Report-Warnings", strconv.Itoa(len(doc.Report.Warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// documentFilename derives a download name from the report number.
func documentFilename(number string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, number)
	return "relatorio-" + strings.Trim(safe, "-") + ".pdf"
}
