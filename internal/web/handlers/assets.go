package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-report/internal/compress"
	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/session"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// AssetsHandler manages the photos of a report session.
type AssetsHandler struct{}

// NewAssetsHandler creates a new assets handler.
func NewAssetsHandler() *AssetsHandler {
	return &AssetsHandler{}
}

// SkippedFile is an upload that could not be decoded.
type SkippedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResponse lists the assets created by an upload.
type UploadResponse struct {
	IDs     []string        `json:"ids"`
	Skipped []SkippedFile   `json:"skipped"`
	Assets  []session.Asset `json:"assets"`
}

// readUploadedFile reads one multipart file into memory.
func readUploadedFile(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %s", fh.Filename)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	return data, nil
}

// Upload ingests the multipart "files" field in upload order. Files that are
// not decodable images are skipped and listed in the response.
func (h *AssetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}

	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	resp := UploadResponse{IDs: []string{}, Skipped: []SkippedFile{}}
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		data, err := readUploadedFile(fh)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := s.Ingest(data)
		if err != nil {
			var decodeErr *compress.DecodeError
			if !errors.As(err, &decodeErr) {
				respondSessionError(w, err)
				return
			}
			log.Printf("WARNING: skipping %s: %v", sanitizeForLog(name), err)
			resp.Skipped = append(resp.Skipped, SkippedFile{Name: name, Error: err.Error()})
			continue
		}
		resp.IDs = append(resp.IDs, id)
	}
	resp.Assets = s.Assets()

	status := http.StatusCreated
	if len(resp.IDs) == 0 {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, resp)
}

// List returns the assets in page order.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Assets())
}

// CaptionRequest is the body of a caption update.
type CaptionRequest struct {
	Caption string `json:"caption"`
}

// SetCaption replaces the caption of one asset.
func (h *AssetsHandler) SetCaption(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	var req CaptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := s.SetCaption(chi.URLParam(r, "id"), req.Caption); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveRequest is the body of a reorder request.
type MoveRequest struct {
	Delta int `json:"delta"`
}

// Move shifts one asset by delta positions and returns its new order.
func (h *AssetsHandler) Move(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	order, err := s.Reorder(chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"order": order})
}

// Delete removes one asset.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	if err := s.Remove(chi.URLParam(r, "id")); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reset removes every asset but keeps the session.
func (h *AssetsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := middleware.MustGetReportSession(r.Context(), w)
	if s == nil {
		return
	}
	s.Reset()
	w.WriteHeader(http.StatusNoContent)
}
