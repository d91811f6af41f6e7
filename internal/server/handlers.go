package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/framesight/framesight-api/internal/analysis"
	"github.com/framesight/framesight-api/internal/storage"
)

// maxUploadBytes bounds the size of one uploaded video.
const maxUploadBytes = 512 << 20 // 512 MiB

// Static errors for form parsing.
var (
	errBadInterval     = errors.New(`form field "interval_sec" must be a number`)
	errBadLastModified = errors.New(`form field "last_modified" must be an integer`)
)

// multipartMemoryBytes is how much of the form is held in memory before
// spilling to disk.
const multipartMemoryBytes = 32 << 20

// AnalysisService runs the analysis pipeline for one request.
type AnalysisService interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Response
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service   AnalysisService
	store     storage.Storage
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service AnalysisService, store storage.Storage, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		service:   service,
		store:     store,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateAnalysis handles POST /analyses requests. The body is a
// multipart form: "video" (file, required), "prompt" (text, optional),
// "interval_sec" (float seconds, optional) and "last_modified" (epoch
// millis, optional).
func (h *Handlers) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		h.logger.Warn("failed to parse multipart form",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid multipart form or upload too large", "INVALID_FORM")
		return
	}

	form, err := h.parseForm(r)
	if err != nil {
		h.logger.Warn("form validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, `missing "video" file part`, "MISSING_VIDEO")
		return
	}
	defer func() { _ = file.Close() }()

	// Spool the upload so the sampler can drive ffmpeg over a real file.
	path, err := h.store.SaveTemp(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("failed to spool upload",
			slog.String("video", header.Filename),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, AnalyzeResponse{
			Error: &AnalysisError{Message: "uploaded video could not be read"},
		})
		return
	}
	defer func() {
		if err := h.store.CleanupTemp(context.WithoutCancel(r.Context()), []string{path}); err != nil {
			h.logger.Warn("spool cleanup failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}()

	lastModified := time.Now()
	if form.LastModifiedMillis > 0 {
		lastModified = time.UnixMilli(form.LastModifiedMillis)
	}

	resp := h.service.Analyze(r.Context(), analysis.Request{
		VideoPath:    path,
		VideoName:    header.Filename,
		VideoSize:    header.Size,
		VideoMIME:    header.Header.Get("Content-Type"),
		LastModified: lastModified,
		Prompt:       form.Prompt,
		IntervalSec:  form.IntervalSec,
	})

	h.logger.Info("analysis completed",
		slog.String("video", header.Filename),
		slog.Int64("size_bytes", header.Size),
		slog.Bool("degraded", resp.Err != nil),
	)

	writeJSON(w, http.StatusOK, toAnalyzeResponse(resp))
}

// parseForm extracts and validates the non-file form fields.
func (h *Handlers) parseForm(r *http.Request) (analyzeForm, error) {
	form := analyzeForm{
		Prompt: r.FormValue("prompt"),
	}

	if raw := r.FormValue("interval_sec"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return form, errBadInterval
		}
		form.IntervalSec = v
	}
	if raw := r.FormValue("last_modified"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return form, errBadLastModified
		}
		form.LastModifiedMillis = v
	}

	if err := h.validator.Struct(form); err != nil {
		return form, err
	}
	return form, nil
}

// toAnalyzeResponse converts the domain response to the wire DTO.
func toAnalyzeResponse(resp analysis.Response) AnalyzeResponse {
	if resp.Err != nil {
		return AnalyzeResponse{
			Error: &AnalysisError{Message: resp.Err.Message, Code: resp.Err.Code},
		}
	}
	return AnalyzeResponse{
		Data: &AnalysisResult{
			Analysis:        resp.Data.Analysis,
			Model:           resp.Data.Model,
			FramesExtracted: resp.Data.FramesExtracted,
		},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
