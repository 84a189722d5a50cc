package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/maauso/novareel-api/internal/job"
)

// DefaultPromptCharLimit is the longest prompt accepted, in characters.
const DefaultPromptCharLimit = 2400

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service         *job.Service
	validator       *validator.Validate
	logger          *slog.Logger
	promptCharLimit int
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithPromptCharLimit sets the maximum prompt length in characters.
func WithPromptCharLimit(limit int) HandlerOption {
	return func(h *Handlers) {
		if limit > 0 {
			h.promptCharLimit = limit
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.Service, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:         service,
		validator:       validator.New(),
		logger:          logger,
		promptCharLimit: DefaultPromptCharLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /api/health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GenerateVideo handles POST /api/generate-video requests.
func (h *Handlers) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req GenerateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if msg, ok := h.validatePrompt(req); !ok {
		h.logger.Warn("request validation failed",
			slog.String("error", msg),
		)
		writeError(w, http.StatusBadRequest, msg, "VALIDATION_ERROR")
		return
	}

	// An abandoned request must not abort an in-flight remote call.
	ctx := context.WithoutCancel(r.Context())

	created, err := h.service.Submit(ctx, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, job.ErrEmptyPrompt):
			writeError(w, http.StatusBadRequest, "Prompt cannot be empty.", "VALIDATION_ERROR")
		case errors.Is(err, job.ErrSubmission):
			writeError(w, http.StatusBadGateway,
				"Unable to start video generation job. Check Bedrock access and quotas.", "SUBMISSION_FAILED")
		default:
			h.logger.Error("failed to create job",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, VideoJobResponse{
		JobID:  created.ID,
		Status: string(created.Status),
	})
}

// VideoStatus handles GET /api/video-status/{job_id} requests.
func (h *Handlers) VideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	found, err := h.service.GetStatus(context.WithoutCancel(r.Context()), jobID)
	if err != nil {
		switch {
		case errors.Is(err, job.ErrJobNotFound):
			writeError(w, http.StatusNotFound, "Job not found.", "JOB_NOT_FOUND")
		case errors.Is(err, job.ErrUpstream):
			writeError(w, http.StatusBadGateway, "Unable to retrieve job status from Bedrock.", "UPSTREAM_ERROR")
		default:
			h.logger.Error("failed to get job status",
				slog.String("job_id", jobID),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, newJobStatusResponse(found))
}

// ListJobs handles GET /api/jobs requests.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
		return
	}

	resp := JobListResponse{Jobs: make([]JobSummary, 0, len(jobs))}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, newJobSummary(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

// validatePrompt returns a client-facing message when req is rejected.
// Length is counted in characters, not bytes.
func (h *Handlers) validatePrompt(req GenerateVideoRequest) (string, bool) {
	if err := h.validator.Struct(req); err != nil {
		return "Prompt cannot be empty.", false
	}
	if err := h.validator.Var(req.Prompt, fmt.Sprintf("max=%d", h.promptCharLimit)); err != nil {
		return fmt.Sprintf("Prompt too long. Maximum %d characters (~500 tokens).", h.promptCharLimit), false
	}
	return "", true
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
