package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cdandre/dealmemo-api/internal/api/shared"
	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
)

// JobExecutor runs a single generation job to completion and reports the
// job's final status.
type JobExecutor interface {
	ExecuteJob(ctx context.Context, jobID uuid.UUID) (domain.JobStatus, error)
}

// GenerateJobRequest is the payload for the internal generation endpoint.
type GenerateJobRequest struct {
	JobID string `json:"job_id" validate:"required,uuid"`
}

// GenerateJobResponse reports the final status of an executed job.
type GenerateJobResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

// WorkerHandler serves the internal generation endpoint that remote-mode API
// instances invoke. It is not part of the public API surface.
type WorkerHandler struct {
	executor JobExecutor
	token    string
}

// NewWorkerHandler creates a new WorkerHandler. An empty token disables the
// bearer check, for use behind a trusted network boundary.
func NewWorkerHandler(executor JobExecutor, token string) *WorkerHandler {
	return &WorkerHandler{
		executor: executor,
		token:    token,
	}
}

// GenerateJob handles POST /internal/v1/generate requests. The job keeps
// running even if the caller gives up on the request, so a caller-side
// timeout never cancels generation work.
func (h *WorkerHandler) GenerateJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.token != "" && !h.authorized(r) {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid worker credentials")
		return
	}

	var req GenerateJobRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	status, err := h.executor.ExecuteJob(context.WithoutCancel(r.Context()), jobID)
	if err != nil {
		log.Error("job execution failed", "error", err, "job_id", jobID)
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateJobResponse{
		JobID:  jobID,
		Status: string(status),
	})
}

func (h *WorkerHandler) authorized(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}
