package api

import (
	"errors"
	"net/http"

	"github.com/cdandre/dealmemo-api/internal/api/shared"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
	"github.com/cdandre/dealmemo-api/internal/service"
)

// MemoHandler handles memo generation HTTP requests.
type MemoHandler struct {
	memoService service.MemoService
}

// NewMemoHandler creates a new MemoHandler.
func NewMemoHandler(memoService service.MemoService) *MemoHandler {
	return &MemoHandler{
		memoService: memoService,
	}
}

// GenerateMemo handles POST /api/deals/{dealID}/memo requests.
//
// The call blocks until generation finishes or the launch wait window
// expires. On timeout it responds 504 with the job's current snapshot in
// the body so the caller can keep polling; the job itself keeps running.
func (h *MemoHandler) GenerateMemo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	dealID, err := getPathUUID(r, "dealID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	snapshot, err := h.memoService.StartGeneration(r.Context(), dealID)
	if err != nil {
		if errors.Is(err, service.ErrGenerationTimeout) && snapshot != nil {
			log.Info("generation wait window expired, job still running",
				"job_id", snapshot.Job.ID,
				"deal_id", dealID,
				"progress", snapshot.Progress)
			shared.RespondWithJSON(w, r, http.StatusGatewayTimeout, snapshotToResponse(snapshot))
			return
		}

		log.Warn("memo generation failed to complete", "error", err, "deal_id", dealID)
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snapshot))
}

// GetMemoStatus handles GET /api/memos/{jobID} requests. Progress in the
// response is derived from section states at read time.
func (h *MemoHandler) GetMemoStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := getPathUUID(r, "jobID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	snapshot, err := h.memoService.GetStatus(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snapshot))
}
