package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/platform/logger"
	"github.com/cdandre/dealmemo-api/internal/service"
)

const defaultStreamPollInterval = 1 * time.Second

// StreamHandler serves memo job status as a server-sent event stream.
// Clients receive a progress event whenever the derived progress or job
// status changes, followed by exactly one terminal frame: a complete event
// when the job succeeded, or an error event when it failed.
type StreamHandler struct {
	memoService  service.MemoService
	pollInterval time.Duration
}

// NewStreamHandler creates a new StreamHandler. A pollInterval of zero or
// less falls back to the default.
func NewStreamHandler(memoService service.MemoService, pollInterval time.Duration) *StreamHandler {
	if pollInterval <= 0 {
		pollInterval = defaultStreamPollInterval
	}
	return &StreamHandler{
		memoService:  memoService,
		pollInterval: pollInterval,
	}
}

// StreamMemoStatus handles GET /api/memos/{jobID}/stream requests.
func (h *StreamHandler) StreamMemoStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	jobID, err := getPathUUID(r, "jobID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		HandleAPIError(w, r, fmt.Errorf("streaming unsupported by response writer"), "Streaming not supported")
		return
	}

	// Resolve the job before committing to the stream so missing jobs
	// still get a regular JSON 404.
	snapshot, err := h.memoService.GetStatus(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if done := h.emit(w, flusher, snapshot); done {
		return
	}

	lastStatus := snapshot.Job.Status
	lastProgress := snapshot.Progress

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("stream client disconnected", "job_id", jobID)
			return
		case <-ticker.C:
			snapshot, err := h.memoService.GetStatus(r.Context(), jobID)
			if err != nil {
				writeSSEEvent(w, "error", map[string]string{"error": GetSafeErrorMessage(err)})
				flusher.Flush()
				log.Warn("stream status read failed", "error", err, "job_id", jobID)
				return
			}

			if snapshot.Job.Status == lastStatus && snapshot.Progress == lastProgress {
				continue
			}
			lastStatus = snapshot.Job.Status
			lastProgress = snapshot.Progress

			if done := h.emit(w, flusher, snapshot); done {
				return
			}
		}
	}
}

// emit writes the snapshot as a progress event, or as the terminal frame
// when the job has finished: complete for a successful job, error for a
// failed one. Returns true once a terminal frame has been sent.
func (h *StreamHandler) emit(w http.ResponseWriter, flusher http.Flusher, snapshot *service.JobStatusSnapshot) bool {
	if !snapshot.Job.IsTerminal() {
		writeSSEEvent(w, "progress", snapshotToResponse(snapshot))
		flusher.Flush()
		return false
	}

	if snapshot.Job.Status == domain.JobStatusFailed {
		message := snapshot.Job.Error
		if message == "" {
			message = "memo generation failed"
		}
		writeSSEEvent(w, "error", map[string]string{"error": message})
	} else {
		writeSSEEvent(w, "complete", snapshotToResponse(snapshot))
	}
	flusher.Flush()
	return true
}

// writeSSEEvent writes a single server-sent event frame.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
