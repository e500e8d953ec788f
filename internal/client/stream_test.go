package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdandre/dealmemo-api/internal/client"
)

func writeSSE(w http.ResponseWriter, event string, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestStreamMemoStatus(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()

	t.Run("delivers progress events then complete exactly once", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/memos/"+jobID.String()+"/stream", r.URL.Path)
			w.Header().Set("Content-Type", "text/event-stream")

			writeSSE(w, "progress", fmt.Sprintf(`{"job_id":"%s","status":"generating","progress":25}`, jobID))
			writeSSE(w, "progress", fmt.Sprintf(`{"job_id":"%s","status":"generating","progress":50}`, jobID))
			writeSSE(w, "progress", fmt.Sprintf(`{"job_id":"%s","status":"generating","progress":75}`, jobID))
			writeSSE(w, "complete", fmt.Sprintf(`{"job_id":"%s","status":"completed","progress":100}`, jobID))
		}))
		defer server.Close()

		var progress []float64
		var completions int
		c := client.New(server.URL, "")
		err := c.StreamMemoStatus(context.Background(), jobID, client.StreamHandlers{
			OnProgress: func(job *client.MemoJob) {
				progress = append(progress, job.Progress)
			},
			OnComplete: func(job *client.MemoJob) {
				completions++
				// Complete must arrive only after every progress event.
				assert.Len(t, progress, 3)
				assert.Equal(t, "completed", job.Status)
			},
		})

		require.NoError(t, err)
		assert.Equal(t, []float64{25, 50, 75}, progress)
		assert.Equal(t, 1, completions)
	})

	t.Run("error event surfaces to the handler and stops the stream", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(w, "error", `{"error":"An unexpected error occurred"}`)
		}))
		defer server.Close()

		var reported string
		c := client.New(server.URL, "")
		err := c.StreamMemoStatus(context.Background(), jobID, client.StreamHandlers{
			OnError: func(message string) {
				reported = message
			},
		})

		require.Error(t, err)
		assert.Equal(t, "An unexpected error occurred", reported)
	})

	t.Run("failed job streams progress then error, never complete", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(w, "progress", fmt.Sprintf(`{"job_id":"%s","status":"generating","progress":25}`, jobID))
			writeSSE(w, "error", `{"error":"generation failed for sections: market_analysis"}`)
		}))
		defer server.Close()

		var progressCount int
		var reported string
		c := client.New(server.URL, "")
		err := c.StreamMemoStatus(context.Background(), jobID, client.StreamHandlers{
			OnProgress: func(job *client.MemoJob) {
				progressCount++
			},
			OnComplete: func(job *client.MemoJob) {
				t.Fatal("OnComplete must not fire for a failed job")
			},
			OnError: func(message string) {
				reported = message
			},
		})

		require.Error(t, err)
		assert.Equal(t, 1, progressCount)
		assert.Equal(t, "generation failed for sections: market_analysis", reported)
	})

	t.Run("rejected stream returns APIError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Memo job not found"}`))
		}))
		defer server.Close()

		c := client.New(server.URL, "")
		err := c.StreamMemoStatus(context.Background(), jobID, client.StreamHandlers{})

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("truncated stream reports an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(w, "progress", fmt.Sprintf(`{"job_id":"%s","status":"generating","progress":25}`, jobID))
			// Connection drops before the complete event.
		}))
		defer server.Close()

		c := client.New(server.URL, "")
		err := c.StreamMemoStatus(context.Background(), jobID, client.StreamHandlers{})
		require.Error(t, err)
	})
}
