package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdandre/dealmemo-api/internal/api"
	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/service"
)

func newMemoRouter(memoService service.MemoService) http.Handler {
	handler := api.NewMemoHandler(memoService)
	r := chi.NewRouter()
	r.Post("/api/deals/{dealID}/memo", handler.GenerateMemo)
	r.Get("/api/memos/{jobID}", handler.GetMemoStatus)
	return r
}

func TestGenerateMemo(t *testing.T) {
	t.Parallel()

	t.Run("completed generation returns the finished memo", func(t *testing.T) {
		t.Parallel()

		dealID := uuid.New()
		svc := &mockMemoService{
			startGenerationFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				assert.Equal(t, dealID, id)
				return newTestSnapshot(t, id, 12), nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/deals/"+dealID.String()+"/memo", nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.MemoJobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dealID, resp.DealID)
		assert.Equal(t, string(domain.JobStatusCompleted), resp.Status)
		assert.InDelta(t, 100.0, resp.Progress, 0.01)
		assert.Equal(t, 12, resp.SectionsCompleted)
		assert.Len(t, resp.Sections, 12)
		assert.Len(t, resp.Content, 12)

		for _, section := range resp.Sections {
			assert.NotEqual(t, uuid.Nil, section.ID)
			assert.Equal(t, "generated text", section.Content)
		}
	})

	t.Run("timeout returns 504 with the running job snapshot", func(t *testing.T) {
		t.Parallel()

		dealID := uuid.New()
		svc := &mockMemoService{
			startGenerationFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				return newTestSnapshot(t, id, 3), service.ErrGenerationTimeout
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/deals/"+dealID.String()+"/memo", nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusGatewayTimeout, w.Code)

		var resp api.MemoJobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(domain.JobStatusGenerating), resp.Status)
		assert.InDelta(t, 25.0, resp.Progress, 0.01)
	})

	t.Run("active job conflict returns 409", func(t *testing.T) {
		t.Parallel()

		svc := &mockMemoService{
			startGenerationFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				return nil, service.ErrGenerationInProgress
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/deals/"+uuid.NewString()+"/memo", nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown deal returns 404", func(t *testing.T) {
		t.Parallel()

		svc := &mockMemoService{
			startGenerationFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				return nil, service.ErrDealNotFound
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/deals/"+uuid.NewString()+"/memo", nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed deal ID returns 400", func(t *testing.T) {
		t.Parallel()

		svc := &mockMemoService{
			startGenerationFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				t.Fatal("service should not be called")
				return nil, nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/deals/not-a-uuid/memo", nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetMemoStatus(t *testing.T) {
	t.Parallel()

	t.Run("returns snapshot with derived progress", func(t *testing.T) {
		t.Parallel()

		jobID := uuid.New()
		svc := &mockMemoService{
			getStatusFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				assert.Equal(t, jobID, id)
				return newTestSnapshot(t, uuid.New(), 6), nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/memos/"+jobID.String(), nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.MemoJobResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(domain.JobStatusGenerating), resp.Status)
		assert.InDelta(t, 50.0, resp.Progress, 0.01)
		assert.Equal(t, 6, resp.SectionsCompleted)
		assert.Equal(t, 12, resp.TotalSections)

		// Finished sections carry their content inline; pending ones do not.
		assert.NotEqual(t, uuid.Nil, resp.Sections[0].ID)
		assert.Equal(t, "generated text", resp.Sections[0].Content)
		assert.Empty(t, resp.Sections[11].Content)
	})

	t.Run("unknown job returns 404", func(t *testing.T) {
		t.Parallel()

		svc := &mockMemoService{
			getStatusFn: func(ctx context.Context, id uuid.UUID) (*service.JobStatusSnapshot, error) {
				return nil, service.ErrJobNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/memos/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		newMemoRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
