package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdandre/dealmemo-api/internal/api"
	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/service"
)

func newDealRouter(dealService service.DealService) http.Handler {
	handler := api.NewDealHandler(dealService)
	r := chi.NewRouter()
	r.Post("/api/deals", handler.CreateDeal)
	r.Get("/api/deals", handler.ListDeals)
	r.Get("/api/deals/{dealID}", handler.GetDeal)
	return r
}

func TestCreateDeal(t *testing.T) {
	t.Parallel()

	t.Run("valid request creates deal", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{
			createDealFn: func(ctx context.Context, name, company, stage, description string) (*domain.Deal, error) {
				assert.Equal(t, "Acme Series A", name)
				return domain.NewDeal(name, company, stage, description)
			},
		}

		body := `{"name":"Acme Series A","company":"Acme","stage":"series_a","description":"B2B infra"}`
		req := httptest.NewRequest(http.MethodPost, "/api/deals", strings.NewReader(body))
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp api.DealResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Acme", resp.Company)
		assert.NotEqual(t, uuid.Nil, resp.ID)
	})

	t.Run("missing required field returns 400", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{
			createDealFn: func(ctx context.Context, name, company, stage, description string) (*domain.Deal, error) {
				t.Fatal("service should not be called")
				return nil, nil
			},
		}

		body := `{"company":"Acme","stage":"series_a","description":"B2B infra"}`
		req := httptest.NewRequest(http.MethodPost, "/api/deals", strings.NewReader(body))
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{}
		req := httptest.NewRequest(http.MethodPost, "/api/deals", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetDeal(t *testing.T) {
	t.Parallel()

	t.Run("existing deal", func(t *testing.T) {
		t.Parallel()

		deal := newTestDeal(t)
		svc := &mockDealService{
			getDealFn: func(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
				assert.Equal(t, deal.ID, dealID)
				return deal, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/deals/"+deal.ID.String(), nil)
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.DealResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, deal.ID, resp.ID)
	})

	t.Run("unknown deal returns 404", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{
			getDealFn: func(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
				return nil, service.ErrDealNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/deals/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListDeals(t *testing.T) {
	t.Parallel()

	t.Run("returns deals with default pagination", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{
			listDealsFn: func(ctx context.Context, limit, offset int) ([]*domain.Deal, error) {
				assert.Equal(t, 50, limit)
				assert.Equal(t, 0, offset)
				return []*domain.Deal{newTestDeal(t), newTestDeal(t)}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.DealListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Deals, 2)
	})

	t.Run("limit is capped", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{
			listDealsFn: func(ctx context.Context, limit, offset int) ([]*domain.Deal, error) {
				assert.Equal(t, 200, limit)
				return nil, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/deals?limit=5000", nil)
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid limit returns 400", func(t *testing.T) {
		t.Parallel()

		svc := &mockDealService{}
		req := httptest.NewRequest(http.MethodGet, "/api/deals?limit=abc", nil)
		w := httptest.NewRecorder()
		newDealRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
