package shared_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdandre/dealmemo-api/internal/api/shared"
)

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("set and get round trip", func(t *testing.T) {
		t.Parallel()

		ctx := shared.SetTraceID(context.Background())
		traceID := shared.GetTraceID(ctx)
		assert.Len(t, traceID, 2*shared.TraceIDLength)
	})

	t.Run("missing trace ID returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", shared.GetTraceID(context.Background()))
	})

	t.Run("trace IDs are unique", func(t *testing.T) {
		t.Parallel()

		first := shared.GetTraceID(shared.SetTraceID(context.Background()))
		second := shared.GetTraceID(shared.SetTraceID(context.Background()))
		assert.NotEqual(t, first, second)
	})
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	shared.RespondWithError(w, req, http.StatusNotFound, "Deal not found")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Deal not found", resp.Error)
	assert.NotEmpty(t, resp.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
	w := httptest.NewRecorder()

	shared.RespondWithErrorAndLog(w, req, http.StatusInternalServerError,
		"An unexpected error occurred", errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The raw error must never reach the client.
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", bytesReader(`{"name":"Acme"}`))
		var p payload
		require.NoError(t, shared.DecodeJSON(req, &p))
		assert.Equal(t, "Acme", p.Name)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", bytesReader("{nope"))
		var p payload
		assert.Error(t, shared.DecodeJSON(req, &p))
	})
}
