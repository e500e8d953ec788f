package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdandre/dealmemo-api/internal/api/middleware"
	"github.com/cdandre/dealmemo-api/internal/api/shared"
	"github.com/cdandre/dealmemo-api/internal/service/auth"
)

// mockJWTService implements auth.JWTService for middleware tests.
type mockJWTService struct {
	generateTokenFn func(ctx context.Context, subjectID uuid.UUID) (string, error)
	validateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockJWTService) GenerateToken(ctx context.Context, subjectID uuid.UUID) (string, error) {
	return m.generateTokenFn(ctx, subjectID)
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.validateTokenFn(ctx, tokenString)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	subjectID := uuid.New()

	newProtectedHandler := func(jwtService auth.JWTService, captured *uuid.UUID) http.Handler {
		m := middleware.NewAuthMiddleware(jwtService)
		return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := r.Context().Value(shared.SubjectIDContextKey).(uuid.UUID); ok {
				*captured = id
			}
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("valid token passes subject ID through", func(t *testing.T) {
		t.Parallel()

		svc := &mockJWTService{
			validateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				assert.Equal(t, "good-token", tokenString)
				return &auth.Claims{SubjectID: subjectID}, nil
			},
		}

		var captured uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		newProtectedHandler(svc, &captured).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, subjectID, captured)
	})

	t.Run("missing header returns 401", func(t *testing.T) {
		t.Parallel()

		var captured uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
		w := httptest.NewRecorder()
		newProtectedHandler(&mockJWTService{}, &captured).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, uuid.Nil, captured)
	})

	t.Run("malformed header returns 401", func(t *testing.T) {
		t.Parallel()

		var captured uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		newProtectedHandler(&mockJWTService{}, &captured).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token returns 401", func(t *testing.T) {
		t.Parallel()

		svc := &mockJWTService{
			validateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
		}

		var captured uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		w := httptest.NewRecorder()
		newProtectedHandler(svc, &captured).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		t.Parallel()

		svc := &mockJWTService{
			validateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return nil, auth.ErrInvalidToken
			},
		}

		var captured uuid.UUID
		req := httptest.NewRequest(http.MethodGet, "/api/deals", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()
		newProtectedHandler(svc, &captured).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
