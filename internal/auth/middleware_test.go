package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepgrind/theory-platform/internal/auth/jwt"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/questions", nil)
	claims := &jwt.Claims{UserID: uuid.New(), Email: "user@example.com", Role: role}
	return req.WithContext(context.WithValue(req.Context(), claimsKey{}, claims))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestRequireAuth_RejectsAnonymousRequest(t *testing.T) {
	nextCalled := false
	handler := RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httperrors.ErrCodeAuthenticationRequired, decodeErrorCode(t, rec))
	assert.False(t, nextCalled)
}

func TestRequireAuth_AdmitsAuthenticatedRequest(t *testing.T) {
	nextCalled := false
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithRole(RoleStandard))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, nextCalled)
}

func TestRequireRole_ForbidsStandardSessionOnAdminRoute(t *testing.T) {
	nextCalled := false
	handler := RequireRole(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithRole(RoleStandard))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, httperrors.ErrCodeForbidden, decodeErrorCode(t, rec))
	assert.False(t, nextCalled, "gated handler must not run for a forbidden role")
}

func TestRequireRole_RejectsAnonymousBeforeRoleCheck(t *testing.T) {
	handler := RequireRole(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("gated handler must not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httperrors.ErrCodeAuthenticationRequired, decodeErrorCode(t, rec))
}

func TestRequireRole_AdmitsMatchingRole(t *testing.T) {
	handler := RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithRole(RoleAdmin))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMiddleware_PassesHeaderlessRequestUnauthenticated(t *testing.T) {
	svc, _ := newTestAuthService()

	var sawClaims bool
	handler := Middleware(svc, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawClaims)
}

func TestMiddleware_RejectsMalformedBearerToken(t *testing.T) {
	svc, _ := newTestAuthService()

	handler := Middleware(svc, zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httperrors.ErrCodeInvalidToken, decodeErrorCode(t, rec))
}
