package submission

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/auth"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// HTTPHandlers exposes submission endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates submission HTTP handlers.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

// Submit handles POST /v1/questions/{id}/submissions.
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)

	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeValidationFailed, "Invalid question id")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	sub, result, err := h.svc.Submit(r.Context(), userID, questionID, req)
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"submission": sub,
		"result":     result,
	})
}

// List handles GET /v1/submissions and returns the caller's history.
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == uuid.Nil {
		httperrors.RespondError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "Authentication required")
		return
	}

	subs, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// Get handles GET /v1/submissions/{id}. Owner or admin only.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondError(w, http.StatusUnauthorized, httperrors.ErrCodeUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeValidationFailed, "Invalid submission id")
		return
	}

	sub, err := h.svc.Get(r.Context(), id, claims.UserID, claims.Role)
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"submission": sub})
}

// callerID extracts the authenticated user id, or uuid.Nil when the request
// is anonymous.
func callerID(r *http.Request) uuid.UUID {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil
	}
	return claims.UserID
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
