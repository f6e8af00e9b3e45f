package question

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/auth"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// HTTPHandlers exposes catalog endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates catalog HTTP handlers.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

// List handles GET /v1/questions.
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := Filter{
		Difficulty: query.Get("difficulty"),
		Category:   query.Get("category"),
		Tags:       query["tag"],
		Search:     query.Get("q"),
	}

	qs, err := h.svc.List(r.Context(), f)
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = h.redact(r, q)
	}

	respondJSON(w, http.StatusOK, map[string]any{"questions": out})
}

// Get handles GET /v1/questions/{key}. The key may be a uuid or a slug.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"question": h.redact(r, q)})
}

// Create handles POST /v1/questions. Admin only, enforced by routing.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var q Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	created, err := h.svc.Create(r.Context(), q)
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"question": created})
}

// Update handles PUT /v1/questions/{id}. Admin only, enforced by routing.
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeValidationFailed, "Invalid question id")
		return
	}

	var p UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"question": updated})
}

// Delete handles DELETE /v1/questions/{id}. Admin only, enforced by routing.
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeValidationFailed, "Invalid question id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Vote handles POST /v1/questions/{id}/vote.
func (h *HTTPHandlers) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeValidationFailed, "Invalid question id")
		return
	}

	var req struct {
		Vote string `json:"vote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	if err := h.svc.Vote(r.Context(), id, req.Vote); err != nil {
		httperrors.RespondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Evaluate handles POST /v1/questions/{key}/evaluate. Grades an answer
// without recording anything. The result carries the canonical answer,
// so the route requires a session.
func (h *HTTPHandlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	result := h.svc.Evaluate(r.Context(), r.PathValue("key"), req.Answer)
	respondJSON(w, http.StatusOK, map[string]any{"result": result})
}

// redact strips grading fields for callers who are not admins.
func (h *HTTPHandlers) redact(r *http.Request, q Question) Question {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.Role == auth.RoleAdmin {
		return q
	}
	return q.Public()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
