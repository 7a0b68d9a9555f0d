package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/rentwise/internal/adapter/auth"
	"github.com/V4T54L/rentwise/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"internal","message":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError maps err onto the API error taxonomy. Only unexpected
// errors are logged, and their text never reaches the client.
func respondWithError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondWithJSON(w, logger, status, body)
}

func classify(err error) (int, ErrorResponse) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{"validation", verr.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{"validation", err.Error()}
	case errors.Is(err, domain.ErrAlreadyFavorited):
		return http.StatusConflict, ErrorResponse{"already_favorited", "property already added as favorite"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{"invalid_transition", err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrorResponse{"conflict", err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{"not_found", err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{"unauthorized", "unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{"forbidden", "access denied"}
	}
	return http.StatusInternalServerError, ErrorResponse{"internal", "internal server error"}
}

// int64Param reads a positive integer path parameter.
func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// principal returns the caller set by the auth middleware.
func principal(r *http.Request) (domain.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}

// requireSelf rejects callers acting on another user's records.
func requireSelf(r *http.Request, cognitoID string) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	if p.ID != cognitoID {
		return domain.ErrForbidden
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("body", "malformed JSON")
	}
	return nil
}
