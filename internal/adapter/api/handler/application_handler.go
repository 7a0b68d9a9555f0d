package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/rentwise/internal/domain"
	"github.com/V4T54L/rentwise/internal/usecase"
)

// ApplicationHandler serves the rental application endpoints.
type ApplicationHandler struct {
	uc     *usecase.ApplicationUseCase
	logger *slog.Logger
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(uc *usecase.ApplicationUseCase, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, logger: logger}
}

// List handles GET /applications?userId=&userType=. The listing is always
// scoped to the caller.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	filter, err := domain.ApplicationFilterFor(caller, q.Get("userId"), q.Get("userType"))
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	views, err := h.uc.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, views)
}

// Create handles POST /applications. A missing tenantCognitoId is taken from
// the caller's token.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateApplicationInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	caller, err := principal(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if in.TenantCognitoID == "" {
		in.TenantCognitoID = caller.ID
	}
	if in.TenantCognitoID != caller.ID {
		respondWithError(w, r, h.logger, domain.ErrForbidden)
		return
	}

	app, err := h.uc.Create(r.Context(), in)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, app)
}

// UpdateStatus handles PUT /applications/{id}/status.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var payload struct {
		Status domain.ApplicationStatus `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	caller, err := principal(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	app, err := h.uc.UpdateStatus(r.Context(), caller, id, payload.Status)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, app)
}
