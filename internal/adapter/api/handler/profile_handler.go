package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/rentwise/internal/domain"
	"github.com/V4T54L/rentwise/internal/usecase"
)

// TenantHandler serves tenant profiles, residences and favorites.
type TenantHandler struct {
	tenants    *usecase.TenantUseCase
	properties *usecase.PropertyUseCase
	logger     *slog.Logger
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenants *usecase.TenantUseCase, properties *usecase.PropertyUseCase, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenants: tenants, properties: properties, logger: logger}
}

// Get handles GET /tenants/{cognitoId}.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cognitoId")
	if err := requireSelf(r, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	tenant, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, tenant)
}

// Create handles POST /tenants.
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProfile(r, "")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	tenant, err := h.tenants.Create(r.Context(), p)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, tenant)
}

// Update handles PUT /tenants/{cognitoId}.
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProfile(r, chi.URLParam(r, "cognitoId"))
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	tenant, err := h.tenants.Update(r.Context(), p)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, tenant)
}

// CurrentResidences handles GET /tenants/{cognitoId}/current-residences.
func (h *TenantHandler) CurrentResidences(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cognitoId")
	if err := requireSelf(r, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	props, err := h.properties.ListResidences(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, props)
}

// AddFavorite handles POST /tenants/{cognitoId}/favorites/{propertyId}.
func (h *TenantHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.favorite(w, r, h.tenants.AddFavorite)
}

// RemoveFavorite handles DELETE /tenants/{cognitoId}/favorites/{propertyId}.
func (h *TenantHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.favorite(w, r, h.tenants.RemoveFavorite)
}

func (h *TenantHandler) favorite(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, tenantID string, propertyID int64) (*domain.Tenant, error)) {
	id := chi.URLParam(r, "cognitoId")
	if err := requireSelf(r, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	propertyID, err := int64Param(r, "propertyId")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	tenant, err := op(r.Context(), id, propertyID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, tenant)
}

// ManagerHandler serves manager profiles and their listings.
type ManagerHandler struct {
	managers   *usecase.ManagerUseCase
	properties *usecase.PropertyUseCase
	logger     *slog.Logger
}

// NewManagerHandler creates a new ManagerHandler.
func NewManagerHandler(managers *usecase.ManagerUseCase, properties *usecase.PropertyUseCase, logger *slog.Logger) *ManagerHandler {
	return &ManagerHandler{managers: managers, properties: properties, logger: logger}
}

// Get handles GET /managers/{cognitoId}.
func (h *ManagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cognitoId")
	if err := requireSelf(r, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	manager, err := h.managers.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, manager)
}

// Create handles POST /managers.
func (h *ManagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProfile(r, "")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	manager, err := h.managers.Create(r.Context(), p)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, manager)
}

// Update handles PUT /managers/{cognitoId}.
func (h *ManagerHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProfile(r, chi.URLParam(r, "cognitoId"))
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	manager, err := h.managers.Update(r.Context(), p)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, manager)
}

// Properties handles GET /managers/{cognitoId}/properties.
func (h *ManagerHandler) Properties(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cognitoId")
	if err := requireSelf(r, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	props, err := h.properties.ListByManager(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, props)
}

// decodeProfile reads a profile body. On updates pathID wins over the body;
// on creates a missing cognitoId is taken from the token. Either way the
// profile must belong to the caller.
func decodeProfile(r *http.Request, pathID string) (domain.Profile, error) {
	var p domain.Profile
	if err := decodeJSON(r, &p); err != nil {
		return p, err
	}
	caller, err := principal(r)
	if err != nil {
		return p, err
	}
	switch {
	case pathID != "":
		p.CognitoID = pathID
	case p.CognitoID == "":
		p.CognitoID = caller.ID
	}
	if p.CognitoID != caller.ID {
		return p, domain.ErrForbidden
	}
	return p, nil
}
