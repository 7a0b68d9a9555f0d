package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/rentwise/internal/usecase"
)

// LeaseHandler serves lease and payment listings.
type LeaseHandler struct {
	uc     *usecase.LeaseUseCase
	logger *slog.Logger
}

// NewLeaseHandler creates a new LeaseHandler.
func NewLeaseHandler(uc *usecase.LeaseUseCase, logger *slog.Logger) *LeaseHandler {
	return &LeaseHandler{uc: uc, logger: logger}
}

// List handles GET /leases.
func (h *LeaseHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	leases, err := h.uc.List(r.Context(), caller)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, leases)
}

// Payments handles GET /leases/{id}/payments.
func (h *LeaseHandler) Payments(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	caller, err := principal(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	payments, err := h.uc.Payments(r.Context(), caller, id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, payments)
}
