package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/V4T54L/rentwise/internal/domain"
)

// LeaseUseCase exposes leases and their payments to the parties of a lease.
type LeaseUseCase struct {
	store  domain.Store
	logger *slog.Logger
}

// NewLeaseUseCase creates a new LeaseUseCase.
func NewLeaseUseCase(store domain.Store, logger *slog.Logger) *LeaseUseCase {
	return &LeaseUseCase{
		store:  store,
		logger: logger.With("component", "lease_usecase"),
	}
}

// List returns the caller's leases: a tenant sees their own, a manager sees
// the leases of the properties they manage.
func (uc *LeaseUseCase) List(ctx context.Context, caller domain.Principal) ([]domain.Lease, error) {
	filter, err := leaseFilterFor(caller)
	if err != nil {
		return nil, err
	}
	leases, err := uc.store.Leases().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leases: %w", err)
	}
	return leases, nil
}

// Payments returns the payments of a lease ordered by due date. Only the
// lease's tenant and the property's manager may read them.
func (uc *LeaseUseCase) Payments(ctx context.Context, caller domain.Principal, leaseID int64) ([]domain.Payment, error) {
	lease, err := uc.store.Leases().FindByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("lease %d: %w", leaseID, err)
	}
	if err := uc.authorize(ctx, caller, lease); err != nil {
		return nil, err
	}

	payments, err := uc.store.Payments().ListByLease(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (uc *LeaseUseCase) authorize(ctx context.Context, caller domain.Principal, lease *domain.Lease) error {
	switch caller.Role {
	case domain.RoleTenant:
		if lease.TenantCognitoID == caller.ID {
			return nil
		}
	case domain.RoleManager:
		p, err := uc.store.Properties().FindByID(ctx, lease.PropertyID)
		if err != nil {
			return fmt.Errorf("lease property %d: %w", lease.PropertyID, err)
		}
		if p.ManagerCognitoID == caller.ID {
			return nil
		}
	}
	uc.logger.Warn("lease access denied", "lease_id", lease.ID, "user_id", caller.ID, "role", caller.Role)
	return fmt.Errorf("lease %d: %w", lease.ID, domain.ErrForbidden)
}

func leaseFilterFor(caller domain.Principal) (domain.LeaseFilter, error) {
	if caller.ID == "" {
		return domain.LeaseFilter{}, domain.ErrUnauthorized
	}
	switch caller.Role {
	case domain.RoleTenant:
		return domain.LeaseFilter{TenantID: caller.ID}, nil
	case domain.RoleManager:
		return domain.LeaseFilter{ManagerID: caller.ID}, nil
	}
	return domain.LeaseFilter{}, fmt.Errorf("role %q: %w", caller.Role, domain.ErrForbidden)
}
