package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/V4T54L/rentwise/internal/domain"
)

// TenantUseCase manages tenant profiles and favorites.
type TenantUseCase struct {
	store  domain.Store
	logger *slog.Logger
}

// NewTenantUseCase creates a new TenantUseCase.
func NewTenantUseCase(store domain.Store, logger *slog.Logger) *TenantUseCase {
	return &TenantUseCase{store: store, logger: logger.With("component", "tenant_usecase")}
}

// Get returns the tenant with favorites.
func (uc *TenantUseCase) Get(ctx context.Context, cognitoID string) (*domain.Tenant, error) {
	t, err := uc.store.Tenants().FindByID(ctx, cognitoID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", cognitoID, err)
	}
	return t, nil
}

// Create registers a tenant. A second registration of the same ID fails
// with ErrConflict.
func (uc *TenantUseCase) Create(ctx context.Context, p domain.Profile) (*domain.Tenant, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t, err := uc.store.Tenants().Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create tenant %s: %w", p.CognitoID, err)
	}
	uc.logger.Info("tenant created", "user_id", t.CognitoID, "email", t.Email)
	return t, nil
}

// Update overwrites the tenant's contact details.
func (uc *TenantUseCase) Update(ctx context.Context, p domain.Profile) (*domain.Tenant, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t, err := uc.store.Tenants().Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update tenant %s: %w", p.CognitoID, err)
	}
	return t, nil
}

// AddFavorite adds the property to the tenant's favorites and returns the
// tenant with the updated set.
func (uc *TenantUseCase) AddFavorite(ctx context.Context, tenantID string, propertyID int64) (*domain.Tenant, error) {
	if _, err := uc.store.Tenants().FindByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	added, err := uc.store.Tenants().AddFavorite(ctx, tenantID, propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("property %d: %w", propertyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	if !added {
		return nil, domain.ErrAlreadyFavorited
	}
	return uc.Get(ctx, tenantID)
}

// RemoveFavorite drops the property from the tenant's favorites. Removing a
// property that is not a favorite is not an error.
func (uc *TenantUseCase) RemoveFavorite(ctx context.Context, tenantID string, propertyID int64) (*domain.Tenant, error) {
	if err := uc.store.Tenants().RemoveFavorite(ctx, tenantID, propertyID); err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}
	return uc.Get(ctx, tenantID)
}

// ManagerUseCase manages manager profiles.
type ManagerUseCase struct {
	store  domain.Store
	logger *slog.Logger
}

// NewManagerUseCase creates a new ManagerUseCase.
func NewManagerUseCase(store domain.Store, logger *slog.Logger) *ManagerUseCase {
	return &ManagerUseCase{store: store, logger: logger.With("component", "manager_usecase")}
}

func (uc *ManagerUseCase) Get(ctx context.Context, cognitoID string) (*domain.Manager, error) {
	m, err := uc.store.Managers().FindByID(ctx, cognitoID)
	if err != nil {
		return nil, fmt.Errorf("manager %s: %w", cognitoID, err)
	}
	return m, nil
}

func (uc *ManagerUseCase) Create(ctx context.Context, p domain.Profile) (*domain.Manager, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := uc.store.Managers().Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create manager %s: %w", p.CognitoID, err)
	}
	uc.logger.Info("manager created", "user_id", m.CognitoID, "email", m.Email)
	return m, nil
}

func (uc *ManagerUseCase) Update(ctx context.Context, p domain.Profile) (*domain.Manager, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m, err := uc.store.Managers().Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update manager %s: %w", p.CognitoID, err)
	}
	return m, nil
}
