package domain

import "context"

// ApplicationRepository persists rental applications.
type ApplicationRepository interface {
	// List returns applications with property (location, manager) and tenant expanded.
	List(ctx context.Context, filter ApplicationFilter) ([]Application, error)

	// FindByID returns the application with property, tenant and lease expanded.
	FindByID(ctx context.Context, id int64) (*Application, error)

	// FindByIDForUpdate locks the application row for the rest of the
	// enclosing transaction and expands its property.
	FindByIDForUpdate(ctx context.Context, id int64) (*Application, error)

	Create(ctx context.Context, app *Application) error

	// UpdateStatus sets the status and, when leaseID is non-nil, the lease link.
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus, leaseID *int64) error
}

// LeaseRepository persists leases.
type LeaseRepository interface {
	Create(ctx context.Context, lease *Lease) error
	FindByID(ctx context.Context, id int64) (*Lease, error)

	// LatestFor returns the lease with the most recent start date for the
	// tenant/property pair, or ErrNotFound.
	LatestFor(ctx context.Context, tenantID string, propertyID int64) (*Lease, error)

	// List returns leases with tenant and property expanded.
	List(ctx context.Context, filter LeaseFilter) ([]Lease, error)

	// DeleteIfUnpaid removes the lease unless a payment or an application
	// still references it. It reports whether a row was deleted.
	DeleteIfUnpaid(ctx context.Context, id int64) (bool, error)
}

// PaymentRepository reads lease payments.
type PaymentRepository interface {
	ListByLease(ctx context.Context, leaseID int64) ([]Payment, error)
}

// PropertyRepository persists listings and their locations.
type PropertyRepository interface {
	// FindByID returns the property with location and manager expanded.
	FindByID(ctx context.Context, id int64) (*Property, error)
	Search(ctx context.Context, search PropertySearch) ([]Property, error)
	ListByManager(ctx context.Context, managerID string) ([]Property, error)

	// ListByResident returns the properties the tenant currently lives in.
	ListByResident(ctx context.Context, tenantID string) ([]Property, error)

	// Create inserts p.Location and then p, filling in both IDs.
	Create(ctx context.Context, p *Property) error

	// AddResident links the tenant to the property. Linking an existing
	// resident is a no-op.
	AddResident(ctx context.Context, propertyID int64, tenantID string) error
}

// TenantRepository persists tenant profiles and favorites.
type TenantRepository interface {
	// FindByID returns the tenant with favorites expanded.
	FindByID(ctx context.Context, cognitoID string) (*Tenant, error)
	Create(ctx context.Context, p Profile) (*Tenant, error)
	Update(ctx context.Context, p Profile) (*Tenant, error)

	// AddFavorite reports false when the property was already a favorite.
	AddFavorite(ctx context.Context, tenantID string, propertyID int64) (bool, error)
	RemoveFavorite(ctx context.Context, tenantID string, propertyID int64) error
}

// ManagerRepository persists manager profiles.
type ManagerRepository interface {
	FindByID(ctx context.Context, cognitoID string) (*Manager, error)
	Create(ctx context.Context, p Profile) (*Manager, error)
	Update(ctx context.Context, p Profile) (*Manager, error)
}

// Repositories groups the repositories bound to one database handle.
type Repositories interface {
	Applications() ApplicationRepository
	Leases() LeaseRepository
	Payments() PaymentRepository
	Properties() PropertyRepository
	Tenants() TenantRepository
	Managers() ManagerRepository
}

// Store is the injected data-store handle. Its repositories run outside any
// transaction; Do runs fn as one unit of work.
type Store interface {
	Repositories

	// Do runs fn inside a single transaction. The transaction commits when
	// fn returns nil and rolls back otherwise, so no partial write of fn is
	// ever observable.
	Do(ctx context.Context, fn func(tx Repositories) error) error
}
