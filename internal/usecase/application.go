package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/domain"
)

// CreateApplicationInput is a tenant's application submission.
type CreateApplicationInput struct {
	ApplicationDate time.Time                `json:"applicationDate"`
	Status          domain.ApplicationStatus `json:"status"`
	PropertyID      int64                    `json:"propertyId"`
	TenantCognitoID string                   `json:"tenantCognitoId"`
	Name            string                   `json:"name"`
	Email           string                   `json:"email"`
	PhoneNumber     string                   `json:"phoneNumber"`
	Message         string                   `json:"message"`
}

// Validate checks the fields the workflow depends on.
func (in CreateApplicationInput) Validate() error {
	if in.PropertyID <= 0 {
		return domain.Invalid("propertyId", "must be a positive integer")
	}
	if in.TenantCognitoID == "" {
		return domain.Invalid("tenantCognitoId", "is required")
	}
	return nil
}

// ApplicationUseCase owns the application listing, submission and approval
// workflow.
type ApplicationUseCase struct {
	store   domain.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewApplicationUseCase creates a new ApplicationUseCase. m may be nil.
func NewApplicationUseCase(store domain.Store, m *metrics.Metrics, logger *slog.Logger) *ApplicationUseCase {
	return &ApplicationUseCase{
		store:   store,
		metrics: m,
		logger:  logger.With("component", "application_usecase"),
		now:     time.Now,
	}
}

// List returns the applications matching filter, each enriched with the
// property address, the property manager and the tenant's most recent lease
// on that property together with its next payment date.
func (uc *ApplicationUseCase) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.ApplicationView, error) {
	apps, err := uc.store.Applications().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	now := uc.now()
	views := make([]domain.ApplicationView, 0, len(apps))
	for _, app := range apps {
		view := domain.ApplicationView{Application: app}
		if app.Property != nil {
			summary := &domain.PropertySummary{Property: *app.Property}
			if app.Property.Location != nil {
				summary.Address = app.Property.Location.Address
			}
			view.Property = summary
			view.Manager = app.Property.Manager
		}

		lease, err := uc.store.Leases().LatestFor(ctx, app.TenantCognitoID, app.PropertyID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("latest lease for application %d: %w", app.ID, err)
		default:
			view.Lease = &domain.LeaseSchedule{
				Lease:           *lease,
				NextPaymentDate: domain.NextPaymentDate(lease.StartDate, now),
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Create stores a new application together with its provisional lease,
// priced from the property's current rent and deposit. Both rows are written
// in one transaction.
func (uc *ApplicationUseCase) Create(ctx context.Context, in CreateApplicationInput) (*domain.Application, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	property, err := uc.store.Properties().FindByID(ctx, in.PropertyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("property %d: %w", in.PropertyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find property: %w", err)
	}

	now := uc.now()
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	appDate := in.ApplicationDate
	if appDate.IsZero() {
		appDate = now
	}

	var created *domain.Application
	err = uc.store.Do(ctx, func(tx domain.Repositories) error {
		lease := domain.NewLease(property, in.TenantCognitoID, now)
		if err := tx.Leases().Create(ctx, lease); err != nil {
			return fmt.Errorf("create lease: %w", err)
		}

		app := &domain.Application{
			ApplicationDate: appDate,
			Status:          status,
			PropertyID:      in.PropertyID,
			TenantCognitoID: in.TenantCognitoID,
			Name:            in.Name,
			Email:           in.Email,
			PhoneNumber:     in.PhoneNumber,
			Message:         in.Message,
			LeaseID:         &lease.ID,
		}
		if err := tx.Applications().Create(ctx, app); err != nil {
			return fmt.Errorf("create application: %w", err)
		}

		var err error
		created, err = tx.Applications().FindByID(ctx, app.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LeasesCreated.WithLabelValues("application").Inc()
	}
	uc.logger.Info("application created",
		"application_id", created.ID,
		"property_id", created.PropertyID,
		"tenant_id", created.TenantCognitoID,
		"email", created.Email,
	)
	return created, nil
}

// UpdateStatus moves an application to status and returns it re-read.
//
// Approval provisions a new lease priced from the property at transition
// time, makes the tenant a resident of the property, links the lease to the
// application and drops the superseded provisional lease when nothing else
// references it. Any other status only updates the status column.
//
// The whole transition is one transaction holding a row lock on the
// application. Approved and Denied are terminal: a second transition fails
// with ErrInvalidTransition, so concurrent approvals cannot both create a
// lease. Only the manager of the application's property may transition it.
func (uc *ApplicationUseCase) UpdateStatus(ctx context.Context, caller domain.Principal, id int64, status domain.ApplicationStatus) (*domain.Application, error) {
	if status == "" {
		return nil, domain.Invalid("status", "is required")
	}

	var newLeaseID *int64
	err := uc.store.Do(ctx, func(tx domain.Repositories) error {
		app, err := tx.Applications().FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("application %d: %w", id, err)
		}
		if app.Property == nil {
			return fmt.Errorf("application %d has no property: %w", id, domain.ErrNotFound)
		}
		if caller.Role != domain.RoleManager || app.Property.ManagerCognitoID != caller.ID {
			uc.logger.Warn("application status change denied", "application_id", id, "user_id", caller.ID, "role", caller.Role)
			return fmt.Errorf("application %d: %w", id, domain.ErrForbidden)
		}
		if app.Status.IsTerminal() {
			return fmt.Errorf("application %d is already %s: %w", id, app.Status, domain.ErrInvalidTransition)
		}

		if status != domain.StatusApproved {
			return tx.Applications().UpdateStatus(ctx, id, status, nil)
		}

		lease := domain.NewLease(app.Property, app.TenantCognitoID, uc.now())
		if err := tx.Leases().Create(ctx, lease); err != nil {
			return fmt.Errorf("create lease: %w", err)
		}
		if err := tx.Properties().AddResident(ctx, app.PropertyID, app.TenantCognitoID); err != nil {
			return fmt.Errorf("add resident: %w", err)
		}
		if err := tx.Applications().UpdateStatus(ctx, id, status, &lease.ID); err != nil {
			return fmt.Errorf("link lease: %w", err)
		}
		if app.LeaseID != nil && *app.LeaseID != lease.ID {
			if _, err := tx.Leases().DeleteIfUnpaid(ctx, *app.LeaseID); err != nil {
				return fmt.Errorf("drop provisional lease: %w", err)
			}
		}
		newLeaseID = &lease.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.StatusChanges.WithLabelValues(statusLabel(status)).Inc()
		if newLeaseID != nil {
			uc.metrics.LeasesCreated.WithLabelValues("approval").Inc()
		}
	}
	uc.logger.Info("application status updated", "application_id", id, "status", status, "lease_id", newLeaseID)

	return uc.store.Applications().FindByID(ctx, id)
}

// statusLabel bounds metric cardinality for free-form status values.
func statusLabel(s domain.ApplicationStatus) string {
	switch s {
	case domain.StatusPending, domain.StatusApproved, domain.StatusDenied:
		return string(s)
	}
	return "other"
}
