package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/domain"
	"github.com/V4T54L/rentwise/internal/domain/mocks"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedMarketplace stores one manager, one tenant and property 10 priced at
// 1200/month with a 500 deposit.
func seedMarketplace(t *testing.T) *mocks.Store {
	t.Helper()
	store := mocks.NewStore()
	store.AddManager(domain.Manager{CognitoID: "mgr-1", Name: "Morgan"})
	store.AddTenant(domain.Tenant{CognitoID: "ten-1", Name: "Jane", Email: "jane@example.com"})
	store.AddProperty(domain.Property{
		ID:               10,
		Name:             "Harbor Loft",
		PricePerMonth:    1200,
		SecurityDeposit:  500,
		ManagerCognitoID: "mgr-1",
		Location:         &domain.Location{ID: 3, Address: "1 Pier Rd"},
	})
	return store
}

func newApplicationUseCase(store domain.Store, m *metrics.Metrics) *ApplicationUseCase {
	uc := NewApplicationUseCase(store, m, discardLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestApplicationUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Lease priced from property", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)

		app, err := uc.Create(ctx, CreateApplicationInput{
			PropertyID:      10,
			TenantCognitoID: "ten-1",
			Name:            "Jane",
			Email:           "jane@example.com",
		})
		require.NoError(t, err)

		require.NotNil(t, app.Lease)
		require.NotNil(t, app.LeaseID)
		assert.Equal(t, *app.LeaseID, app.Lease.ID)
		assert.Equal(t, 1200.0, app.Lease.Rent)
		assert.Equal(t, 500.0, app.Lease.Deposit)
		assert.True(t, app.Lease.StartDate.Equal(fixedNow))
		assert.True(t, app.Lease.EndDate.Equal(fixedNow.AddDate(1, 0, 0)))
		assert.Equal(t, domain.StatusPending, app.Status, "empty status defaults to Pending")
		assert.True(t, app.ApplicationDate.Equal(fixedNow))
		require.NotNil(t, app.Property)
		require.NotNil(t, app.Tenant)
		assert.Equal(t, 1, store.LeaseCount())
		assert.Equal(t, 1, store.ApplicationCount())
	})

	t.Run("Caller supplied status is stored verbatim", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)

		app, err := uc.Create(ctx, CreateApplicationInput{PropertyID: 10, TenantCognitoID: "ten-1", Status: "Waitlisted"})
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatus("Waitlisted"), app.Status)
	})

	t.Run("Missing property creates nothing", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)

		_, err := uc.Create(ctx, CreateApplicationInput{PropertyID: 999, TenantCognitoID: "ten-1"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, store.LeaseCount())
		assert.Equal(t, 0, store.ApplicationCount())
		assert.Equal(t, 0, store.TxRuns, "no transaction must be opened")
	})

	t.Run("Application insert failure rolls back the lease", func(t *testing.T) {
		store := seedMarketplace(t)
		store.FailOn["Applications.Create"] = errors.New("connection reset")
		uc := newApplicationUseCase(store, nil)

		_, err := uc.Create(ctx, CreateApplicationInput{PropertyID: 10, TenantCognitoID: "ten-1"})
		require.Error(t, err)
		assert.Equal(t, 0, store.LeaseCount())
		assert.Equal(t, 0, store.ApplicationCount())
	})

	t.Run("Unknown tenant is not found", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)

		_, err := uc.Create(ctx, CreateApplicationInput{PropertyID: 10, TenantCognitoID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, store.LeaseCount())
	})

	t.Run("Validation", func(t *testing.T) {
		uc := newApplicationUseCase(seedMarketplace(t), nil)

		_, err := uc.Create(ctx, CreateApplicationInput{TenantCognitoID: "ten-1"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = uc.Create(ctx, CreateApplicationInput{PropertyID: 10})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestApplicationUseCase_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	owner := domain.Principal{ID: "mgr-1", Role: domain.RoleManager}

	// submit creates a pending application through the use case so it has
	// its provisional lease.
	submit := func(t *testing.T, uc *ApplicationUseCase) *domain.Application {
		t.Helper()
		app, err := uc.Create(ctx, CreateApplicationInput{PropertyID: 10, TenantCognitoID: "ten-1", Status: domain.StatusPending})
		require.NoError(t, err)
		return app
	}

	t.Run("Approve provisions lease and residency", func(t *testing.T) {
		store := seedMarketplace(t)
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		uc := newApplicationUseCase(store, m)
		pending := submit(t, uc)
		provisionalID := *pending.LeaseID

		// The rent changed after submission; approval uses the current price.
		store.AddProperty(domain.Property{ID: 10, Name: "Harbor Loft", PricePerMonth: 1300, SecurityDeposit: 650, ManagerCognitoID: "mgr-1"})

		app, err := uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusApproved)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusApproved, app.Status)
		require.NotNil(t, app.Lease)
		require.NotNil(t, app.LeaseID)
		assert.Equal(t, *app.LeaseID, app.Lease.ID)
		assert.NotEqual(t, provisionalID, app.Lease.ID, "approval creates a new lease")
		assert.Equal(t, 1300.0, app.Lease.Rent)
		assert.Equal(t, 650.0, app.Lease.Deposit)
		assert.Equal(t, []string{"ten-1"}, store.Residents(10))

		_, provisionalKept := store.Lease(provisionalID)
		assert.False(t, provisionalKept, "superseded provisional lease is removed")
		assert.Equal(t, 1, store.LeaseCount())

		assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("Approved")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.LeasesCreated.WithLabelValues("approval")))
	})

	t.Run("Scenario application 5 property 10", func(t *testing.T) {
		store := seedMarketplace(t)
		store.AddApplication(domain.Application{ID: 5, Status: domain.StatusPending, PropertyID: 10, TenantCognitoID: "ten-1"})
		uc := newApplicationUseCase(store, nil)

		app, err := uc.UpdateStatus(ctx, owner, 5, domain.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, app.Status)
		require.NotNil(t, app.Lease)
		assert.Equal(t, 1200.0, app.Lease.Rent)
		assert.Equal(t, 500.0, app.Lease.Deposit)
		assert.Equal(t, 1, store.LeaseCount())
	})

	t.Run("Provisional lease with payments is kept", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)
		store.AddPayment(domain.Payment{LeaseID: *pending.LeaseID, AmountDue: 500})

		_, err := uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusApproved)
		require.NoError(t, err)

		_, kept := store.Lease(*pending.LeaseID)
		assert.True(t, kept)
		assert.Equal(t, 2, store.LeaseCount())
	})

	t.Run("Approving an existing resident does not duplicate residency", func(t *testing.T) {
		store := seedMarketplace(t)
		require.NoError(t, store.Properties().AddResident(ctx, 10, "ten-1"))
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)

		_, err := uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, []string{"ten-1"}, store.Residents(10))
	})

	t.Run("Deny has no lease or residency side effects", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)
		leasesBefore := store.LeaseCount()

		app, err := uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusDenied)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusDenied, app.Status)
		assert.Equal(t, pending.LeaseID, app.LeaseID)
		assert.Equal(t, leasesBefore, store.LeaseCount())
		assert.Empty(t, store.Residents(10))
	})

	t.Run("Arbitrary status takes the generic path", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)

		app, err := uc.UpdateStatus(ctx, owner, pending.ID, "approved")
		require.NoError(t, err)

		assert.Equal(t, domain.ApplicationStatus("approved"), app.Status)
		assert.Equal(t, 1, store.LeaseCount())
		assert.Empty(t, store.Residents(10))
	})

	t.Run("Terminal states reject further transitions", func(t *testing.T) {
		for _, terminal := range []domain.ApplicationStatus{domain.StatusApproved, domain.StatusDenied} {
			store := seedMarketplace(t)
			id := store.AddApplication(domain.Application{Status: terminal, PropertyID: 10, TenantCognitoID: "ten-1"})
			uc := newApplicationUseCase(store, nil)

			_, err := uc.UpdateStatus(ctx, owner, id, domain.StatusApproved)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "from %s", terminal)
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.Equal(t, 0, store.LeaseCount())
		}
	})

	t.Run("Second approval conflicts", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)

		_, err := uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusApproved)
		require.NoError(t, err)
		_, err = uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusApproved)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, 1, store.LeaseCount())
	})

	t.Run("Residency failure leaves nothing approved", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)
		store.FailOn["Properties.AddResident"] = errors.New("deadlock detected")

		_, err := uc.UpdateStatus(ctx, owner, pending.ID, domain.StatusApproved)
		require.Error(t, err)

		stored, ok := store.Application(pending.ID)
		require.True(t, ok)
		assert.Equal(t, domain.StatusPending, stored.Status)
		assert.Equal(t, pending.LeaseID, stored.LeaseID)
		assert.Equal(t, 1, store.LeaseCount(), "approval lease rolled back")
		assert.Empty(t, store.Residents(10))
	})

	t.Run("Another manager's property", func(t *testing.T) {
		store := seedMarketplace(t)
		store.AddManager(domain.Manager{CognitoID: "mgr-2"})
		uc := newApplicationUseCase(store, nil)
		pending := submit(t, uc)

		for _, caller := range []domain.Principal{
			{ID: "mgr-2", Role: domain.RoleManager},
			{ID: "ten-1", Role: domain.RoleTenant},
		} {
			_, err := uc.UpdateStatus(ctx, caller, pending.ID, domain.StatusApproved)
			assert.ErrorIs(t, err, domain.ErrForbidden, "as %s", caller.ID)
		}

		stored, ok := store.Application(pending.ID)
		require.True(t, ok)
		assert.Equal(t, domain.StatusPending, stored.Status)
		assert.Equal(t, 1, store.LeaseCount())
		assert.Empty(t, store.Residents(10))
	})

	t.Run("Missing application", func(t *testing.T) {
		uc := newApplicationUseCase(seedMarketplace(t), nil)

		_, err := uc.UpdateStatus(ctx, owner, 404, domain.StatusApproved)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Empty status", func(t *testing.T) {
		uc := newApplicationUseCase(seedMarketplace(t), nil)

		_, err := uc.UpdateStatus(ctx, owner, 1, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestApplicationUseCase_List(t *testing.T) {
	ctx := context.Background()
	store := seedMarketplace(t)
	store.AddTenant(domain.Tenant{CognitoID: "ten-2", Name: "Sam"})
	store.AddManager(domain.Manager{CognitoID: "mgr-2"})
	other := store.AddProperty(domain.Property{PricePerMonth: 900, ManagerCognitoID: "mgr-2"})

	store.AddApplication(domain.Application{Status: domain.StatusPending, PropertyID: 10, TenantCognitoID: "ten-1"})
	store.AddApplication(domain.Application{Status: domain.StatusPending, PropertyID: other, TenantCognitoID: "ten-2"})

	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	store.AddLease(domain.Lease{StartDate: start.AddDate(-1, 0, 0), PropertyID: 10, TenantCognitoID: "ten-1", Rent: 1000})
	latest := store.AddLease(domain.Lease{StartDate: start, PropertyID: 10, TenantCognitoID: "ten-1", Rent: 1200})

	uc := newApplicationUseCase(store, nil)

	t.Run("Tenant filter with enrichment", func(t *testing.T) {
		views, err := uc.List(ctx, domain.ApplicationFilter{TenantID: "ten-1"})
		require.NoError(t, err)
		require.Len(t, views, 1)

		v := views[0]
		require.NotNil(t, v.Property)
		assert.Equal(t, "1 Pier Rd", v.Property.Address)
		require.NotNil(t, v.Manager)
		assert.Equal(t, "mgr-1", v.Manager.CognitoID)
		require.NotNil(t, v.Lease)
		assert.Equal(t, latest, v.Lease.ID, "most recent lease is attached")
		assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), v.Lease.NextPaymentDate)
	})

	t.Run("Manager filter", func(t *testing.T) {
		views, err := uc.List(ctx, domain.ApplicationFilter{ManagerID: "mgr-2"})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "ten-2", views[0].TenantCognitoID)
		assert.Nil(t, views[0].Lease)
	})

	t.Run("No filter returns everything", func(t *testing.T) {
		views, err := uc.List(ctx, domain.ApplicationFilter{})
		require.NoError(t, err)
		assert.Len(t, views, 2)
	})

	t.Run("Lease lookup error", func(t *testing.T) {
		store.FailOn["Leases.LatestFor"] = errors.New("timeout")
		defer delete(store.FailOn, "Leases.LatestFor")

		_, err := uc.List(ctx, domain.ApplicationFilter{})
		assert.Error(t, err)
	})
}
