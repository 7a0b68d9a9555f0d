package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/V4T54L/rentwise/internal/adapter/api/handler"
	"github.com/V4T54L/rentwise/internal/adapter/api/middleware"
	"github.com/V4T54L/rentwise/internal/adapter/auth"
	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/domain"
	"github.com/V4T54L/rentwise/internal/pkg/config"
	"github.com/V4T54L/rentwise/internal/usecase"
)

// UseCases groups the application services the public API exposes.
type UseCases struct {
	Applications *usecase.ApplicationUseCase
	Properties   *usecase.PropertyUseCase
	Leases       *usecase.LeaseUseCase
	Tenants      *usecase.TenantUseCase
	Managers     *usecase.ManagerUseCase
}

// NewRouter creates and configures the main HTTP router for the API service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
	verifier auth.TokenVerifier,
	limiter *middleware.RateLimiter,
	uc UseCases,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger, m))
	r.Use(chimw.Recoverer)

	applications := handler.NewApplicationHandler(uc.Applications, logger)
	properties := handler.NewPropertyHandler(uc.Properties, logger, cfg.MaxUploadBytes)
	leases := handler.NewLeaseHandler(uc.Leases, logger)
	tenants := handler.NewTenantHandler(uc.Tenants, uc.Properties, logger)
	managers := handler.NewManagerHandler(uc.Managers, uc.Properties, logger)
	health := handler.NewHealthHandler(nil, logger)

	anyone := middleware.RequireRole(verifier, logger, domain.RoleTenant, domain.RoleManager)
	tenantOnly := middleware.RequireRole(verifier, logger, domain.RoleTenant)
	managerOnly := middleware.RequireRole(verifier, logger, domain.RoleManager)

	r.Get("/health", health.HealthCheck)

	// Public listing search.
	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Get("/properties", properties.Search)
		r.Get("/properties/{id}", properties.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(anyone, limiter.Handler)
		r.Get("/applications", applications.List)
		r.Get("/leases", leases.List)
		r.Get("/leases/{id}/payments", leases.Payments)
	})

	r.Group(func(r chi.Router) {
		r.Use(tenantOnly, limiter.Handler)
		r.Post("/applications", applications.Create)
		r.Post("/tenants", tenants.Create)
		r.Route("/tenants/{cognitoId}", func(r chi.Router) {
			r.Get("/", tenants.Get)
			r.Put("/", tenants.Update)
			r.Get("/current-residences", tenants.CurrentResidences)
			r.Post("/favorites/{propertyId}", tenants.AddFavorite)
			r.Delete("/favorites/{propertyId}", tenants.RemoveFavorite)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(managerOnly, limiter.Handler)
		r.Put("/applications/{id}/status", applications.UpdateStatus)
		r.Post("/properties", properties.Create)
		r.Post("/managers", managers.Create)
		r.Route("/managers/{cognitoId}", func(r chi.Router) {
			r.Get("/", managers.Get)
			r.Put("/", managers.Update)
			r.Get("/properties", managers.Properties)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"not_found","message":"route not found"}`))
	})

	return r
}
