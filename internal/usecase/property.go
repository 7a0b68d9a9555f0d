package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/domain"
)

// photoKeyPrefix is the object-storage folder for listing photos.
const photoKeyPrefix = "properties/"

// CreatePropertyInput is a manager's new listing, already decoded from the
// multipart form.
type CreatePropertyInput struct {
	Name              string
	Description       string
	PricePerMonth     float64
	SecurityDeposit   float64
	ApplicationFee    float64
	Amenities         []string
	Highlights        []string
	IsPetsAllowed     bool
	IsParkingIncluded bool
	Beds              int
	Baths             float64
	SquareFeet        int
	PropertyType      domain.PropertyType
	ManagerCognitoID  string
	Address           domain.Address
}

// Validate rejects listings that cannot be stored.
func (in CreatePropertyInput) Validate() error {
	switch {
	case in.Name == "":
		return domain.Invalid("name", "is required")
	case in.ManagerCognitoID == "":
		return domain.Invalid("managerCognitoId", "is required")
	case in.PricePerMonth < 0:
		return domain.Invalid("pricePerMonth", "must not be negative")
	case in.SecurityDeposit < 0:
		return domain.Invalid("securityDeposit", "must not be negative")
	case in.ApplicationFee < 0:
		return domain.Invalid("applicationFee", "must not be negative")
	case in.PropertyType == "":
		return domain.Invalid("propertyType", "is required")
	case !in.PropertyType.Valid():
		return domain.Invalid("propertyType", fmt.Sprintf("unknown type %q", in.PropertyType))
	}
	return nil
}

// PropertyUseCase handles listing search, retrieval and creation.
type PropertyUseCase struct {
	store    domain.Store
	photos   domain.PhotoStorage
	geocoder domain.Geocoder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	newKey   func(filename string) string
}

// NewPropertyUseCase creates a new PropertyUseCase. m may be nil.
func NewPropertyUseCase(store domain.Store, photos domain.PhotoStorage, geocoder domain.Geocoder, m *metrics.Metrics, logger *slog.Logger) *PropertyUseCase {
	return &PropertyUseCase{
		store:    store,
		photos:   photos,
		geocoder: geocoder,
		metrics:  m,
		logger:   logger.With("component", "property_usecase"),
		now:      time.Now,
		newKey:   PhotoKey,
	}
}

// PhotoKey builds a collision-free object key for an uploaded file.
func PhotoKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "photo"
	}
	return photoKeyPrefix + uuid.NewString() + "-" + name
}

// Search returns the listings matching every filter set in s.
func (uc *PropertyUseCase) Search(ctx context.Context, s domain.PropertySearch) ([]domain.Property, error) {
	props, err := uc.store.Properties().Search(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	return props, nil
}

// Get returns one property with its location coordinates.
func (uc *PropertyUseCase) Get(ctx context.Context, id int64) (*domain.Property, error) {
	p, err := uc.store.Properties().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("property %d: %w", id, err)
	}
	return p, nil
}

// ListByManager returns the listings of one manager. The manager must exist.
func (uc *PropertyUseCase) ListByManager(ctx context.Context, managerID string) ([]domain.Property, error) {
	if _, err := uc.store.Managers().FindByID(ctx, managerID); err != nil {
		return nil, fmt.Errorf("manager %s: %w", managerID, err)
	}
	props, err := uc.store.Properties().ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("list manager properties: %w", err)
	}
	return props, nil
}

// ListResidences returns the properties the tenant currently lives in.
func (uc *PropertyUseCase) ListResidences(ctx context.Context, tenantID string) ([]domain.Property, error) {
	if _, err := uc.store.Tenants().FindByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	props, err := uc.store.Properties().ListByResident(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list residences: %w", err)
	}
	return props, nil
}

// Create uploads the photos, geocodes the address and stores the location
// and the property in one transaction. An address the geocoder cannot
// resolve is stored at (0,0).
func (uc *PropertyUseCase) Create(ctx context.Context, in CreatePropertyInput, photos []domain.Photo) (*domain.Property, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.store.Managers().FindByID(ctx, in.ManagerCognitoID); err != nil {
		return nil, fmt.Errorf("manager %s: %w", in.ManagerCognitoID, err)
	}

	urls, err := uc.uploadPhotos(ctx, photos)
	if err != nil {
		return nil, err
	}

	coords := uc.geocode(ctx, in.Address)

	p := &domain.Property{
		Name:              in.Name,
		Description:       in.Description,
		PricePerMonth:     in.PricePerMonth,
		SecurityDeposit:   in.SecurityDeposit,
		ApplicationFee:    in.ApplicationFee,
		PhotoURLs:         urls,
		Amenities:         nonNil(in.Amenities),
		Highlights:        nonNil(in.Highlights),
		IsPetsAllowed:     in.IsPetsAllowed,
		IsParkingIncluded: in.IsParkingIncluded,
		Beds:              in.Beds,
		Baths:             in.Baths,
		SquareFeet:        in.SquareFeet,
		PropertyType:      in.PropertyType,
		PostedDate:        uc.now(),
		ManagerCognitoID:  in.ManagerCognitoID,
		Location: &domain.Location{
			Address:     in.Address.Street,
			City:        in.Address.City,
			State:       in.Address.State,
			Country:     in.Address.Country,
			PostalCode:  in.Address.PostalCode,
			Coordinates: coords,
		},
	}

	var created *domain.Property
	err = uc.store.Do(ctx, func(tx domain.Repositories) error {
		if err := tx.Properties().Create(ctx, p); err != nil {
			return fmt.Errorf("create property: %w", err)
		}
		var err error
		created, err = tx.Properties().FindByID(ctx, p.ID)
		return err
	})
	if err != nil {
		if len(urls) > 0 {
			uc.logger.Warn("property not stored, uploaded photos are orphaned", "photos", urls, "error", err)
		}
		return nil, err
	}

	uc.logger.Info("property created", "property_id", created.ID, "manager_id", created.ManagerCognitoID, "photos", len(urls))
	return created, nil
}

// uploadPhotos stores all photos concurrently and returns their URLs in
// input order. The first failure cancels the remaining uploads.
func (uc *PropertyUseCase) uploadPhotos(ctx context.Context, photos []domain.Photo) ([]string, error) {
	urls := make([]string, len(photos))
	if len(photos) == 0 {
		return urls, nil
	}
	if uc.photos == nil {
		return nil, errors.New("photo storage is not configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, photo := range photos {
		i, photo := i, photo
		g.Go(func() error {
			url, err := uc.photos.Upload(gctx, uc.newKey(photo.Filename), photo)
			if err != nil {
				uc.countUpload("error")
				return fmt.Errorf("upload photo %q: %w", photo.Filename, err)
			}
			uc.countUpload("ok")
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (uc *PropertyUseCase) countUpload(result string) {
	if uc.metrics != nil {
		uc.metrics.PhotoUploads.WithLabelValues(result).Inc()
	}
}

func (uc *PropertyUseCase) geocode(ctx context.Context, addr domain.Address) domain.Coordinates {
	if uc.geocoder == nil {
		return domain.Coordinates{}
	}
	c, ok, err := uc.geocoder.Geocode(ctx, addr)
	if err != nil {
		uc.logger.Warn("geocoding failed, storing origin coordinates", "city", addr.City, "country", addr.Country, "error", err)
		return domain.Coordinates{}
	}
	if !ok {
		uc.logger.Info("address not matched by geocoder", "city", addr.City, "country", addr.Country)
		return domain.Coordinates{}
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
