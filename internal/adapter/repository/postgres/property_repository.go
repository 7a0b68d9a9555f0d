package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/V4T54L/rentwise/internal/domain"
)

// kmPerDegree converts the search radius to the degree distance ST_DWithin
// uses on geometry.
const kmPerDegree = 111.0

// PropertyRepository implements domain.PropertyRepository for PostgreSQL.
type PropertyRepository struct {
	db sqlx.ExtContext
}

// NewPropertyRepository creates a repository on a pool or transaction.
func NewPropertyRepository(db sqlx.ExtContext) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func selectProperties() sq.SelectBuilder {
	return psql.Select(concat(propertyColumns, locationColumns, managerColumns)...).
		From("property p").
		Join(propertyJoins)
}

// searchPredicates turns the filters into one WHERE predicate per filter
// that is set.
func searchPredicates(s domain.PropertySearch) []sq.Sqlizer {
	var preds []sq.Sqlizer
	if len(s.FavoriteIDs) > 0 {
		preds = append(preds, sq.Eq{"p.id": s.FavoriteIDs})
	}
	if s.PriceMin != nil {
		preds = append(preds, sq.GtOrEq{"p.price_per_month": *s.PriceMin})
	}
	if s.PriceMax != nil {
		preds = append(preds, sq.LtOrEq{"p.price_per_month": *s.PriceMax})
	}
	if s.Beds != nil {
		preds = append(preds, sq.GtOrEq{"p.beds": *s.Beds})
	}
	if s.Baths != nil {
		preds = append(preds, sq.GtOrEq{"p.baths": *s.Baths})
	}
	if s.SquareFeetMin != nil {
		preds = append(preds, sq.GtOrEq{"p.square_feet": *s.SquareFeetMin})
	}
	if s.SquareFeetMax != nil {
		preds = append(preds, sq.LtOrEq{"p.square_feet": *s.SquareFeetMax})
	}
	if s.PropertyType != "" {
		preds = append(preds, sq.Eq{"p.property_type": string(s.PropertyType)})
	}
	if len(s.Amenities) > 0 {
		preds = append(preds, sq.Expr("p.amenities @> ?", pq.Array(s.Amenities)))
	}
	if s.AvailableFrom != nil {
		preds = append(preds, sq.Expr(
			"EXISTS (SELECT 1 FROM lease al WHERE al.property_id = p.id AND al.start_date <= ?)",
			*s.AvailableFrom,
		))
	}
	if s.Near != nil {
		preds = append(preds, sq.Expr(
			"ST_DWithin(loc.coordinates::geometry, ST_SetSRID(ST_MakePoint(?, ?), 4326), ?)",
			s.Near.Longitude, s.Near.Latitude, domain.SearchRadiusKm/kmPerDegree,
		))
	}
	return preds
}

func searchQuery(s domain.PropertySearch) (string, []any, error) {
	q := selectProperties()
	for _, pred := range searchPredicates(s) {
		q = q.Where(pred)
	}
	return q.OrderBy("p.id").ToSql()
}

func (r *PropertyRepository) Search(ctx context.Context, s domain.PropertySearch) ([]domain.Property, error) {
	query, args, err := searchQuery(s)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	return r.list(ctx, query, args...)
}

func (r *PropertyRepository) FindByID(ctx context.Context, id int64) (*domain.Property, error) {
	query, args, err := selectProperties().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build property query: %w", err)
	}
	var row propertyRecord
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return nil, mapError(err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *PropertyRepository) ListByManager(ctx context.Context, managerID string) ([]domain.Property, error) {
	query, args, err := selectProperties().
		Where(sq.Eq{"p.manager_cognito_id": managerID}).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build property query: %w", err)
	}
	return r.list(ctx, query, args...)
}

func (r *PropertyRepository) ListByResident(ctx context.Context, tenantID string) ([]domain.Property, error) {
	query, args, err := selectProperties().
		Join("tenant_property tp ON tp.property_id = p.id").
		Where(sq.Eq{"tp.tenant_cognito_id": tenantID}).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build property query: %w", err)
	}
	return r.list(ctx, query, args...)
}

func (r *PropertyRepository) list(ctx context.Context, query string, args ...any) ([]domain.Property, error) {
	var rows []propertyRecord
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select properties: %w", mapError(err))
	}
	return propertiesFrom(rows), nil
}

// Create inserts the location and then the property. Callers run it inside
// Store.Do so both rows commit together.
func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if p.Location == nil {
		return domain.Invalid("location", "is required")
	}
	loc := p.Location

	const locationQuery = `
		INSERT INTO location (address, city, state, country, postal_code, coordinates)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326))
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, locationQuery,
		loc.Address, loc.City, loc.State, loc.Country, loc.PostalCode,
		loc.Coordinates.Longitude, loc.Coordinates.Latitude,
	).Scan(&loc.ID)
	if err != nil {
		return fmt.Errorf("insert location: %w", mapError(err))
	}
	p.LocationID = loc.ID

	const propertyQuery = `
		INSERT INTO property (name, description, price_per_month, security_deposit, application_fee,
			photo_urls, amenities, highlights, is_pets_allowed, is_parking_included,
			beds, baths, square_feet, property_type, posted_date, location_id, manager_cognito_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`
	err = r.db.QueryRowxContext(ctx, propertyQuery,
		p.Name, p.Description, p.PricePerMonth, p.SecurityDeposit, p.ApplicationFee,
		pq.Array(nonNil(p.PhotoURLs)), pq.Array(nonNil(p.Amenities)), pq.Array(nonNil(p.Highlights)),
		p.IsPetsAllowed, p.IsParkingIncluded,
		p.Beds, p.Baths, p.SquareFeet, string(p.PropertyType), p.PostedDate, p.LocationID, p.ManagerCognitoID,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert property: %w", mapError(err))
	}
	return nil
}

func (r *PropertyRepository) AddResident(ctx context.Context, propertyID int64, tenantID string) error {
	const query = `
		INSERT INTO tenant_property (property_id, tenant_cognito_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, propertyID, tenantID); err != nil {
		return fmt.Errorf("insert resident: %w", mapError(err))
	}
	return nil
}
