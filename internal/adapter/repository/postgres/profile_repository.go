package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/V4T54L/rentwise/internal/domain"
)

// TenantRepository implements domain.TenantRepository for PostgreSQL.
type TenantRepository struct {
	db sqlx.ExtContext
}

// NewTenantRepository creates a repository on a pool or transaction.
func NewTenantRepository(db sqlx.ExtContext) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantReturning = `RETURNING cognito_id AS t_cognito_id, name AS t_name, email AS t_email, phone_number AS t_phone_number`

func (r *TenantRepository) FindByID(ctx context.Context, cognitoID string) (*domain.Tenant, error) {
	query := "SELECT " + columns(tenantColumns) + " FROM tenant t WHERE t.cognito_id = $1"
	var row tenantRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, cognitoID); err != nil {
		return nil, mapError(err)
	}
	tenant := row.toDomain()

	favQuery := "SELECT " + columns(propertyColumns, locationColumns, managerColumns) + `
		FROM tenant_favorite f
		JOIN property p ON p.id = f.property_id
		` + propertyJoins + `
		WHERE f.tenant_cognito_id = $1
		ORDER BY p.id`
	var favs []propertyRecord
	if err := sqlx.SelectContext(ctx, r.db, &favs, favQuery, cognitoID); err != nil {
		return nil, fmt.Errorf("select favorites: %w", mapError(err))
	}
	tenant.Favorites = propertiesFrom(favs)
	return tenant, nil
}

func (r *TenantRepository) Create(ctx context.Context, p domain.Profile) (*domain.Tenant, error) {
	query := `INSERT INTO tenant (cognito_id, name, email, phone_number) VALUES ($1, $2, $3, $4) ` + tenantReturning
	var row tenantRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, p.CognitoID, p.Name, p.Email, p.PhoneNumber); err != nil {
		return nil, fmt.Errorf("insert tenant: %w", mapError(err))
	}
	return row.toDomain(), nil
}

func (r *TenantRepository) Update(ctx context.Context, p domain.Profile) (*domain.Tenant, error) {
	query := `UPDATE tenant SET name = $2, email = $3, phone_number = $4 WHERE cognito_id = $1 ` + tenantReturning
	var row tenantRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, p.CognitoID, p.Name, p.Email, p.PhoneNumber); err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}

// AddFavorite relies on the (tenant, property) primary key: a duplicate
// inserts nothing and reports false.
func (r *TenantRepository) AddFavorite(ctx context.Context, tenantID string, propertyID int64) (bool, error) {
	const query = `
		INSERT INTO tenant_favorite (tenant_cognito_id, property_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, tenantID, propertyID)
	if err != nil {
		return false, fmt.Errorf("insert favorite: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *TenantRepository) RemoveFavorite(ctx context.Context, tenantID string, propertyID int64) error {
	const query = `DELETE FROM tenant_favorite WHERE tenant_cognito_id = $1 AND property_id = $2`
	if _, err := r.db.ExecContext(ctx, query, tenantID, propertyID); err != nil {
		return fmt.Errorf("delete favorite: %w", mapError(err))
	}
	return nil
}

// ManagerRepository implements domain.ManagerRepository for PostgreSQL.
type ManagerRepository struct {
	db sqlx.ExtContext
}

// NewManagerRepository creates a repository on a pool or transaction.
func NewManagerRepository(db sqlx.ExtContext) *ManagerRepository {
	return &ManagerRepository{db: db}
}

const managerReturning = `RETURNING cognito_id AS m_cognito_id, name AS m_name, email AS m_email, phone_number AS m_phone_number`

func (r *ManagerRepository) FindByID(ctx context.Context, cognitoID string) (*domain.Manager, error) {
	query := "SELECT " + columns(managerColumns) + " FROM manager m WHERE m.cognito_id = $1"
	var row managerRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, cognitoID); err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}

func (r *ManagerRepository) Create(ctx context.Context, p domain.Profile) (*domain.Manager, error) {
	query := `INSERT INTO manager (cognito_id, name, email, phone_number) VALUES ($1, $2, $3, $4) ` + managerReturning
	var row managerRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, p.CognitoID, p.Name, p.Email, p.PhoneNumber); err != nil {
		return nil, fmt.Errorf("insert manager: %w", mapError(err))
	}
	return row.toDomain(), nil
}

func (r *ManagerRepository) Update(ctx context.Context, p domain.Profile) (*domain.Manager, error) {
	query := `UPDATE manager SET name = $2, email = $3, phone_number = $4 WHERE cognito_id = $1 ` + managerReturning
	var row managerRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, p.CognitoID, p.Name, p.Email, p.PhoneNumber); err != nil {
		return nil, mapError(err)
	}
	return row.toDomain(), nil
}
