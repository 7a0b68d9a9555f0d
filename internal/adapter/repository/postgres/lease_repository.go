package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/V4T54L/rentwise/internal/domain"
)

type leaseRecord struct {
	leaseRow
	tenantRow
	propertyRecord
}

// LeaseRepository implements domain.LeaseRepository for PostgreSQL.
type LeaseRepository struct {
	db sqlx.ExtContext
}

// NewLeaseRepository creates a repository on a pool or transaction.
func NewLeaseRepository(db sqlx.ExtContext) *LeaseRepository {
	return &LeaseRepository{db: db}
}

func (r *LeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	const query = `
		INSERT INTO lease (start_date, end_date, rent, deposit, property_id, tenant_cognito_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		lease.StartDate, lease.EndDate, lease.Rent, lease.Deposit, lease.PropertyID, lease.TenantCognitoID,
	).Scan(&lease.ID)
	if err != nil {
		return fmt.Errorf("insert lease: %w", mapError(err))
	}
	return nil
}

func (r *LeaseRepository) FindByID(ctx context.Context, id int64) (*domain.Lease, error) {
	query := "SELECT " + columns(leaseColumns) + " FROM lease ls WHERE ls.id = $1"
	var row leaseRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		return nil, mapError(err)
	}
	lease := row.toDomain()
	return &lease, nil
}

func (r *LeaseRepository) LatestFor(ctx context.Context, tenantID string, propertyID int64) (*domain.Lease, error) {
	query := "SELECT " + columns(leaseColumns) + ` FROM lease ls
		WHERE ls.tenant_cognito_id = $1 AND ls.property_id = $2
		ORDER BY ls.start_date DESC, ls.id DESC
		LIMIT 1`
	var row leaseRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, tenantID, propertyID); err != nil {
		return nil, mapError(err)
	}
	lease := row.toDomain()
	return &lease, nil
}

func (r *LeaseRepository) List(ctx context.Context, filter domain.LeaseFilter) ([]domain.Lease, error) {
	q := psql.Select(concat(leaseColumns, tenantColumns, propertyColumns, locationColumns, managerColumns)...).
		From("lease ls").
		Join("tenant t ON t.cognito_id = ls.tenant_cognito_id").
		Join("property p ON p.id = ls.property_id").
		Join(propertyJoins)
	if filter.TenantID != "" {
		q = q.Where(sq.Eq{"ls.tenant_cognito_id": filter.TenantID})
	}
	if filter.ManagerID != "" {
		q = q.Where(sq.Eq{"p.manager_cognito_id": filter.ManagerID})
	}
	query, args, err := q.OrderBy("ls.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lease query: %w", err)
	}

	var rows []leaseRecord
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leases: %w", mapError(err))
	}
	leases := make([]domain.Lease, 0, len(rows))
	for _, row := range rows {
		l := row.leaseRow.toDomain()
		l.Tenant = row.tenantRow.toDomain()
		p := row.propertyRecord.toDomain()
		l.Property = &p
		leases = append(leases, l)
	}
	return leases, nil
}

func (r *LeaseRepository) DeleteIfUnpaid(ctx context.Context, id int64) (bool, error) {
	const query = `
		DELETE FROM lease
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM payment WHERE lease_id = $1)
		  AND NOT EXISTS (SELECT 1 FROM application WHERE lease_id = $1)`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete lease: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
