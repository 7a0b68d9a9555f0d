package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/V4T54L/rentwise/internal/domain"
)

// applicationRecord is an application joined with its property (location,
// manager) and tenant.
type applicationRecord struct {
	applicationRow
	propertyRecord
	tenantRow
}

func (r applicationRecord) toDomain() domain.Application {
	a := r.applicationRow.toDomain()
	p := r.propertyRecord.toDomain()
	a.Property = &p
	a.Tenant = r.tenantRow.toDomain()
	return a
}

// ApplicationRepository implements domain.ApplicationRepository for PostgreSQL.
type ApplicationRepository struct {
	db sqlx.ExtContext
}

// NewApplicationRepository creates a repository on a pool or transaction.
func NewApplicationRepository(db sqlx.ExtContext) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) selectApplications() sq.SelectBuilder {
	return psql.Select(concat(applicationColumns, propertyColumns, locationColumns, managerColumns, tenantColumns)...).
		From("application a").
		Join("property p ON p.id = a.property_id").
		Join(propertyJoins).
		Join("tenant t ON t.cognito_id = a.tenant_cognito_id")
}

func (r *ApplicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	q := r.selectApplications()
	if filter.TenantID != "" {
		q = q.Where(sq.Eq{"a.tenant_cognito_id": filter.TenantID})
	}
	if filter.ManagerID != "" {
		q = q.Where(sq.Eq{"p.manager_cognito_id": filter.ManagerID})
	}
	query, args, err := q.OrderBy("a.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build application query: %w", err)
	}

	var rows []applicationRecord
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select applications: %w", mapError(err))
	}
	apps := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toDomain())
	}
	return apps, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := r.find(ctx, r.selectApplications().Where(sq.Eq{"a.id": id}))
	if err != nil {
		return nil, err
	}
	if app.LeaseID != nil {
		lease, err := NewLeaseRepository(r.db).FindByID(ctx, *app.LeaseID)
		if err != nil {
			return nil, err
		}
		app.Lease = lease
	}
	return app, nil
}

// FindByIDForUpdate must run inside a transaction for the lock to hold.
func (r *ApplicationRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Application, error) {
	return r.find(ctx, r.selectApplications().Where(sq.Eq{"a.id": id}).Suffix("FOR UPDATE OF a"))
}

func (r *ApplicationRepository) find(ctx context.Context, q sq.SelectBuilder) (*domain.Application, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build application query: %w", err)
	}
	var row applicationRecord
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		return nil, mapError(err)
	}
	app := row.toDomain()
	return &app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `
		INSERT INTO application (application_date, status, property_id, tenant_cognito_id,
			name, email, phone_number, message, lease_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		app.ApplicationDate, string(app.Status), app.PropertyID, app.TenantCognitoID,
		app.Name, app.Email, app.PhoneNumber, app.Message, app.LeaseID,
	).Scan(&app.ID)
	if err != nil {
		return fmt.Errorf("insert application: %w", mapError(err))
	}
	return nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus, leaseID *int64) error {
	q := psql.Update("application").Set("status", string(status)).Where(sq.Eq{"id": id})
	if leaseID != nil {
		q = q.Set("lease_id", *leaseID)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update application status: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
