package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/V4T54L/rentwise/internal/domain"
)

const (
	pgUniqueViolation     pq.ErrorCode = "23505"
	pgForeignKeyViolation pq.ErrorCode = "23503"
	pgCheckViolation      pq.ErrorCode = "23514"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to PostgreSQL and configures the pool.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Store implements domain.Store on top of a sqlx connection pool.
type Store struct {
	repos
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store whose plain repositories run on the pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		repos:  repos{q: db},
		db:     db,
		logger: logger.With("component", "postgres_store"),
	}
}

// Do runs fn in a transaction and commits when it returns nil.
func (s *Store) Do(ctx context.Context, fn func(tx domain.Repositories) error) error {
	txn, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback is a no-op after Commit

	if err := fn(repos{q: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		s.logger.Error("commit failed", "error", err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// repos binds every repository to one handle, either the pool or a tx.
type repos struct {
	q sqlx.ExtContext
}

func (r repos) Applications() domain.ApplicationRepository { return NewApplicationRepository(r.q) }
func (r repos) Leases() domain.LeaseRepository             { return NewLeaseRepository(r.q) }
func (r repos) Payments() domain.PaymentRepository         { return NewPaymentRepository(r.q) }
func (r repos) Properties() domain.PropertyRepository      { return NewPropertyRepository(r.q) }
func (r repos) Tenants() domain.TenantRepository           { return NewTenantRepository(r.q) }
func (r repos) Managers() domain.ManagerRepository         { return NewManagerRepository(r.q) }

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrNotFound)
		case pgCheckViolation:
			return domain.Invalid(pqErr.Constraint, "value out of range")
		}
	}
	return err
}
