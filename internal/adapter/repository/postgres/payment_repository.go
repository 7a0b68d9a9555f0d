package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/V4T54L/rentwise/internal/domain"
)

type paymentRow struct {
	ID            int64        `db:"id"`
	AmountDue     float64      `db:"amount_due"`
	AmountPaid    float64      `db:"amount_paid"`
	DueDate       time.Time    `db:"due_date"`
	PaymentDate   sql.NullTime `db:"payment_date"`
	PaymentStatus string       `db:"payment_status"`
	LeaseID       int64        `db:"lease_id"`
}

// PaymentRepository implements domain.PaymentRepository for PostgreSQL.
type PaymentRepository struct {
	db sqlx.ExtContext
}

// NewPaymentRepository creates a repository on a pool or transaction.
func NewPaymentRepository(db sqlx.ExtContext) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListByLease(ctx context.Context, leaseID int64) ([]domain.Payment, error) {
	const query = `
		SELECT id, amount_due, amount_paid, due_date, payment_date, payment_status, lease_id
		FROM payment
		WHERE lease_id = $1
		ORDER BY due_date, id`
	var rows []paymentRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, leaseID); err != nil {
		return nil, fmt.Errorf("select payments: %w", mapError(err))
	}

	payments := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		p := domain.Payment{
			ID:            row.ID,
			AmountDue:     row.AmountDue,
			AmountPaid:    row.AmountPaid,
			DueDate:       row.DueDate,
			PaymentStatus: domain.PaymentStatus(row.PaymentStatus),
			LeaseID:       row.LeaseID,
		}
		if row.PaymentDate.Valid {
			t := row.PaymentDate.Time
			p.PaymentDate = &t
		}
		payments = append(payments, p)
	}
	return payments, nil
}
