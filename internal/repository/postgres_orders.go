package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/imeicheck/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresOrderStore struct {
	db *pgxpool.Pool
}

func NewPostgresOrderStore(db *pgxpool.Pool) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

const pgCreateOrder = `
INSERT INTO payment_orders (order_id, subject_id, item_reference, amount, currency, status)
VALUES ($1, $2, $3, $4::numeric, $5, 'PENDING')
ON CONFLICT (order_id) DO NOTHING
RETURNING created_at`

func (s *PostgresOrderStore) Create(ctx context.Context, arg CreateOrderParams) (*domain.PaymentOrder, error) {
	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}

	var createdAt time.Time
	err = s.db.QueryRow(ctx, pgCreateOrder,
		arg.OrderID, arg.SubjectID, arg.ItemReference, arg.Amount, arg.Currency,
	).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDuplicateOrder
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return &domain.PaymentOrder{
		OrderID:       arg.OrderID,
		SubjectID:     arg.SubjectID,
		ItemReference: arg.ItemReference,
		Amount:        amount,
		Currency:      arg.Currency,
		Status:        domain.OrderStatusPending,
		CreatedAt:     createdAt,
	}, nil
}

const pgMarkPaid = `
UPDATE payment_orders
SET status = 'PAID', paid_at = NOW()
WHERE order_id = $1 AND status = 'PENDING'
RETURNING subject_id, item_reference`

// TryMarkPaid relies on the row lock taken by UPDATE: a concurrent caller
// blocks, re-evaluates the WHERE clause after the first commit and matches
// no row.
func (s *PostgresOrderStore) TryMarkPaid(ctx context.Context, orderID string) (domain.SettlementOutcome, error) {
	out := domain.SettlementOutcome{OrderID: orderID}

	err := s.db.QueryRow(ctx, pgMarkPaid, orderID).Scan(&out.SubjectID, &out.ItemReference)
	if err == nil {
		out.Result = domain.SettlementNewlySettled
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return out, fmt.Errorf("mark paid: %w", err)
	}

	var status string
	err = s.db.QueryRow(ctx, `SELECT status FROM payment_orders WHERE order_id = $1`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			out.Result = domain.SettlementNotFound
			return out, nil
		}
		return out, fmt.Errorf("get order status: %w", err)
	}

	out.Result = domain.SettlementAlreadySettled
	return out, nil
}

const pgSelectOrder = `
SELECT order_id, subject_id, item_reference, amount::text, currency, status, created_at, paid_at, notified_at
FROM payment_orders`

func (s *PostgresOrderStore) Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	row := s.db.QueryRow(ctx, pgSelectOrder+` WHERE order_id = $1`, orderID)
	o, err := scanPgOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *PostgresOrderStore) MarkNotified(ctx context.Context, orderID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE payment_orders SET notified_at = NOW() WHERE order_id = $1 AND status = 'PAID'`, orderID)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotPaid
	}
	return nil
}

func (s *PostgresOrderStore) ListUnnotified(ctx context.Context, paidBefore time.Time, limit int) ([]domain.PaymentOrder, error) {
	rows, err := s.db.Query(ctx, pgSelectOrder+`
WHERE status = 'PAID' AND notified_at IS NULL AND paid_at < $1
ORDER BY paid_at
LIMIT $2`, paidBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list unnotified: %w", err)
	}
	defer rows.Close()

	var orders []domain.PaymentOrder
	for rows.Next() {
		o, err := scanPgOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *PostgresOrderStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresOrderStore) Close() {
	s.db.Close()
}

func scanPgOrder(row pgx.Row) (*domain.PaymentOrder, error) {
	var (
		o      domain.PaymentOrder
		amount string
		status string
	)
	if err := row.Scan(&o.OrderID, &o.SubjectID, &o.ItemReference, &amount, &o.Currency,
		&status, &o.CreatedAt, &o.PaidAt, &o.NotifiedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	o.Amount = d
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
