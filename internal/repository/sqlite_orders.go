package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/set-night/imeicheck/internal/domain"
	"github.com/shopspring/decimal"
)

// SQLiteOrderStore backs single-instance deployments and tests.
type SQLiteOrderStore struct {
	db *sql.DB
}

func NewSQLiteOrderStore(db *sql.DB) *SQLiteOrderStore {
	return &SQLiteOrderStore{db: db}
}

func (s *SQLiteOrderStore) Create(ctx context.Context, arg CreateOrderParams) (*domain.PaymentOrder, error) {
	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}

	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_orders (order_id, subject_id, item_reference, amount, currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, 'PENDING', ?)
		ON CONFLICT (order_id) DO NOTHING
	`, arg.OrderID, arg.SubjectID, arg.ItemReference, amount.StringFixed(2), arg.Currency, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrDuplicateOrder
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

func (s *SQLiteOrderStore) TryMarkPaid(ctx context.Context, orderID string) (domain.SettlementOutcome, error) {
	out := domain.SettlementOutcome{OrderID: orderID}

	err := s.db.QueryRowContext(ctx, `
		UPDATE payment_orders
		SET status = 'PAID', paid_at = ?
		WHERE order_id = ? AND status = 'PENDING'
		RETURNING subject_id, item_reference
	`, time.Now().UTC(), orderID).Scan(&out.SubjectID, &out.ItemReference)
	if err == nil {
		out.Result = domain.SettlementNewlySettled
		return out, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return out, fmt.Errorf("mark paid: %w", err)
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM payment_orders WHERE order_id = ?`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			out.Result = domain.SettlementNotFound
			return out, nil
		}
		return out, fmt.Errorf("get order status: %w", err)
	}

	out.Result = domain.SettlementAlreadySettled
	return out, nil
}

const sqliteSelectOrder = `
	SELECT order_id, subject_id, item_reference, amount, currency, status, created_at, paid_at, notified_at
	FROM payment_orders`

func (s *SQLiteOrderStore) Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelectOrder+` WHERE order_id = ?`, orderID)
	o, err := scanSQLiteOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *SQLiteOrderStore) MarkNotified(ctx context.Context, orderID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_orders SET notified_at = ? WHERE order_id = ? AND status = 'PAID'`,
		time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotPaid
	}
	return nil
}

func (s *SQLiteOrderStore) ListUnnotified(ctx context.Context, paidBefore time.Time, limit int) ([]domain.PaymentOrder, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectOrder+`
		WHERE status = 'PAID' AND notified_at IS NULL AND paid_at < ?
		ORDER BY paid_at
		LIMIT ?
	`, paidBefore.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list unnotified: %w", err)
	}
	defer rows.Close()

	var orders []domain.PaymentOrder
	for rows.Next() {
		o, err := scanSQLiteOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *SQLiteOrderStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteOrderStore) Close() {
	s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteOrder(row rowScanner) (*domain.PaymentOrder, error) {
	var (
		o          domain.PaymentOrder
		amount     string
		status     string
		paidAt     sql.NullTime
		notifiedAt sql.NullTime
	)
	if err := row.Scan(&o.OrderID, &o.SubjectID, &o.ItemReference, &amount, &o.Currency,
		&status, &o.CreatedAt, &paidAt, &notifiedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	o.Amount = d
	o.Status = domain.OrderStatus(status)
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if notifiedAt.Valid {
		o.NotifiedAt = &notifiedAt.Time
	}
	return &o, nil
}
