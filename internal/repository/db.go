package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/imeicheck/internal/config"
	"github.com/set-night/imeicheck/internal/domain"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteScheme = "sqlite://"
)

// OrderStore is the durable settlement store. Both backends guard the
// PENDING -> PAID transition with a single conditional UPDATE.
type OrderStore interface {
	Create(ctx context.Context, arg CreateOrderParams) (*domain.PaymentOrder, error)
	TryMarkPaid(ctx context.Context, orderID string) (domain.SettlementOutcome, error)
	Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	MarkNotified(ctx context.Context, orderID string) error
	ListUnnotified(ctx context.Context, paidBefore time.Time, limit int) ([]domain.PaymentOrder, error)
	Ping(ctx context.Context) error
	Close()
}

type CreateOrderParams struct {
	OrderID       string
	SubjectID     int64
	ItemReference string
	Amount        string
	Currency      string
}

// Driver reports which backend a DATABASE_URL selects.
func Driver(databaseURL string) string {
	if strings.HasPrefix(databaseURL, sqliteScheme) {
		return DriverSQLite
	}
	return DriverPostgres
}

// Open connects to the store selected by databaseURL.
func Open(ctx context.Context, databaseURL string) (OrderStore, error) {
	switch Driver(databaseURL) {
	case DriverSQLite:
		db, err := OpenSQLite(ctx, strings.TrimPrefix(databaseURL, sqliteScheme))
		if err != nil {
			return nil, err
		}
		return NewSQLiteOrderStore(db), nil
	default:
		pool, err := NewPool(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresOrderStore(pool), nil
	}
}

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	cfg.MaxConns = config.PoolMaxConns
	cfg.MinConns = config.PoolMinConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// OpenSQLite opens a single-connection SQLite database. SQLite has one
// writer at a time, so one connection keeps callers queued in database/sql
// instead of failing with SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// RunMigrations applies the migrations for the driver selected by databaseURL.
// migrationsFS must contain one subdirectory per driver.
func RunMigrations(databaseURL string, migrationsFS fs.FS) error {
	driver := Driver(databaseURL)
	sub, err := fs.Sub(migrationsFS, driver)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", driver, err)
	}

	d, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied", "driver", driver, "version", version, "dirty", dirty)
	return nil
}
