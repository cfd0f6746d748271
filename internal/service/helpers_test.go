package service

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	"github.com/set-night/imeicheck"
	"github.com/set-night/imeicheck/internal/domain"
	"github.com/set-night/imeicheck/internal/repository"
	"github.com/stretchr/testify/require"
)

const (
	testShopID = "2209595647"
	testSecret = "123"
)

func newTestStore(t *testing.T) repository.OrderStore {
	t.Helper()

	migrations, err := fs.Sub(imeicheck.MigrationsFS, "migrations")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "orders.db")
	require.NoError(t, repository.RunMigrations("sqlite://"+path, migrations))

	db, err := repository.OpenSQLite(context.Background(), path)
	require.NoError(t, err)

	store := repository.NewSQLiteOrderStore(db)
	t.Cleanup(store.Close)
	return store
}

func createOrder(t *testing.T, store repository.OrderStore, orderID string, chatID int64, imei string) {
	t.Helper()
	_, err := store.Create(context.Background(), repository.CreateOrderParams{
		OrderID:       orderID,
		SubjectID:     chatID,
		ItemReference: imei,
		Amount:        "0.32",
		Currency:      "USD",
	})
	require.NoError(t, err)
}

// callbackFields returns a correctly signed status callback for orderID.
func callbackFields(orderID, status string) map[string]string {
	fields := map[string]string{
		"m_operation_id":       "1234567890",
		"m_operation_ps":       "2609",
		"m_operation_date":     "16.10.2026 12:00:00",
		"m_operation_pay_date": "16.10.2026 12:00:05",
		"m_shop":               testShopID,
		"m_orderid":            orderID,
		"m_amount":             "0.32",
		"m_curr":               "USD",
		"m_desc":               "SU1FSSBjaGVjaw==",
		"m_status":             status,
	}
	values := make([]string, 0, len(CallbackSignatureFields))
	for _, name := range CallbackSignatureFields {
		values = append(values, fields[name])
	}
	fields[FieldSign] = Sign(values, testSecret)
	return fields
}

type recordingSink struct {
	mu    sync.Mutex
	calls []domain.Notification
}

func (s *recordingSink) Notify(_ context.Context, n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, n)
}

func (s *recordingSink) Calls() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.calls...)
}
