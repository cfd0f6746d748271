package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/imeicheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runOrderStoreContract exercises the behaviour every OrderStore backend must share.
func runOrderStoreContract(t *testing.T, newStore func(t *testing.T) OrderStore) {
	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Create(ctx, CreateOrderParams{
			OrderID:       "abc123",
			SubjectID:     42,
			ItemReference: "490154203237518",
			Amount:        "0.32",
			Currency:      "USD",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, created.Status)

		got, err := store.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.SubjectID)
		assert.Equal(t, "490154203237518", got.ItemReference)
		assert.Equal(t, "0.32", got.Amount.StringFixed(2))
		assert.Equal(t, "USD", got.Currency)
		assert.Equal(t, domain.OrderStatusPending, got.Status)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Nil(t, got.PaidAt)
		assert.Nil(t, got.NotifiedAt)
	})

	t.Run("duplicate order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		arg := CreateOrderParams{OrderID: "dup", SubjectID: 1, ItemReference: "x", Amount: "1.00", Currency: "USD"}

		_, err := store.Create(ctx, arg)
		require.NoError(t, err)

		arg.SubjectID = 2
		_, err = store.Create(ctx, arg)
		require.ErrorIs(t, err, domain.ErrDuplicateOrder)

		got, err := store.Get(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.SubjectID)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(context.Background(), "nope")
		require.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("try mark paid transitions once", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, err := store.Create(ctx, CreateOrderParams{OrderID: "o1", SubjectID: 7, ItemReference: "imei", Amount: "0.32", Currency: "USD"})
		require.NoError(t, err)

		out, err := store.TryMarkPaid(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, domain.SettlementNewlySettled, out.Result)
		assert.Equal(t, int64(7), out.SubjectID)
		assert.Equal(t, "imei", out.ItemReference)

		out, err = store.TryMarkPaid(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, domain.SettlementAlreadySettled, out.Result)
		assert.Zero(t, out.SubjectID)

		got, err := store.Get(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPaid, got.Status)
		require.NotNil(t, got.PaidAt)
	})

	t.Run("try mark paid unknown", func(t *testing.T) {
		store := newStore(t)
		out, err := store.TryMarkPaid(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Equal(t, domain.SettlementNotFound, out.Result)

		_, err = store.Get(context.Background(), "ghost")
		require.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("concurrent mark paid yields one winner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		orderID := uuid.New().String()
		_, err := store.Create(ctx, CreateOrderParams{OrderID: orderID, SubjectID: 9, ItemReference: "imei", Amount: "0.32", Currency: "USD"})
		require.NoError(t, err)

		const callers = 32
		results := make([]domain.SettlementResult, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				out, err := store.TryMarkPaid(ctx, orderID)
				results[i], errs[i] = out.Result, err
			}()
		}
		close(start)
		wg.Wait()

		newly, already := 0, 0
		for i := range callers {
			require.NoError(t, errs[i])
			switch results[i] {
			case domain.SettlementNewlySettled:
				newly++
			case domain.SettlementAlreadySettled:
				already++
			}
		}
		assert.Equal(t, 1, newly)
		assert.Equal(t, callers-1, already)
	})

	t.Run("mark notified and list unnotified", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for _, id := range []string{"n1", "n2", "n3"} {
			_, err := store.Create(ctx, CreateOrderParams{OrderID: id, SubjectID: 1, ItemReference: "imei", Amount: "0.32", Currency: "USD"})
			require.NoError(t, err)
		}
		for _, id := range []string{"n1", "n2"} {
			_, err := store.TryMarkPaid(ctx, id)
			require.NoError(t, err)
		}

		require.ErrorIs(t, store.MarkNotified(ctx, "n3"), domain.ErrOrderNotPaid)
		require.NoError(t, store.MarkNotified(ctx, "n1"))

		pending, err := store.ListUnnotified(ctx, time.Now().Add(time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "n2", pending[0].OrderID)

		got, err := store.Get(ctx, "n1")
		require.NoError(t, err)
		assert.NotNil(t, got.NotifiedAt)
		assert.Equal(t, domain.OrderStatusPaid, got.Status)
	})
}
