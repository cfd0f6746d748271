package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/set-night/imeicheck/internal/domain"
)

// Source identifies which entry point delivered a settlement request.
type Source string

const (
	SourceCallback Source = "callback"
	SourceRedirect Source = "redirect"
)

type SettlementStore interface {
	TryMarkPaid(ctx context.Context, orderID string) (domain.SettlementOutcome, error)
}

// NotificationSink receives one task per newly settled order. Notify must
// not block on delivery.
type NotificationSink interface {
	Notify(ctx context.Context, n domain.Notification)
}

// SettlementService verifies gateway notifications and drives the single
// PENDING -> PAID transition. The status callback and the buyer's success
// redirect both go through Settle.
type SettlementService struct {
	store  SettlementStore
	sink   NotificationSink
	shopID string
	secret string
}

func NewSettlementService(store SettlementStore, sink NotificationSink, shopID, secretKey string) *SettlementService {
	return &SettlementService{
		store:  store,
		sink:   sink,
		shopID: shopID,
		secret: secretKey,
	}
}

// Settle returns the store outcome for a verified successful payment. The
// sink is invoked only for SettlementNewlySettled; AlreadySettled is a
// successful no-op.
func (s *SettlementService) Settle(ctx context.Context, source Source, fields map[string]string) (domain.SettlementOutcome, error) {
	cb, err := VerifyCallback(fields, s.shopID, s.secret)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			slog.Warn("payment signature mismatch",
				"source", source,
				"order_id", cb.OrderID,
				"operation_id", cb.OperationID,
				"shop", cb.ShopID,
				"contract", CallbackSignatureVersion,
			)
		}
		return domain.SettlementOutcome{}, err
	}

	if cb.Status != StatusSuccess {
		slog.Info("payment not successful",
			"source", source,
			"order_id", cb.OrderID,
			"status", cb.Status,
		)
		return domain.SettlementOutcome{OrderID: cb.OrderID}, fmt.Errorf("%w: status %q", domain.ErrPaymentNotSuccessful, cb.Status)
	}

	out, err := s.store.TryMarkPaid(ctx, cb.OrderID)
	if err != nil {
		return domain.SettlementOutcome{OrderID: cb.OrderID}, fmt.Errorf("settle order %s: %w", cb.OrderID, err)
	}

	switch out.Result {
	case domain.SettlementNotFound:
		slog.Warn("payment for unknown order",
			"source", source,
			"order_id", cb.OrderID,
			"operation_id", cb.OperationID,
		)
		return out, fmt.Errorf("%w: %s", domain.ErrUnknownOrder, cb.OrderID)

	case domain.SettlementAlreadySettled:
		slog.Info("order already settled", "source", source, "order_id", cb.OrderID)
		return out, nil

	default:
		slog.Info("order settled",
			"source", source,
			"order_id", cb.OrderID,
			"operation_id", cb.OperationID,
			"amount", cb.Amount,
			"currency", cb.Currency,
		)
		s.sink.Notify(ctx, domain.Notification{
			OrderID:       out.OrderID,
			SubjectID:     out.SubjectID,
			ItemReference: out.ItemReference,
		})
		return out, nil
	}
}
