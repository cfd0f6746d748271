package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/imeicheck/internal/config"
	"github.com/set-night/imeicheck/internal/domain"
)

const lookupFailedText = "❌ Payment was received, but IMEI check failed. Please contact support with your order id."

type ImeiLookup interface {
	Lookup(ctx context.Context, imei string) (ImeiReport, error)
}

type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type DeliveryStore interface {
	Get(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	MarkNotified(ctx context.Context, orderID string) error
}

// Alerter posts settlements and undelivered orders to the admin log.
type Alerter interface {
	LogPaymentSettled(orderID string, chatID int64, imei string)
	LogDeliveryFailure(orderID string, chatID int64, err error)
}

// DeliveryService is the notification sink: it looks up the paid IMEI and
// sends the report to the buyer. Deliveries run detached from the request
// that settled the order and are never retried here; failed orders stay
// unnotified until replayed.
type DeliveryService struct {
	lookup    ImeiLookup
	messenger Messenger
	store     DeliveryStore
	alerter   Alerter
	wg        sync.WaitGroup
}

func NewDeliveryService(lookup ImeiLookup, messenger Messenger, store DeliveryStore, alerter Alerter) *DeliveryService {
	return &DeliveryService{
		lookup:    lookup,
		messenger: messenger,
		store:     store,
		alerter:   alerter,
	}
}

// Notify starts delivery in the background and returns immediately. The
// settlement audit post runs in the same tracked goroutine, so Wait covers it.
func (d *DeliveryService) Notify(ctx context.Context, n domain.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		d.alerter.LogPaymentSettled(n.OrderID, n.SubjectID, n.ItemReference)

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.NotificationTimeout)
		defer cancel()

		if err := d.Deliver(ctx, n); err != nil {
			slog.Error("settled order not delivered",
				"order_id", n.OrderID,
				"chat_id", n.SubjectID,
				"error", err,
			)
			d.alerter.LogDeliveryFailure(n.OrderID, n.SubjectID, err)
		}
	}()
}

// Deliver performs one delivery attempt synchronously.
func (d *DeliveryService) Deliver(ctx context.Context, n domain.Notification) error {
	report, err := d.lookup.Lookup(ctx, n.ItemReference)
	if err != nil {
		if sendErr := d.messenger.SendText(ctx, n.SubjectID, lookupFailedText); sendErr != nil {
			err = errors.Join(err, sendErr)
		}
		return fmt.Errorf("imei lookup: %w", err)
	}

	if err := d.messenger.SendText(ctx, n.SubjectID, FormatReport(report)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	if err := d.store.MarkNotified(ctx, n.OrderID); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}

	slog.Info("imei report delivered", "order_id", n.OrderID, "chat_id", n.SubjectID)
	return nil
}

// Replay re-runs delivery for an order that is already paid. It never
// touches the settlement state.
func (d *DeliveryService) Replay(ctx context.Context, orderID string) error {
	order, err := d.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsPaid() {
		return domain.ErrOrderNotPaid
	}

	return d.Deliver(ctx, domain.Notification{
		OrderID:       order.OrderID,
		SubjectID:     order.SubjectID,
		ItemReference: order.ItemReference,
	})
}

// Wait blocks until background deliveries finish.
func (d *DeliveryService) Wait() {
	d.wg.Wait()
}

type UnnotifiedLister interface {
	ListUnnotified(ctx context.Context, paidBefore time.Time, limit int) ([]domain.PaymentOrder, error)
}

const unnotifiedReportLimit = 100

// ReportUnnotified logs and alerts on paid orders that were never delivered,
// e.g. after a crash between settlement and delivery. It does not redeliver.
func ReportUnnotified(ctx context.Context, store UnnotifiedLister, alerter Alerter, paidBefore time.Time) (int, error) {
	orders, err := store.ListUnnotified(ctx, paidBefore, unnotifiedReportLimit)
	if err != nil {
		return 0, err
	}
	for _, o := range orders {
		slog.Warn("paid order without delivered result", "order_id", o.OrderID, "chat_id", o.SubjectID, "paid_at", o.PaidAt)
		alerter.LogDeliveryFailure(o.OrderID, o.SubjectID, errors.New("paid but never delivered"))
	}
	return len(orders), nil
}
