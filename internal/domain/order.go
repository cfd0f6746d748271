package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

// PaymentOrder is a single paid IMEI check requested by a chat.
type PaymentOrder struct {
	OrderID       string
	SubjectID     int64 // buyer chat id
	ItemReference string
	Amount        decimal.Decimal
	Currency      string
	Status        OrderStatus
	CreatedAt     time.Time
	PaidAt        *time.Time
	NotifiedAt    *time.Time
}

func (o *PaymentOrder) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

type SettlementResult int

const (
	SettlementNotFound SettlementResult = iota
	SettlementAlreadySettled
	SettlementNewlySettled
)

func (r SettlementResult) String() string {
	switch r {
	case SettlementNewlySettled:
		return "newly_settled"
	case SettlementAlreadySettled:
		return "already_settled"
	default:
		return "not_found"
	}
}

// SettlementOutcome is the result of a single PENDING -> PAID attempt.
// SubjectID and ItemReference are set only for SettlementNewlySettled.
type SettlementOutcome struct {
	Result        SettlementResult
	OrderID       string
	SubjectID     int64
	ItemReference string
}

// Notification is the task handed to the notification sink once an order is newly settled.
type Notification struct {
	OrderID       string
	SubjectID     int64
	ItemReference string
}
