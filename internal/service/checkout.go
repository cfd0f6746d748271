package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/set-night/imeicheck/internal/domain"
	"github.com/set-night/imeicheck/internal/repository"
	"github.com/shopspring/decimal"
)

type OrderCreator interface {
	Create(ctx context.Context, arg repository.CreateOrderParams) (*domain.PaymentOrder, error)
}

type CheckoutService struct {
	store       OrderCreator
	shopID      string
	secret      string
	merchantURL string
	price       decimal.Decimal
	currency    string
}

func NewCheckoutService(store OrderCreator, shopID, secretKey, merchantURL string, price decimal.Decimal, currency string) *CheckoutService {
	return &CheckoutService{
		store:       store,
		shopID:      shopID,
		secret:      secretKey,
		merchantURL: merchantURL,
		price:       price,
		currency:    currency,
	}
}

type Check struct {
	Order      *domain.PaymentOrder
	PaymentURL string
}

// CreateCheck validates the IMEI, records a pending order for the chat and
// builds the signed payment link.
func (s *CheckoutService) CreateCheck(ctx context.Context, chatID int64, rawIMEI string) (*Check, error) {
	imei, err := domain.NormalizeIMEI(rawIMEI)
	if err != nil {
		return nil, err
	}

	order, err := s.store.Create(ctx, repository.CreateOrderParams{
		OrderID:       uuid.New().String(),
		SubjectID:     chatID,
		ItemReference: imei,
		Amount:        s.price.StringFixed(2),
		Currency:      s.currency,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	paymentURL, err := s.PaymentURL(order)
	if err != nil {
		return nil, err
	}

	return &Check{Order: order, PaymentURL: paymentURL}, nil
}

// PaymentURL builds the merchant form link for an order.
func (s *CheckoutService) PaymentURL(order *domain.PaymentOrder) (string, error) {
	u, err := url.Parse(s.merchantURL)
	if err != nil {
		return "", fmt.Errorf("parse merchant url: %w", err)
	}

	form := map[string]string{
		"m_shop":    s.shopID,
		"m_orderid": order.OrderID,
		"m_amount":  order.Amount.StringFixed(2),
		"m_curr":    order.Currency,
		"m_desc":    base64.StdEncoding.EncodeToString([]byte("IMEI check " + order.ItemReference)),
	}

	values := make([]string, 0, len(CheckoutSignatureFields))
	q := u.Query()
	for _, name := range CheckoutSignatureFields {
		values = append(values, form[name])
		q.Set(name, form[name])
	}
	q.Set(FieldSign, Sign(values, s.secret))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
