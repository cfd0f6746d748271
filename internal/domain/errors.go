package domain

import "errors"

var (
	ErrMalformedCallback    = errors.New("malformed callback")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrUnknownOrder         = errors.New("unknown order")
	ErrDuplicateOrder       = errors.New("duplicate order")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPaid         = errors.New("order not paid")
	ErrInvalidIMEI          = errors.New("invalid imei")
)
