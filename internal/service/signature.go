package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/set-night/imeicheck/internal/domain"
)

// CallbackSignatureVersion names the signing contract below. Bump it together
// with CallbackSignatureFields if the gateway ever changes the field set.
const CallbackSignatureVersion = "payeer-status-v1"

// CallbackSignatureFields is the ordered field list of a Payeer status
// callback signature. The shop id and the description both participate.
// m_params, when sent, is appended after m_status; the secret key always
// comes last.
var CallbackSignatureFields = []string{
	"m_operation_id",
	"m_operation_ps",
	"m_operation_date",
	"m_operation_pay_date",
	"m_shop",
	"m_orderid",
	"m_amount",
	"m_curr",
	"m_desc",
	"m_status",
}

// CheckoutSignatureFields is the ordered field list signed when building the
// merchant payment form link.
var CheckoutSignatureFields = []string{
	"m_shop",
	"m_orderid",
	"m_amount",
	"m_curr",
	"m_desc",
}

const (
	FieldSign     = "m_sign"
	FieldParams   = "m_params"
	StatusSuccess = "success"
	signDelimiter = ":"
)

// Callback is a parsed gateway status notification.
type Callback struct {
	OperationID string
	ShopID      string
	OrderID     string
	Amount      string
	Currency    string
	Status      string
	Sign        string

	fields map[string]string
}

// ParseCallback checks that every signed field and the signature are present.
func ParseCallback(fields map[string]string) (*Callback, error) {
	for _, name := range CallbackSignatureFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: missing %s", domain.ErrMalformedCallback, name)
		}
	}

	cb := &Callback{
		OperationID: fields["m_operation_id"],
		ShopID:      fields["m_shop"],
		OrderID:     fields["m_orderid"],
		Amount:      fields["m_amount"],
		Currency:    fields["m_curr"],
		Status:      fields["m_status"],
		Sign:        fields[FieldSign],
		fields:      fields,
	}

	required := map[string]string{
		"m_operation_id": cb.OperationID,
		"m_shop":         cb.ShopID,
		"m_orderid":      cb.OrderID,
		"m_amount":       cb.Amount,
		"m_curr":         cb.Currency,
		"m_status":       cb.Status,
		FieldSign:        cb.Sign,
	}
	for name, v := range required {
		if v == "" {
			return nil, fmt.Errorf("%w: empty %s", domain.ErrMalformedCallback, name)
		}
	}
	return cb, nil
}

// SigningValues returns the field values in signing order, without the secret.
func (c *Callback) SigningValues() []string {
	values := make([]string, 0, len(CallbackSignatureFields)+1)
	for _, name := range CallbackSignatureFields {
		values = append(values, c.fields[name])
	}
	if params, ok := c.fields[FieldParams]; ok {
		values = append(values, params)
	}
	return values
}

// CanonicalString joins values and the secret with the signing delimiter.
func CanonicalString(values []string, secret string) string {
	parts := make([]string, 0, len(values)+1)
	parts = append(parts, values...)
	parts = append(parts, secret)
	return strings.Join(parts, signDelimiter)
}

// Sign returns the upper-case hex SHA-256 of the canonical string.
func Sign(values []string, secret string) string {
	sum := sha256.Sum256([]byte(CanonicalString(values, secret)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SignatureMatches compares hex digests ignoring case, in constant time.
func SignatureMatches(expected, provided string) bool {
	e := []byte(strings.ToUpper(expected))
	p := []byte(strings.ToUpper(strings.TrimSpace(provided)))
	return subtle.ConstantTimeCompare(e, p) == 1
}

// VerifyCallback parses fields and checks the signature and the shop binding.
// It does not look at the payment status.
func VerifyCallback(fields map[string]string, shopID, secret string) (*Callback, error) {
	cb, err := ParseCallback(fields)
	if err != nil {
		return nil, err
	}
	if !SignatureMatches(Sign(cb.SigningValues(), secret), cb.Sign) {
		return cb, domain.ErrInvalidSignature
	}
	if cb.ShopID != shopID {
		return cb, fmt.Errorf("%w: shop %s", domain.ErrInvalidSignature, cb.ShopID)
	}
	return cb, nil
}
