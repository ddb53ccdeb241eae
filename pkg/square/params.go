package square

import (
	"strings"

	sq "github.com/square/square-go-sdk"
	"github.com/square/square-go-sdk/checkout"
)

// PaymentLinkCreateParams encapsulates the inputs for a hosted checkout link.
type PaymentLinkCreateParams struct {
	Name           string
	AmountCents    int64
	Currency       string
	ReferenceID    string
	Description    string
	IdempotencyKey string
}

func (p PaymentLinkCreateParams) toSquareRequest(idempotencyKey, locationID, redirectURL string) *checkout.CreatePaymentLinkRequest {
	req := &checkout.CreatePaymentLinkRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		QuickPay: &sq.QuickPay{
			Name:       p.Name,
			LocationID: locationID,
			PriceMoney: moneyPtr(p.AmountCents, p.Currency),
		},
	}
	if trimmed := strings.TrimSpace(p.Description); trimmed != "" {
		req.Description = ptrString(trimmed)
	}
	options := &sq.CheckoutOptions{}
	hasOptions := false
	if trimmed := strings.TrimSpace(redirectURL); trimmed != "" {
		options.RedirectURL = ptrString(trimmed)
		hasOptions = true
	}
	if hasOptions {
		req.CheckoutOptions = options
	}
	if trimmed := strings.TrimSpace(p.ReferenceID); trimmed != "" {
		req.PaymentNote = ptrString(trimmed)
	}
	return req
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func currencyPtr(code string) *sq.Currency {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		trimmed = "USD"
	}
	c := sq.Currency(trimmed)
	return &c
}

func moneyPtr(amount int64, currency string) *sq.Money {
	if amount == 0 {
		return nil
	}
	return &sq.Money{
		Amount:   int64Ptr(amount),
		Currency: currencyPtr(currency),
	}
}
