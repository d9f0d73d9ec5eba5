package providers

import (
	"context"
)

// CheckoutParams describes one hosted-checkout session: a single line item
// at a pre-configured price, redirect targets, and metadata echoed back by
// the gateway's confirmation callback.
type CheckoutParams struct {
	// PriceRef is the provider-side price reference (Stripe). Providers
	// that take the amount inline use Amount/Currency instead (Xendit).
	PriceRef string
	Amount   int64
	Currency string

	SuccessURL string
	CancelURL  string

	// CustomerRef reuses an existing payment profile when present;
	// otherwise the provider is told to create one tied to CustomerEmail.
	CustomerRef   string
	CustomerEmail string

	Description string
	Metadata    map[string]string
}

// CheckoutSession is what the caller needs back: a session the patient can
// be redirected to, and the charged amount for bookkeeping.
type CheckoutSession struct {
	ID          string
	RedirectURL string
	AmountTotal int64
	Currency    string
}

// CheckoutProvider opens hosted payment sessions with an external gateway.
// Implementations classify their SDK errors into the shared taxonomy:
// configuration, price-not-found, or transient.
type CheckoutProvider interface {
	Name() string
	CreateSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)
}
