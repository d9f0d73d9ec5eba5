package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/medflow/intake/utils"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

type StripeProvider struct {
	apiKey string
}

func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		apiKey: apiKey,
	}
}

func (p *StripeProvider) Name() string {
	return "stripe"
}

func (p *StripeProvider) CreateSession(ctx context.Context, req *CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceRef),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.CustomerRef != "" {
		params.Customer = stripe.String(req.CustomerRef)
	} else {
		params.CustomerCreation = stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways))
		if req.CustomerEmail != "" {
			params.CustomerEmail = stripe.String(req.CustomerEmail)
		}
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, p.classifyError(err, req.PriceRef)
	}

	return &CheckoutSession{
		ID:          sess.ID,
		RedirectURL: sess.URL,
		AmountTotal: sess.AmountTotal,
		Currency:    string(sess.Currency),
	}, nil
}

// classifyError folds Stripe's error surface into the shared taxonomy. A
// stale price reference is its own case so the caller can tell a bad price
// table apart from bad credentials.
func (p *StripeProvider) classifyError(err error, priceRef string) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return &utils.GatewayTransientError{Err: err}
	}

	if stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return &utils.PriceNotFoundError{Ref: priceRef}
	}

	switch stripeErr.Type {
	case stripe.ErrorType("authentication_error"):
		return &utils.ConfigurationError{Detail: "stripe rejected the API key: " + stripeErr.Msg}
	case stripe.ErrorTypeInvalidRequest:
		if stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &utils.GatewayTransientError{Err: err}
		}
		return &utils.ConfigurationError{Detail: "stripe rejected the session request: " + stripeErr.Msg}
	default:
		return &utils.GatewayTransientError{Err: err}
	}
}
