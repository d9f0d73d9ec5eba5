package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/medflow/intake/utils"
	"github.com/xendit/xendit-go"
	"github.com/xendit/xendit-go/invoice"
)

// XenditProvider serves hosted checkout through Xendit invoices; the
// invoice URL is the redirect target. Unlike Stripe there is no provider
// side price object, so the configured amount and currency are sent inline
// and the request id travels in the invoice's external id.
type XenditProvider struct {
	apiKey string
}

func NewXenditProvider(apiKey string) *XenditProvider {
	xendit.Opt.SecretKey = apiKey
	return &XenditProvider{
		apiKey: apiKey,
	}
}

func (p *XenditProvider) Name() string {
	return "xendit"
}

func (p *XenditProvider) CreateSession(ctx context.Context, req *CheckoutParams) (*CheckoutSession, error) {
	params := &invoice.CreateParams{
		ExternalID:         req.Metadata["request_id"],
		Amount:             float64(req.Amount),
		Description:        req.Description,
		PayerEmail:         req.CustomerEmail,
		Currency:           req.Currency,
		SuccessRedirectURL: req.SuccessURL,
		FailureRedirectURL: req.CancelURL,
	}

	inv, err := invoice.CreateWithContext(ctx, params)
	if err != nil {
		return nil, p.classifyError(err)
	}

	return &CheckoutSession{
		ID:          inv.ID,
		RedirectURL: inv.InvoiceURL,
		AmountTotal: int64(inv.Amount),
		Currency:    inv.Currency,
	}, nil
}

func (p *XenditProvider) classifyError(err error) error {
	var xenditErr *xendit.Error
	if !errors.As(err, &xenditErr) {
		return &utils.GatewayTransientError{Err: err}
	}

	switch {
	case xenditErr.Status == http.StatusUnauthorized || xenditErr.Status == http.StatusForbidden:
		return &utils.ConfigurationError{Detail: "xendit rejected the API key: " + xenditErr.Message}
	case xenditErr.Status == http.StatusBadRequest:
		return &utils.ConfigurationError{Detail: "xendit rejected the invoice request: " + xenditErr.Message}
	case xenditErr.Status == http.StatusTooManyRequests || xenditErr.Status >= 500:
		return &utils.GatewayTransientError{Err: err}
	default:
		return &utils.GatewayTransientError{Err: err}
	}
}
