package services

import (
	"context"
	"time"

	"github.com/medflow/intake/config"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/providers"
	"github.com/medflow/intake/utils"
)

// PaymentRetryService re-opens a checkout session for a request still
// awaiting payment, without ever creating a second live request. Ownership
// is enforced by the lookup predicate itself and the pending_payment guard
// protects against double billing.
type PaymentRetryService struct {
	submissions *SubmissionService
	requests    RequestStore
	resolver    *PriceResolver
}

func NewPaymentRetryService(requests RequestStore, payments PaymentStore, gateway providers.CheckoutProvider, resolver *PriceResolver, checkout config.CheckoutConfig, gatewayTimeout time.Duration) *PaymentRetryService {
	return &PaymentRetryService{
		submissions: NewSubmissionService(requests, payments, gateway, resolver, checkout, gatewayTimeout),
		requests:    requests,
		resolver:    resolver,
	}
}

func (s *PaymentRetryService) Retry(ctx context.Context, identity *models.Identity, requestID string) (*models.SubmitResponse, error) {
	if !identity.Authenticated() {
		return nil, &utils.AuthRequiredError{}
	}

	// The predicate carries the ownership check: a request owned by a
	// different patient comes back as not found.
	request, err := s.requests.GetByIDForPatient(ctx, requestID, identity.ProfileID)
	if err != nil {
		return nil, err
	}

	if request.PaymentStatus != models.PaymentStatusPendingPayment {
		return nil, &utils.StateError{
			Message: "request is already paid or not awaiting payment",
		}
	}

	// Price is re-resolved from the stored classification only; the
	// original answers are not consulted again.
	_, price, err := s.resolver.Resolve(request.Category, request.SubtypeValue(), nil)
	if err != nil {
		return nil, err
	}

	session, err := s.submissions.createSession(ctx, identity, request, price, true)
	if err != nil {
		// Mirrors fresh submission: the request is deleted when the
		// gateway refuses a session for it.
		if derr := s.requests.Delete(ctx, request.ID); derr != nil {
			utils.Error(ctx, "failed to delete request after gateway failure", map[string]interface{}{
				"request_id": request.ID,
				"error":      derr.Error(),
			})
		}
		return nil, err
	}

	if perr := s.submissions.recordPayment(ctx, request.ID, session, price); perr != nil {
		utils.Warn(ctx, "failed to record retried payment session", map[string]interface{}{
			"request_id": request.ID,
			"session_id": session.ID,
			"error":      perr.Error(),
		})
	}

	utils.Info(ctx, "payment session reopened", map[string]interface{}{
		"request_id": request.ID,
		"session_id": session.ID,
	})

	return &models.SubmitResponse{
		RequestID:   request.ID,
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}
