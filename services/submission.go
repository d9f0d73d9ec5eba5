package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/intake/config"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/providers"
	"github.com/medflow/intake/utils"
)

// RequestStore is the slice of the data store the orchestrators need.
type RequestStore interface {
	Create(ctx context.Context, request *models.Request) error
	Delete(ctx context.Context, id string) error
	GetByIDForPatient(ctx context.Context, id, patientID string) (*models.Request, error)
	AttachAnswers(ctx context.Context, answers *models.RequestAnswers) error
	GetAnswers(ctx context.Context, requestID string) (*models.RequestAnswers, error)
	ListByPatient(ctx context.Context, patientID string) ([]*models.Request, error)
}

type PaymentStore interface {
	Upsert(ctx context.Context, payment *models.Payment) error
	GetByRequestID(ctx context.Context, requestID string) (*models.Payment, error)
}

// SubmissionService turns a completed flow's answers into a pending Request
// with an open checkout session. The store and the gateway cannot share a
// transaction, so consistency under partial failure comes from compensating
// deletes: either the caller gets a redirect URL, or no Request survives.
type SubmissionService struct {
	requests       RequestStore
	payments       PaymentStore
	gateway        providers.CheckoutProvider
	resolver       *PriceResolver
	checkout       config.CheckoutConfig
	gatewayTimeout time.Duration
}

func NewSubmissionService(requests RequestStore, payments PaymentStore, gateway providers.CheckoutProvider, resolver *PriceResolver, checkout config.CheckoutConfig, gatewayTimeout time.Duration) *SubmissionService {
	return &SubmissionService{
		requests:       requests,
		payments:       payments,
		gateway:        gateway,
		resolver:       resolver,
		checkout:       checkout,
		gatewayTimeout: gatewayTimeout,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, identity *models.Identity, req *models.SubmitRequest) (*models.SubmitResponse, error) {
	if !identity.Authenticated() {
		return nil, &utils.AuthRequiredError{}
	}
	if err := validateSubmitRequest(req); err != nil {
		return nil, err
	}

	request := &models.Request{
		ID:            uuid.NewString(),
		PatientID:     identity.ProfileID,
		Category:      req.Category,
		Subtype:       subtypePtr(req.Subtype),
		Type:          req.Type,
		Status:        models.RequestStatusPending,
		Paid:          false,
		PaymentStatus: models.PaymentStatusPendingPayment,
	}

	var (
		price   config.Price
		session *providers.CheckoutSession
	)

	cmds := []command{
		{
			name: "create request",
			run: func(ctx context.Context) error {
				return s.requests.Create(ctx, request)
			},
			compensate: func(ctx context.Context) error {
				return s.requests.Delete(ctx, request.ID)
			},
		},
		{
			// Losing the answers blob is logged but does not unwind an
			// otherwise-valid submission.
			name:       "attach answers",
			bestEffort: true,
			run: func(ctx context.Context) error {
				return s.requests.AttachAnswers(ctx, &models.RequestAnswers{
					RequestID: request.ID,
					Answers:   req.Answers,
				})
			},
		},
		{
			name: "resolve price",
			run: func(ctx context.Context) error {
				_, resolved, err := s.resolver.Resolve(req.Category, req.Subtype, req.Answers)
				if err != nil {
					return err
				}
				price = resolved
				return nil
			},
		},
		{
			name: "create checkout session",
			run: func(ctx context.Context) error {
				result, err := s.createSession(ctx, identity, request, price, false)
				if err != nil {
					return err
				}
				session = result
				return nil
			},
		},
		{
			// Bookkeeping after a valid redirect exists; losing it is
			// cheaper for the patient than losing the redirect.
			name:       "record payment",
			bestEffort: true,
			run: func(ctx context.Context) error {
				return s.recordPayment(ctx, request.ID, session, price)
			},
		},
	}

	if err := runCommands(ctx, cmds); err != nil {
		return nil, err
	}

	utils.Info(ctx, "request submitted", map[string]interface{}{
		"request_id": request.ID,
		"category":   string(req.Category),
		"session_id": session.ID,
	})

	return &models.SubmitResponse{
		RequestID:   request.ID,
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}

// createSession opens the checkout session, retrying transient failures
// within the gateway timeout. A session without a usable redirect URL
// counts as a failure.
func (s *SubmissionService) createSession(ctx context.Context, identity *models.Identity, request *models.Request, price config.Price, isRetry bool) (*providers.CheckoutSession, error) {
	sctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	params := s.checkoutParams(identity, request, price, isRetry)

	var session *providers.CheckoutSession
	err := utils.Retry(sctx, utils.GatewayRetryConfig(), func() error {
		result, err := s.gateway.CreateSession(sctx, params)
		if err != nil {
			return err
		}
		session = result
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &utils.GatewayTransientError{Err: err}
		}
		return nil, err
	}

	if session.RedirectURL == "" {
		return nil, &utils.GatewayTransientError{
			Err: fmt.Errorf("gateway session %s has no redirect URL", session.ID),
		}
	}

	return session, nil
}

func (s *SubmissionService) checkoutParams(identity *models.Identity, request *models.Request, price config.Price, isRetry bool) *providers.CheckoutParams {
	metadata := map[string]string{
		"request_id": request.ID,
		"patient_id": request.PatientID,
		"category":   string(request.Category),
		"subtype":    request.SubtypeValue(),
	}
	if isRetry {
		metadata["is_retry"] = "true"
	}

	return &providers.CheckoutParams{
		PriceRef:      price.Ref,
		Amount:        price.Amount,
		Currency:      price.Currency,
		SuccessURL:    s.checkout.BaseURL + fmt.Sprintf(s.checkout.SuccessPath, request.ID),
		CancelURL:     s.checkout.BaseURL + fmt.Sprintf(s.checkout.CancelPath, request.ID),
		CustomerRef:   identity.CustomerRef,
		CustomerEmail: identity.Email,
		Description:   fmt.Sprintf("Telehealth %s request", request.Category),
		Metadata:      metadata,
	}
}

func (s *SubmissionService) recordPayment(ctx context.Context, requestID string, session *providers.CheckoutSession, price config.Price) error {
	amount := session.AmountTotal
	if amount == 0 {
		amount = price.Amount
	}
	currency := session.Currency
	if currency == "" {
		currency = price.Currency
	}

	return s.payments.Upsert(ctx, &models.Payment{
		ID:        uuid.NewString(),
		RequestID: requestID,
		SessionID: session.ID,
		Provider:  s.gateway.Name(),
		Amount:    amount,
		Currency:  currency,
		Status:    models.PaymentRecordStatusCreated,
	})
}

// ListRequests returns the caller's requests, newest first.
func (s *SubmissionService) ListRequests(ctx context.Context, identity *models.Identity) ([]*models.Request, error) {
	if !identity.Authenticated() {
		return nil, &utils.AuthRequiredError{}
	}
	return s.requests.ListByPatient(ctx, identity.ProfileID)
}

// GetRequest returns one owned request with its answers and payment
// record. The side rows are written best-effort on submission, so a
// missing answers blob or payment row is not an error.
func (s *SubmissionService) GetRequest(ctx context.Context, identity *models.Identity, requestID string) (*models.RequestDetail, error) {
	if !identity.Authenticated() {
		return nil, &utils.AuthRequiredError{}
	}

	request, err := s.requests.GetByIDForPatient(ctx, requestID, identity.ProfileID)
	if err != nil {
		return nil, err
	}

	detail := &models.RequestDetail{Request: request}
	if answers, err := s.requests.GetAnswers(ctx, requestID); err == nil {
		detail.Answers = answers.Answers
	}
	if payment, err := s.payments.GetByRequestID(ctx, requestID); err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

func validateSubmitRequest(req *models.SubmitRequest) error {
	var errs utils.ValidationErrors
	if req.Category == "" {
		errs = append(errs, utils.ValidationError{Field: "category", Message: "is required"})
	}
	if req.Type == "" {
		errs = append(errs, utils.ValidationError{Field: "type", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func subtypePtr(subtype string) *string {
	if subtype == "" {
		return nil
	}
	return &subtype
}
