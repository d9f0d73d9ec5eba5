package services

import (
	"context"
	"time"

	"github.com/medflow/intake/config"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/providers"
	mocks "github.com/medflow/intake/testing"
	"github.com/medflow/intake/utils"
)

type fakeRequestStore struct {
	requests map[string]*models.Request
	answers  map[string]models.JSON
	deleted  []string

	createErr  error
	deleteErr  error
	attachErr  error
	getByIDErr error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[string]*models.Request),
		answers:  make(map[string]models.JSON),
	}
}

func (s *fakeRequestStore) Create(ctx context.Context, request *models.Request) error {
	if s.createErr != nil {
		return s.createErr
	}
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *fakeRequestStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.requests, id)
	delete(s.answers, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeRequestStore) GetByIDForPatient(ctx context.Context, id, patientID string) (*models.Request, error) {
	if s.getByIDErr != nil {
		return nil, s.getByIDErr
	}
	request, ok := s.requests[id]
	if !ok || request.PatientID != patientID {
		return nil, &utils.NotFoundError{Resource: "request", ID: id}
	}
	copied := *request
	return &copied, nil
}

func (s *fakeRequestStore) AttachAnswers(ctx context.Context, answers *models.RequestAnswers) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	s.answers[answers.RequestID] = answers.Answers
	return nil
}

func (s *fakeRequestStore) GetAnswers(ctx context.Context, requestID string) (*models.RequestAnswers, error) {
	answers, ok := s.answers[requestID]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "request answers", ID: requestID}
	}
	return &models.RequestAnswers{RequestID: requestID, Answers: answers}, nil
}

func (s *fakeRequestStore) ListByPatient(ctx context.Context, patientID string) ([]*models.Request, error) {
	var out []*models.Request
	for _, request := range s.requests {
		if request.PatientID == patientID {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakePaymentStore struct {
	upserts   []*models.Payment
	upsertErr error
}

func (s *fakePaymentStore) Upsert(ctx context.Context, payment *models.Payment) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	copied := *payment
	s.upserts = append(s.upserts, &copied)
	return nil
}

func (s *fakePaymentStore) GetByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	for i := len(s.upserts) - 1; i >= 0; i-- {
		if s.upserts[i].RequestID == requestID {
			copied := *s.upserts[i]
			return &copied, nil
		}
	}
	return nil, &utils.NotFoundError{Resource: "payment", ID: requestID}
}

type fakeGateway struct {
	session    *providers.CheckoutSession
	err        error
	calls      int
	lastParams *providers.CheckoutParams
}

func (g *fakeGateway) Name() string {
	return "fake"
}

func (g *fakeGateway) CreateSession(ctx context.Context, params *providers.CheckoutParams) (*providers.CheckoutSession, error) {
	g.calls++
	g.lastParams = params
	if g.err != nil {
		return nil, g.err
	}
	return g.session, nil
}

func testCheckout() config.CheckoutConfig {
	return config.CheckoutConfig{
		BaseURL:     "https://app.test",
		SuccessPath: "/requests/%s/payment/success",
		CancelPath:  "/requests/%s/payment/cancelled",
	}
}

func testIdentity() *models.Identity {
	return mocks.MockIdentity()
}

func testSession() *providers.CheckoutSession {
	return mocks.MockCheckoutSession()
}

func newTestSubmissionService(requests *fakeRequestStore, payments *fakePaymentStore, gateway *fakeGateway) *SubmissionService {
	return NewSubmissionService(requests, payments, gateway, NewPriceResolver(testPricing()), testCheckout(), 5*time.Second)
}
