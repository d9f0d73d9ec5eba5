package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/medflow/intake/middleware"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
)

type fakeSubmitter struct {
	resp *models.SubmitResponse
	err  error

	gotIdentity *models.Identity
	gotRequest  *models.SubmitRequest
}

func (f *fakeSubmitter) Submit(ctx context.Context, identity *models.Identity, req *models.SubmitRequest) (*models.SubmitResponse, error) {
	f.gotIdentity = identity
	f.gotRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeRetrier struct {
	resp *models.SubmitResponse
	err  error

	gotRequestID string
}

func (f *fakeRetrier) Retry(ctx context.Context, identity *models.Identity, requestID string) (*models.SubmitResponse, error) {
	f.gotRequestID = requestID
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeReader struct {
	list   []*models.Request
	detail *models.RequestDetail
	err    error
}

func (f *fakeReader) ListRequests(ctx context.Context, identity *models.Identity) ([]*models.Request, error) {
	return f.list, f.err
}

func (f *fakeReader) GetRequest(ctx context.Context, identity *models.Identity, requestID string) (*models.RequestDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func testRouter(handler *IntakeHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/requests", handler.HandleSubmit).Methods("POST")
	router.HandleFunc("/api/v1/requests", handler.HandleListRequests).Methods("GET")
	router.HandleFunc("/api/v1/requests/{id}", handler.HandleGetRequest).Methods("GET")
	router.HandleFunc("/api/v1/requests/{id}/payment/retry", handler.HandleRetryPayment).Methods("POST")
	return router
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	identity := &models.Identity{UserID: "user-1", ProfileID: "profile-1", Email: "pat@example.com"}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func TestHandleSubmit_Success(t *testing.T) {
	submitter := &fakeSubmitter{resp: &models.SubmitResponse{
		RequestID:   "req-1",
		SessionID:   "cs_test_1",
		RedirectURL: "https://checkout.test/cs_test_1",
	}}
	router := testRouter(NewIntakeHandler(submitter, &fakeRetrier{}, &fakeReader{}))

	body, _ := json.Marshal(models.SubmitRequest{
		Category: models.CategoryMedicalCertificate,
		Type:     "new",
		Answers:  models.JSON{"reason": "flu"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp models.SubmitResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RedirectURL != "https://checkout.test/cs_test_1" {
		t.Errorf("redirect_url = %q, want %q", resp.RedirectURL, "https://checkout.test/cs_test_1")
	}
	if submitter.gotIdentity.ProfileID != "profile-1" {
		t.Errorf("identity.ProfileID = %q, want %q", submitter.gotIdentity.ProfileID, "profile-1")
	}
	if submitter.gotRequest.Category != models.CategoryMedicalCertificate {
		t.Errorf("request.Category = %q, want %q", submitter.gotRequest.Category, models.CategoryMedicalCertificate)
	}
}

func TestHandleSubmit_Anonymous(t *testing.T) {
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, &fakeReader{}))

	req := httptest.NewRequest("POST", "/api/v1/requests", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleSubmit_InvalidBody(t *testing.T) {
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests", []byte("not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleSubmit_ValidationErrors(t *testing.T) {
	submitter := &fakeSubmitter{err: utils.ValidationErrors{
		{Field: "category", Message: "is required"},
	}}
	router := testRouter(NewIntakeHandler(submitter, &fakeRetrier{}, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests", []byte("{}")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Fields) != 1 || resp.Fields[0].Field != "category" {
		t.Errorf("fields = %v, want one entry for category", resp.Fields)
	}
}

func TestHandleSubmit_ConfigurationErrorIsOpaque(t *testing.T) {
	submitter := &fakeSubmitter{err: &utils.ConfigurationError{Detail: "price table missing tier imaging"}}
	router := testRouter(NewIntakeHandler(submitter, &fakeRetrier{}, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests", []byte("{}")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" || bytes.Contains([]byte(resp.Error), []byte("price table")) {
		t.Errorf("error = %q; configuration detail must not leak to the client", resp.Error)
	}
}

func TestHandleRetryPayment_Success(t *testing.T) {
	retrier := &fakeRetrier{resp: &models.SubmitResponse{
		RequestID:   "req-1",
		SessionID:   "cs_test_2",
		RedirectURL: "https://checkout.test/cs_test_2",
	}}
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, retrier, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests/req-1/payment/retry", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if retrier.gotRequestID != "req-1" {
		t.Errorf("requestID = %q, want %q", retrier.gotRequestID, "req-1")
	}
}

func TestHandleRetryPayment_NotFound(t *testing.T) {
	retrier := &fakeRetrier{err: &utils.NotFoundError{Resource: "request", ID: "req-1"}}
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, retrier, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests/req-1/payment/retry", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleRetryPayment_AlreadyPaid(t *testing.T) {
	retrier := &fakeRetrier{err: &utils.StateError{Message: "request is already paid or not awaiting payment"}}
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, retrier, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("POST", "/api/v1/requests/req-1/payment/retry", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestHandleListRequests_Success(t *testing.T) {
	reader := &fakeReader{list: []*models.Request{
		{ID: "req-1", PatientID: "profile-1", Category: models.CategoryMedicalCertificate},
	}}
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, reader))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/api/v1/requests", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var listed []*models.Request
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "req-1" {
		t.Errorf("listed = %v, want one request req-1", listed)
	}
}

func TestHandleListRequests_EmptyIsArray(t *testing.T) {
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, &fakeReader{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/api/v1/requests", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want an empty JSON array", body)
	}
}

func TestHandleGetRequest_Success(t *testing.T) {
	reader := &fakeReader{detail: &models.RequestDetail{
		Request: &models.Request{ID: "req-1", PatientID: "profile-1"},
		Answers: models.JSON{"reason": "flu"},
	}}
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, reader))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/api/v1/requests/req-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var detail models.RequestDetail
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Request == nil || detail.Request.ID != "req-1" {
		t.Errorf("detail.Request = %v, want req-1", detail.Request)
	}
	if detail.Answers.StringValue("reason") != "flu" {
		t.Errorf("detail.Answers = %v, want reason=flu", detail.Answers)
	}
}

func TestHandleGetRequest_NotFound(t *testing.T) {
	reader := &fakeReader{err: &utils.NotFoundError{Resource: "request", ID: "req-1"}}
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, reader))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest("GET", "/api/v1/requests/req-1", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetRequest_Anonymous(t *testing.T) {
	router := testRouter(NewIntakeHandler(&fakeSubmitter{}, &fakeRetrier{}, &fakeReader{}))

	req := httptest.NewRequest("GET", "/api/v1/requests/req-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
