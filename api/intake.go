package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/medflow/intake/middleware"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/utils"
)

type Submitter interface {
	Submit(ctx context.Context, identity *models.Identity, req *models.SubmitRequest) (*models.SubmitResponse, error)
}

type PaymentRetrier interface {
	Retry(ctx context.Context, identity *models.Identity, requestID string) (*models.SubmitResponse, error)
}

type RequestReader interface {
	ListRequests(ctx context.Context, identity *models.Identity) ([]*models.Request, error)
	GetRequest(ctx context.Context, identity *models.Identity, requestID string) (*models.RequestDetail, error)
}

type IntakeHandler struct {
	submissions Submitter
	retries     PaymentRetrier
	reader      RequestReader
}

func NewIntakeHandler(submissions Submitter, retries PaymentRetrier, reader RequestReader) *IntakeHandler {
	return &IntakeHandler{
		submissions: submissions,
		retries:     retries,
		reader:      reader,
	}
}

func (h *IntakeHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		writeError(w, &utils.AuthRequiredError{})
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.submissions.Submit(r.Context(), identity, &req)
	if err != nil {
		utils.Error(r.Context(), "submission failed", map[string]interface{}{
			"category": string(req.Category),
			"error":    err.Error(),
		})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *IntakeHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		writeError(w, &utils.AuthRequiredError{})
		return
	}

	requests, err := h.reader.ListRequests(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	if requests == nil {
		requests = []*models.Request{}
	}

	writeJSON(w, http.StatusOK, requests)
}

func (h *IntakeHandler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		writeError(w, &utils.AuthRequiredError{})
		return
	}

	detail, err := h.reader.GetRequest(r.Context(), identity, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *IntakeHandler) HandleRetryPayment(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if !identity.Authenticated() {
		writeError(w, &utils.AuthRequiredError{})
		return
	}

	requestID := mux.Vars(r)["id"]
	if requestID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing request id"})
		return
	}

	resp, err := h.retries.Retry(r.Context(), identity, requestID)
	if err != nil {
		utils.Error(r.Context(), "payment retry failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
