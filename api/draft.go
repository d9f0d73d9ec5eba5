package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/medflow/intake/flow"
	"github.com/medflow/intake/middleware"
)

// DraftHandler exposes the flow draft store over HTTP so a thin client can
// resume an intake from any device. Authenticated drafts are keyed by
// profile id; anonymous drafts by a client-generated token so one browser's
// draft is never served to another.
type DraftHandler struct {
	drafts flow.DraftStore
}

func NewDraftHandler(drafts flow.DraftStore) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

const draftTokenHeader = "X-Draft-Token"

func (h *DraftHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	service := mux.Vars(r)["service"]
	ref, ok := h.identityRef(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing draft token"})
		return
	}

	draft, err := h.drafts.Get(r.Context(), service, ref)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load draft"})
		return
	}
	if draft == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No draft found"})
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

func (h *DraftHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	service := mux.Vars(r)["service"]
	ref, ok := h.identityRef(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing draft token"})
		return
	}

	var draft flow.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	// The key wins over whatever the body claims, so a caller can never
	// write into another identity's draft slot.
	draft.ServiceSlug = service
	draft.IdentityRef = ref

	if err := h.drafts.Put(r.Context(), &draft); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save draft"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *DraftHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	service := mux.Vars(r)["service"]
	ref, ok := h.identityRef(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing draft token"})
		return
	}

	if err := h.drafts.Delete(r.Context(), service, ref); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete draft"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DraftHandler) identityRef(r *http.Request) (string, bool) {
	if identity := middleware.IdentityFrom(r.Context()); identity.Authenticated() {
		return identity.ProfileID, true
	}
	if token := r.Header.Get(draftTokenHeader); token != "" {
		return "anon:" + token, true
	}
	return "", false
}
