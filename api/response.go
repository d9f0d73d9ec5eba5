package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medflow/intake/utils"
)

type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []utils.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// writeError maps a domain error onto its HTTP status and a user-safe
// message; field-level validation failures are itemized.
func writeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{Error: utils.UserMessage(err)}

	var validation utils.ValidationErrors
	if errors.As(err, &validation) {
		response.Fields = validation
	}

	writeJSON(w, utils.HTTPStatus(err), response)
}
