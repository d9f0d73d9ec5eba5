package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError is a single field-level failure. These stay on the client
// boundary and never trigger server-side compensation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// AuthRequiredError means the operation needs an authenticated identity.
type AuthRequiredError struct{}

func (e *AuthRequiredError) Error() string {
	return "authentication required"
}

// NotFoundError covers both a genuinely missing record and an ownership
// mismatch. The two are indistinguishable on purpose so a lookup can never
// leak that another patient's request exists.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConfigurationError is a missing or invalid environment mapping, e.g. a
// price tier with no configured gateway reference. Fatal for the operation,
// logged with detail, surfaced to the user generically.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Detail
}

// PriceNotFoundError means the gateway rejected a price reference as stale
// or unknown.
type PriceNotFoundError struct {
	Ref string
}

func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("price reference %s not found at gateway", e.Ref)
}

// GatewayTransientError wraps a retryable gateway failure (network, rate
// limit, 5xx, caller timeout).
type GatewayTransientError struct {
	Err error
}

func (e *GatewayTransientError) Error() string {
	return "transient gateway error: " + e.Err.Error()
}

func (e *GatewayTransientError) Unwrap() error {
	return e.Err
}

// StateError rejects an operation because the record is not in a state that
// allows it, e.g. retrying payment on a request that is no longer
// pending_payment.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func IsTransient(err error) bool {
	var transient *GatewayTransientError
	return errors.As(err, &transient)
}

// HTTPStatus maps a domain error onto the response status the API layer
// should use.
func HTTPStatus(err error) int {
	var (
		validation ValidationErrors
		authReq    *AuthRequiredError
		notFound   *NotFoundError
		state      *StateError
		config     *ConfigurationError
		price      *PriceNotFoundError
		transient  *GatewayTransientError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &authReq):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &state):
		return http.StatusConflict
	case errors.As(err, &config), errors.As(err, &price):
		return http.StatusInternalServerError
	case errors.As(err, &transient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage hides configuration detail behind a generic support message;
// everything else is safe to echo.
func UserMessage(err error) string {
	var (
		config *ConfigurationError
		price  *PriceNotFoundError
	)
	if errors.As(err, &config) || errors.As(err, &price) {
		return "something went wrong on our side, please contact support"
	}
	if IsTransient(err) {
		return "payment provider is temporarily unavailable, please try again"
	}
	return err.Error()
}

func WrapError(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}
