package models

// Identity is the authenticated-session snapshot the auth provider exposes.
// A nil *Identity means the caller is anonymous.
type Identity struct {
	UserID          string `json:"user_id"`
	ProfileID       string `json:"profile_id"`
	Email           string `json:"email"`
	ProfileComplete bool   `json:"profile_complete"`
	// CustomerRef is the payment-profile reference previously created at the
	// gateway for this identity, if any.
	CustomerRef string `json:"customer_ref,omitempty"`
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.ProfileID != ""
}
