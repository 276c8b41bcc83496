package permissions

import "net/http"

// Messages surfaced to callers when derivation fails.
const (
	MsgMissingToken      = "Access token is missing!"
	MsgUnknownUser       = "Unauthorized: user could not be resolved"
	MsgNoAssociatedOrg   = "Unable to find associated org for the request"
	MsgClientNotInOrg    = "Client not found in the organization"
	MsgMissingIdentifier = "Required details for look up are missing"
)

// Error is a terminal derivation failure. Status mirrors the code field of
// the JSON error body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewUnauthorized creates a 401 derivation error.
func NewUnauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NewConflict creates a 409 derivation error.
func NewConflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// NewBadRequest creates a 400 derivation error.
func NewBadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}
