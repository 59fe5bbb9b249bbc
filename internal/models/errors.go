package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrChatLocked is returned when a refresh is requested for a chat whose
// previous refresh is still in flight. Callers treat it as "try later",
// not as a failure.
var ErrChatLocked = errors.New("chat refresh already in progress")

// MissingResponseFieldError marks a response that came back without an error
// status but lacks a field we rely on. The full payload is kept so the
// operator report can show exactly what Twitch returned.
type MissingResponseFieldError struct {
	Payload []byte
	Field   string
}

func (e *MissingResponseFieldError) Error() string {
	return fmt.Sprintf("missing field %q in response: %s", e.Field, e.Payload)
}

// ValidationError marks a response telling us the token is no longer
// accepted. The caller is expected to force a token refresh.
type ValidationError struct {
	Response []byte
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("token was not accepted: %s", e.Response)
}

// RequestExhaustedError is returned once a single logical fetch has failed
// the maximum number of consecutive times.
type RequestExhaustedError struct {
	URL      string
	Attempts int
}

func (e *RequestExhaustedError) Error() string {
	return fmt.Sprintf("request to %s abandoned after %d failed attempts", e.URL, e.Attempts)
}

// ResponseStatus is the error envelope Twitch embeds in JSON bodies.
// A successful helix response never carries a status field.
type ResponseStatus struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
