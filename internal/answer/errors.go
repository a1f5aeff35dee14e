package answer

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when the service answers 200 without a usable body.
var ErrMalformedResponse = errors.New("invalid or missing response from API")

// StatusError is returned when the answer service replies with anything but 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.Code)
}

// StatusCode returns the HTTP status the service replied with.
func (e *StatusError) StatusCode() int {
	return e.Code
}
