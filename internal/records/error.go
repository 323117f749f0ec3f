package records

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// -- Transport --
	ErrUnavailable = errors.New("record store unreachable")

	// -- Resource State --
	ErrNotFound = errors.New("record not found")

	// -- Authentication --
	ErrAuthFailed = errors.New("record store authentication failed")
)

// APIError is a non-2xx response from the record store.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("record store error (%d): %s", e.Status, e.Message)
}

// Is maps well-known statuses onto the package sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrAuthFailed:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}
