package dogapi

import (
	"errors"
	"fmt"
)

var (
	// ErrBreedListUnavailable is returned by RandomDogByBreed when the breed
	// list itself cannot be fetched, so the breed cannot be checked.
	ErrBreedListUnavailable = errors.New("dogapi: breed list unavailable")

	// ErrInvalidPayload is returned when an upstream response does not have
	// the expected {message, status} shape.
	ErrInvalidPayload = errors.New("dogapi: invalid upstream payload")
)

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("dogapi: GET %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("dogapi: GET %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}
