package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownLeague is returned for a league slug outside the catalog.
var ErrUnknownLeague = errors.New("unknown league")

// NetworkError means the football API could not be reached: the request failed in
// transport, timed out, or the circuit breaker is open.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("football API %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) UserMessage() string {
	return "Unable to reach the football data service. Check your connection and try again."
}

// HTTPError is a non-2xx answer from the football API.
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("football API %s returned status %d", e.Endpoint, e.StatusCode)
}

func (e *HTTPError) UserMessage() string {
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return "The football data service is temporarily unavailable. Please try again later."
	case http.StatusTooManyRequests:
		return "Too many requests to the football data service. Please wait a minute and try again."
	case http.StatusNotFound:
		return "The requested data was not found."
	default:
		return fmt.Sprintf("The football data service returned an error (status %d).", e.StatusCode)
	}
}

// UserMessage returns the message to show for err.
func UserMessage(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.UserMessage()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.UserMessage()
	}
	if errors.Is(err, ErrUnknownLeague) {
		return "Unknown league."
	}
	return "Failed to load football data."
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
