// internal/clients/errors.go
package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors for the outcomes the sync engine reacts to. Everything
// else coming out of a client is treated as transient and left to the
// natural retry mechanism (webhook redelivery, next cron tick).
var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("authority rejected credentials")
	ErrDuplicate    = errors.New("duplicate record")
)

// StatusError wraps an unexpected HTTP status from an upstream.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Body)
}

// classifyStatus maps an HTTP status to the error taxonomy.
func classifyStatus(service string, status int, body string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", service, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", service, ErrUnauthorized)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", service, ErrDuplicate)
	default:
		return &StatusError{Service: service, Status: status, Body: body}
	}
}

// IsTransient reports whether an error is worth leaving to the trigger
// source's retry: timeouts, connection failures, and 5xx responses.
// Not-found, unauthorized, and duplicate outcomes are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrDuplicate) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= 500 || statusErr.Status == http.StatusTooManyRequests
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Unrecognized failures (decode errors, connection resets wrapped by
	// net/http) default to transient so a redelivery gets a second chance.
	return true
}
