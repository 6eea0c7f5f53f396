package youtube

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindQuotaExceeded means the daily budget is spent, locally or as
	// reported by the provider. Stop spending, do not retry.
	KindQuotaExceeded ErrorKind = iota
	// KindInvalidRequest is a malformed call. Skip the item, do not retry.
	KindInvalidRequest
	// KindAuthFailure is a bad or revoked API key. Fatal until the
	// configuration is fixed.
	KindAuthFailure
	// KindTransient covers network failures, timeouts and unexpected
	// provider responses. Callers may retry later; this client does not.
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindInvalidRequest:
		return "invalid_request"
	case KindAuthFailure:
		return "auth_failure"
	default:
		return "transient"
	}
}

type APIError struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("youtube %s: %s (HTTP %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("youtube %s: %s: %s", e.Op, e.Kind, e.Message)
}

func classifyStatus(op string, status int, message string) *APIError {
	kind := KindTransient
	switch status {
	case 403:
		kind = KindQuotaExceeded
	case 400:
		kind = KindInvalidRequest
	case 401:
		kind = KindAuthFailure
	}
	return &APIError{Kind: kind, Op: op, StatusCode: status, Message: message}
}

func IsQuotaExceeded(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindQuotaExceeded
}

func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuthFailure
}
