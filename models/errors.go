package models

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies failures for the user-facing error taxonomy
type Kind string

const (
	KindUnknown             Kind = "unknown"
	KindUnauthenticated     Kind = "unauthenticated"
	KindNotFound            Kind = "not_found"
	KindPermissionDenied    Kind = "permission_denied"
	KindConflict            Kind = "conflict"
	KindRateLimited         Kind = "rate_limited"
	KindTransport           Kind = "transport"
	KindProviderPolicyBlock Kind = "provider_policy_block"
	KindValidation          Kind = "validation"
	KindBusy                Kind = "busy"
	KindConfiguration       Kind = "configuration"
)

// Numeric classification codes carried by RemoteError
const (
	CodeBadRequest       = 400
	CodeUnauthenticated  = 401
	CodePermissionDenied = 403
	CodeNotFound         = 404
	CodeConflict         = 409
	CodeRateLimited      = 429
	CodeInternal         = 500
	CodeUnavailable      = 503
)

// Remote error types the profile flow branches on
const (
	TypeDocumentNotFound   = "document_not_found"
	TypeCollectionNotFound = "collection_not_found"
)

// RemoteError is a failure reported by a remote gateway. Callers branch on Code.
type RemoteError struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// NewRemoteError creates a remote error wrapping an optional cause
func NewRemoteError(code int, typ, message string, cause error) *RemoteError {
	return &RemoteError{Code: code, Type: typ, Message: message, Err: cause}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ValidationError is a local, pre-network input failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DisplayError carries the message shown to the user for a wrapped failure
type DisplayError struct {
	Message string
	Err     error
}

func (e *DisplayError) Error() string { return e.Message }
func (e *DisplayError) Unwrap() error { return e.Err }

// KindError tags an error with a kind without changing its message
type KindError struct {
	Kind Kind
	Err  error
}

func (e *KindError) Error() string { return e.Err.Error() }
func (e *KindError) Unwrap() error { return e.Err }

// WithKind tags err so KindOf reports k
func WithKind(k Kind, err error) error {
	return &KindError{Kind: k, Err: err}
}

// KindOf classifies err into the taxonomy
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var kindErr *KindError
	if errors.As(err, &kindErr) {
		return kindErr.Kind
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		switch remoteErr.Code {
		case CodeUnauthenticated:
			return KindUnauthenticated
		case CodePermissionDenied:
			return KindPermissionDenied
		case CodeNotFound:
			return KindNotFound
		case CodeConflict:
			return KindConflict
		case CodeRateLimited:
			return KindRateLimited
		case CodeUnavailable:
			return KindTransport
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}

	return KindUnknown
}

// Message returns the human-readable part of err, without remote codes
func Message(err error) string {
	var displayErr *DisplayError
	if errors.As(err, &displayErr) {
		return displayErr.Message
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return err.Error()
}
