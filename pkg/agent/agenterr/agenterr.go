package agenterr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failure into the closed taxonomy the error
// middleware renders from.
type Kind string

const (
	KindTimeout       Kind = "timeout"
	KindRateLimit     Kind = "rate_limit"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindServerError   Kind = "server_error"
	KindInputQuality  Kind = "input_quality"
	KindValidation    Kind = "validation"
	KindNetwork       Kind = "network"
)

// Retryable reports whether a retry chip should be offered for this kind.
// This flag entirely determines the chip set attached to an error message.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindRateLimit, KindServerError, KindNetwork:
		return true
	default:
		return false
	}
}

// Error is a classified agent failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Newf creates a classified error with a formatted cause.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a classification to an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Classify maps an arbitrary error onto the taxonomy. Already-classified
// errors keep their kind; everything unrecognized counts as server_error.
func Classify(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindServerError
}
