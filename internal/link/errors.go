package link

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrMalformedLink       = errors.New("malformed link")
)

// Kind classifies why a link was dropped.
type Kind int

const (
	KindUnsupportedProtocol Kind = iota + 1
	KindMalformedLink
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedProtocol:
		return "unsupported_protocol"
	case KindMalformedLink:
		return "malformed_link"
	default:
		return "unknown"
	}
}

// DecodeError describes a link that could not be turned into a Proxy.
// It matches ErrUnsupportedProtocol or ErrMalformedLink with errors.Is.
type DecodeError struct {
	Kind   Kind
	Scheme string
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	if e.Scheme != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Scheme, e.Kind, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrUnsupportedProtocol:
		return e.Kind == KindUnsupportedProtocol
	case ErrMalformedLink:
		return e.Kind == KindMalformedLink
	}
	return false
}

func malformed(scheme, reason string, cause error) error {
	return &DecodeError{Kind: KindMalformedLink, Scheme: scheme, Reason: reason, Cause: cause}
}

func unsupported(scheme string) error {
	return &DecodeError{Kind: KindUnsupportedProtocol, Scheme: scheme, Reason: "scheme not recognized"}
}
