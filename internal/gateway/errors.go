// internal/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
)

// Kind identifies a terminal gateway failure.
type Kind int

const (
	KindRateLimitExceeded Kind = iota + 1
	KindUpstreamUnreachable
	KindUpstreamError
	KindMalformedResponse
	KindUnrecognizedSubject
)

func (k Kind) String() string {
	switch k {
	case KindRateLimitExceeded:
		return "rate_limit_exceeded"
	case KindUpstreamUnreachable:
		return "upstream_unreachable"
	case KindUpstreamError:
		return "upstream_error"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUnrecognizedSubject:
		return "unrecognized_subject"
	default:
		return "unknown"
	}
}

// Error is the only failure type Invoke returns besides context errors.
// Message is safe to show to end users.
type Error struct {
	Kind     Kind
	Message  string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrRateLimitExceeded   = &Error{Kind: KindRateLimitExceeded}
	ErrUpstreamUnreachable = &Error{Kind: KindUpstreamUnreachable}
	ErrUpstreamError       = &Error{Kind: KindUpstreamError}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
	ErrUnrecognizedSubject = &Error{Kind: KindUnrecognizedSubject}

	ErrEmptyPrompt = errors.New("prompt must not be empty")
)

const (
	msgRateLimited  = "The AI service is busy right now. Please wait a moment and try again."
	msgUnreachable  = "Unable to reach the AI service. Please check your internet connection and try again."
	msgMalformed    = "The AI service returned a response that could not be read. Please try again."
	msgUnrecognized = "Could not recognize anything in the image. Please try a clearer photo."
)

// StatusError is returned by transports when the provider reports an HTTP
// status. Classify prefers it over message matching.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Code, e.Message)
}

// KindOf returns the Kind of a gateway error, or 0 when err is not one.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// UserMessage returns the display text for err. Errors that did not come
// from the gateway get a generic sentence.
func UserMessage(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return "Something went wrong while contacting the AI service. Please try again."
}
