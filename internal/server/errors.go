// internal/server/errors.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"nutrilens/internal/foodfacts"
	"nutrilens/internal/gateway"
	"nutrilens/internal/nutrition"
	"nutrilens/internal/storage"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// requestError marks a client mistake caught during validation.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

func badRequestf(format string, args ...interface{}) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

// statusFor maps an error to its HTTP status, its machine-readable code and
// the message shown to the caller.
func statusFor(err error) (int, string, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "invalid_request", reqErr.Error()
	case errors.Is(err, nutrition.ErrEmptyImage), errors.Is(err, foodfacts.ErrInvalidBarcode):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, storage.ErrMealNotFound), errors.Is(err, foodfacts.ErrProductNotFound):
		return http.StatusNotFound, "not_found", rootMessage(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "The request took too long. Please try again."
	case errors.Is(err, context.Canceled):
		// nginx's convention for a client that went away
		return 499, "canceled", "request canceled"
	}

	switch kind := gateway.KindOf(err); kind {
	case gateway.KindRateLimitExceeded:
		return http.StatusTooManyRequests, kind.String(), gateway.UserMessage(err)
	case gateway.KindUpstreamUnreachable:
		return http.StatusServiceUnavailable, kind.String(), gateway.UserMessage(err)
	case gateway.KindUpstreamError, gateway.KindMalformedResponse:
		return http.StatusBadGateway, kind.String(), gateway.UserMessage(err)
	case gateway.KindUnrecognizedSubject:
		return http.StatusUnprocessableEntity, kind.String(), gateway.UserMessage(err)
	}

	return http.StatusInternalServerError, "internal_error", "internal server error"
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func (s *NutriLensServer) writeError(w http.ResponseWriter, err error, keysAndValues ...interface{}) {
	status, code, msg := statusFor(err)
	fields := append([]interface{}{"status", status, "code", code, "error", err}, keysAndValues...)
	if status >= http.StatusInternalServerError {
		s.log.Errorw("request failed", fields...)
	} else {
		s.log.Warnw("request rejected", fields...)
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}
