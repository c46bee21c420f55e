// internal/gateway/classify.go
package gateway

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Class is the retry classification of a transport failure.
type Class int

const (
	Fatal Class = iota
	RateLimited
	NetworkUnreachable
)

func (c Class) String() string {
	switch c {
	case RateLimited:
		return "rate_limited"
	case NetworkUnreachable:
		return "network_unreachable"
	default:
		return "fatal"
	}
}

// Retryable reports whether a failure of this class is worth another attempt.
func (c Class) Retryable() bool {
	return c == RateLimited || c == NetworkUnreachable
}

var (
	rateLimitMarkers = []string{
		"429",
		"quota",
		"too many requests",
		"rate limit",
		"resource_exhausted",
		"resource exhausted",
	}
	networkMarkers = []string{
		"enotfound",
		"econnrefused",
		"econnreset",
		"etimedout",
		"no such host",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"fetch failed",
	}
)

// Classify sorts a transport error into a retry class. Structured status
// codes win; message matching only applies when no status is available.
func Classify(err error) Class {
	if err == nil {
		return Fatal
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusTooManyRequests {
			return RateLimited
		}
		return Fatal
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkUnreachable
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return NetworkUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return NetworkUnreachable
	}
	// covers http.Client.Timeout, which the caller's context does not see
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetworkUnreachable
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return RateLimited
		}
	}
	for _, marker := range networkMarkers {
		if strings.Contains(msg, marker) {
			return NetworkUnreachable
		}
	}
	return Fatal
}
