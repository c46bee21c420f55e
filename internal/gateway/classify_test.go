package gateway

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	. "github.com/onsi/gomega"
)

func TestClassify(t *testing.T) {
	RegisterTestingT(t)

	cases := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, Fatal},
		{"status 429", &StatusError{Code: 429}, RateLimited},
		{"wrapped status 429", fmt.Errorf("call failed: %w", &StatusError{Code: 429}), RateLimited},
		{"status 401", &StatusError{Code: 401, Message: "quota project not set"}, Fatal},
		{"status 400", &StatusError{Code: 400}, Fatal},
		{"status 500", &StatusError{Code: 500}, Fatal},
		{"message 429", errors.New("[GoogleGenerativeAI Error]: [429 Too Many Requests]"), RateLimited},
		{"message quota", errors.New("Quota exceeded for metric"), RateLimited},
		{"message too many requests", errors.New("Too Many Requests"), RateLimited},
		{"message resource exhausted", errors.New("RESOURCE_EXHAUSTED"), RateLimited},
		{"dns", &net.DNSError{Err: "no such host", Name: "example.invalid", IsNotFound: true}, NetworkUnreachable},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, NetworkUnreachable},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), NetworkUnreachable},
		{"message enotfound", errors.New("getaddrinfo ENOTFOUND api.example.com"), NetworkUnreachable},
		{"message fetch failed", errors.New("TypeError: fetch failed"), NetworkUnreachable},
		{"client timeout", &url.Error{Op: "Post", URL: "https://example.invalid", Err: timeoutError{}}, NetworkUnreachable},
		{"auth", errors.New("API key not valid. Please pass a valid API key."), Fatal},
		{"other", errors.New("something odd"), Fatal},
	}

	for _, tc := range cases {
		Expect(Classify(tc.err)).To(Equal(tc.want), tc.name)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "Client.Timeout exceeded while awaiting headers" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassRetryable(t *testing.T) {
	RegisterTestingT(t)

	Expect(RateLimited.Retryable()).To(BeTrue())
	Expect(NetworkUnreachable.Retryable()).To(BeTrue())
	Expect(Fatal.Retryable()).To(BeFalse())
}

func TestCleanResponse(t *testing.T) {
	RegisterTestingT(t)

	cases := map[string]string{
		"{\"a\":1}":                         "{\"a\":1}",
		"  {\"a\":1}\n":                     "{\"a\":1}",
		"```json\n{\"a\":1}\n```":           "{\"a\":1}",
		"```\n{\"a\":1}\n```":               "{\"a\":1}",
		"\n\n```json {\"a\":1} ```\n":       "{\"a\":1}",
		"```javascript\n{\"a\":1}```":       "{\"a\":1}",
		"```json\n{\"a\":1}":                "{\"a\":1}",
		"not json at all":                   "not json at all",
		"```json\n{\"s\":\"```x```\"}\n```": "{\"s\":\"```x```\"}",
	}
	for in, want := range cases {
		Expect(CleanResponse(in)).To(Equal(want), in)
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	RegisterTestingT(t)

	err := fmt.Errorf("analyze: %w", &Error{Kind: KindRateLimitExceeded, Message: msgRateLimited})
	Expect(errors.Is(err, ErrRateLimitExceeded)).To(BeTrue())
	Expect(errors.Is(err, ErrUpstreamError)).To(BeFalse())
	Expect(KindOf(err)).To(Equal(KindRateLimitExceeded))
	Expect(KindOf(errors.New("plain"))).To(BeZero())
	Expect(UserMessage(errors.New("plain"))).To(ContainSubstring("try again"))
	Expect(KindUnrecognizedSubject.String()).To(Equal("unrecognized_subject"))
}
