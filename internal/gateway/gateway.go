// internal/gateway/gateway.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"nutrilens/internal/schema"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 5 * time.Second
)

// InlineMedia is raw media sent alongside the prompt.
type InlineMedia struct {
	Data     []byte
	MIMEType string
}

// Request is one logical generation request.
type Request struct {
	Prompt string
	Media  *InlineMedia
	// UnrecognizedMessage is shown when the reply reports no recognizable
	// subject. Empty means the photo wording.
	UnrecognizedMessage string
}

// Multimodal reports whether the request carries media.
func (r Request) Multimodal() bool {
	return r.Media != nil && len(r.Media.Data) > 0
}

// Transport performs the provider call and returns the model's raw text.
type Transport interface {
	Send(ctx context.Context, req Request) (string, error)
}

// Record is a normalized, schema-complete result.
type Record map[string]any

// Gateway wraps a Transport with retry, response cleaning and schema
// coercion. It holds no per-call state and is safe for concurrent use.
type Gateway struct {
	transport  Transport
	maxRetries int
	baseDelay  time.Duration
	log        *zap.SugaredLogger
}

type Option func(*Gateway)

// WithMaxRetries sets how many retries follow the first attempt.
func WithMaxRetries(n int) Option {
	return func(g *Gateway) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// WithBaseDelay sets the wait before the first retry; later waits double.
func WithBaseDelay(d time.Duration) Option {
	return func(g *Gateway) {
		if d >= 0 {
			g.baseDelay = d
		}
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

func New(transport Transport, opts ...Option) *Gateway {
	g := &Gateway{
		transport:  transport,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke sends req, retrying rate-limit and network failures with
// exponential backoff, and coerces the reply into s. It returns either a
// complete Record or an *Error (or the context's error if ctx ends first).
func (g *Gateway) Invoke(ctx context.Context, req Request, s *schema.Schema) (Record, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	text, attempts, err := g.send(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("invocation abandoned after %d attempts: %w", attempts, ctxErr)
		}
		return nil, terminalError(err, attempts)
	}

	obj, err := schema.Parse(CleanResponse(text))
	if err != nil {
		g.log.Warnw("model reply is not a JSON object", "schema", s.Name, "error", err, "reply", truncate(text, 200))
		return nil, &Error{Kind: KindMalformedResponse, Message: msgMalformed, Attempts: attempts, Err: err}
	}

	if s.MatchesSentinel(obj) {
		msg := req.UnrecognizedMessage
		if msg == "" {
			msg = msgUnrecognized
		}
		return nil, &Error{Kind: KindUnrecognizedSubject, Message: msg, Attempts: attempts}
	}

	return Record(s.Coerce(obj)), nil
}

// send runs the attempt loop and returns the raw reply and the number of
// attempts made.
func (g *Gateway) send(ctx context.Context, req Request) (string, int, error) {
	var (
		text     string
		attempts int
	)

	operation := func() error {
		attempts++
		reply, err := g.transport.Send(ctx, req)
		if err != nil {
			if ctx.Err() != nil || !Classify(err).Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		text = reply
		return nil
	}

	notify := func(err error, wait time.Duration) {
		g.log.Warnw("AI call failed, backing off",
			"attempt", attempts,
			"class", Classify(err).String(),
			"wait", wait,
			"error", err)
	}

	err := backoff.RetryNotify(operation, g.policy(ctx), notify)
	return text, attempts, err
}

// policy waits baseDelay * 2^attempt between attempts, without jitter, and
// gives up after maxRetries retries.
func (g *Gateway) policy(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = g.baseDelay
	expo.RandomizationFactor = 0
	expo.Multiplier = 2
	expo.MaxInterval = maxInterval(g.baseDelay, g.maxRetries)
	expo.MaxElapsedTime = 0
	expo.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(g.maxRetries)), ctx)
}

// maxInterval is the longest wait, baseDelay << retries, saturating at the
// largest Duration instead of overflowing.
func maxInterval(base time.Duration, retries int) time.Duration {
	if base <= 0 {
		return 0
	}
	if retries >= 63 || base > time.Duration(math.MaxInt64>>uint(retries)) {
		return time.Duration(math.MaxInt64)
	}
	return base << uint(retries)
}

func terminalError(err error, attempts int) *Error {
	switch Classify(err) {
	case RateLimited:
		return &Error{Kind: KindRateLimitExceeded, Message: msgRateLimited, Attempts: attempts, Err: err}
	case NetworkUnreachable:
		return &Error{Kind: KindUpstreamUnreachable, Message: msgUnreachable, Attempts: attempts, Err: err}
	default:
		return &Error{Kind: KindUpstreamError, Message: upstreamMessage(err), Attempts: attempts, Err: err}
	}
}

func upstreamMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return err.Error()
}

// InvokeInto invokes g and decodes the normalized record into a T.
func InvokeInto[T any](ctx context.Context, g *Gateway, req Request, s *schema.Schema) (*T, error) {
	record, err := g.Invoke(ctx, req, s)
	if err != nil {
		return nil, err
	}

	// the record is complete and well-typed, so this cannot lose data
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", s.Name, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", s.Name, err)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
