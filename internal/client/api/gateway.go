package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/PlantCare/internal/metrics"
	"github.com/atinyakov/PlantCare/internal/retry"
)

// Gateway retry defaults.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Credentials supplies the default request headers, including
// Authorization, and can renew them.
type Credentials interface {
	Headers(ctx context.Context) (http.Header, error)
	Refresh(ctx context.Context) error
}

// Gateway is the single path for outbound API calls. Every response goes
// through Normalize; transport failures become 500-class results.
type Gateway struct {
	baseURL string
	client  *http.Client
	creds   Credentials
	log     *zap.Logger

	// Attempts bounds calls per request when the server answers 401.
	Attempts int
	// Delay is slept between attempts.
	Delay time.Duration
}

// NewGateway builds a gateway for the API rooted at baseURL. creds may be
// nil for anonymous use.
func NewGateway(baseURL string, client *http.Client, creds Credentials, log *zap.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		creds:    creds,
		log:      log,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Option customizes a single gateway call.
type Option func(*callOptions)

type callOptions struct {
	body   any
	query  url.Values
	header http.Header
	noAuth bool
}

// WithJSON sends v as the JSON request body.
func WithJSON(v any) Option {
	return func(o *callOptions) { o.body = v }
}

// WithQuery adds query parameters.
func WithQuery(q url.Values) Option {
	return func(o *callOptions) { o.query = q }
}

// WithHeader sets a request header. Caller headers override the defaults;
// a caller Authorization header also disables refresh-and-retry.
func WithHeader(key, value string) Option {
	return func(o *callOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header.Set(key, value)
	}
}

// NoAuth skips the default credential and the refresh-and-retry cycle, for
// endpoints that establish a session.
func NoAuth() Option {
	return func(o *callOptions) { o.noAuth = true }
}

// authFailure carries a normalized 401 through the retry policy.
type authFailure struct{ res Result }

func (e *authFailure) Error() string { return e.res.Message }

// Do issues method path and returns the normalized result. On a 401 the
// credential is refreshed and the call repeated, up to Attempts calls.
func (g *Gateway) Do(ctx context.Context, method, path string, opts ...Option) Result {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	var body []byte
	if o.body != nil {
		b, err := json.Marshal(o.body)
		if err != nil {
			return failure(fmt.Errorf("encode request: %w", err))
		}
		body = b
	}

	if o.noAuth || g.creds == nil || o.header.Get("Authorization") != "" {
		return g.once(ctx, method, path, body, nil, o)
	}

	var res Result
	policy := retry.Policy{
		MaxAttempts: g.Attempts,
		Delay:       g.Delay,
		Retryable: func(err error) bool {
			var af *authFailure
			return errors.As(err, &af)
		},
		BeforeRetry: func(ctx context.Context, attempt int, err error) {
			g.log.Warn("request unauthorized, refreshing credential",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
			)
			metrics.RecordRetry("gateway")
			if rerr := g.creds.Refresh(ctx); rerr != nil {
				g.log.Warn("credential refresh failed", zap.Error(rerr))
			}
		},
	}
	err := policy.Do(ctx, func(ctx context.Context) error {
		defaults, err := g.creds.Headers(ctx)
		if err != nil {
			// No usable credential: report it instead of calling anonymously.
			res = Result{Status: http.StatusUnauthorized, Message: err.Error(), AuthError: true}
			return nil
		}
		res = g.once(ctx, method, path, body, defaults, o)
		if res.AuthError {
			return &authFailure{res: res}
		}
		return nil
	})

	var exhausted *retry.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		return Result{
			Status:    http.StatusUnauthorized,
			Message:   fmt.Sprintf("Authentication failed after %d retries", exhausted.Attempts),
			AuthError: true,
		}
	case err != nil:
		return failure(err)
	}
	return res
}

func (g *Gateway) once(ctx context.Context, method, path string, body []byte, defaults http.Header, o callOptions) Result {
	u := g.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(o.query) > 0 {
		u += "?" + o.query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range defaults {
		req.Header[k] = v
	}
	for k, v := range o.header {
		req.Header[k] = v
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return failure(err)
	}
	return Normalize(resp)
}
