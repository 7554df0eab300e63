package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/httputil"
	"github.com/matzehuels/fusiongraph/pkg/observability"
)

// DefaultEndpoint is the manufacturing data model GraphQL endpoint.
const DefaultEndpoint = "https://developer.api.autodesk.com/mfg/graphql"

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = time.Second
	maxErrorBody      = 512
)

// Options configures a [Client]. The zero value is usable: no auth, no rate
// limit, a single attempt per request.
type Options struct {
	HTTPClient *http.Client       // defaults to a client with a 30s timeout
	Tokens     oauth2.TokenSource // adds an Authorization header when set
	Headers    map[string]string  // sent with every request

	// RequestsPerSecond limits the request rate. Zero disables limiting.
	RequestsPerSecond float64

	// Retries is the number of additional attempts for queries after a
	// transient failure. Mutations are never retried.
	Retries    int
	RetryDelay time.Duration
}

// Client sends GraphQL requests over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
	tokens   oauth2.TokenSource
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
}

// New creates a client for endpoint. An empty endpoint selects [DefaultEndpoint].
func New(endpoint string, opts Options) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     opts.HTTPClient,
		headers:  opts.Headers,
		tokens:   opts.Tokens,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		attempts: max(opts.Retries, 0) + 1,
		delay:    opts.RetryDelay,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	if c.delay <= 0 {
		c.delay = defaultRetryDelay
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Token returns a current access token, or nil if the client is unauthenticated.
// Download helpers use it to authorize signed URL fetches.
func (c *Client) Token() (*oauth2.Token, error) {
	if c.tokens == nil {
		return nil, nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, err, "obtain access token")
	}
	return tok, nil
}

// Do sends req and decodes the data member of the response into out.
// out may be nil when the caller only cares about success.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	attempts := c.attempts
	if req.Mutation() {
		attempts = 1
	}
	return httputil.Retry(ctx, attempts, c.delay, func() error {
		return c.do(ctx, req, out)
	})
}

func (c *Client) do(ctx context.Context, req *Request, out any) (err error) {
	op := req.OperationName
	hooks := observability.GraphQL()
	hooks.OnRequest(ctx, op)
	start := time.Now()
	status := 0
	defer func() { hooks.OnResponse(ctx, op, status, time.Since(start), err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode %s", op)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build %s request", op)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	tok, err := c.Token()
	if err != nil {
		return err
	}
	if tok != nil {
		tok.SetAuthHeader(httpReq)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeNetwork, httputil.Retryable(err), "%s", op)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedResponse, err, "%s: decode response", op)
	}
	if len(envelope.Errors) > 0 {
		return errors.Wrap(errors.ErrCodeGraphQL, envelope.Errors, "%s", op)
	}
	if isNull(envelope.Data) {
		return errors.New(errors.ErrCodeMalformedResponse, "%s: response has no data", op)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedResponse, err, "%s: decode data", op)
	}
	return nil
}

func checkStatus(op string, resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "%s: status %d: %s", op, code, snippet(resp.Body))
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: endpoint not found", op)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return errors.Wrap(errors.ErrCodeRateLimited,
			httputil.Retryable(&errors.RateLimitedError{RetryAfter: retryAfter}), "%s", op)
	case code >= 500:
		return errors.Wrap(errors.ErrCodeNetwork, httputil.Retryable(fmt.Errorf("status %d", code)), "%s", op)
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d: %s", op, code, snippet(resp.Body))
	}
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(bytes.TrimSpace(b))
}
