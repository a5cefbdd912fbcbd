package clients

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hodlboard/hodlboard/internal/domain"
	"github.com/hodlboard/hodlboard/pkg/retrier"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTimeout = 15 * time.Second

// Header is a single HTTP header to attach to a request.
type Header struct {
	Key   string
	Value string
}

// RESTClient is a rate-limited HTTP transport shared by all exchange and
// explorer clients. Responses are classified into the error types of the
// domain package: 401/403 become AuthError, 429 becomes RateLimitError and
// other failures become TransportError. Network failures, 5xx and 429 are
// retried with backoff, everything else returns immediately.
type RESTClient struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	retry   *retrier.Retrier
	timeout time.Duration
	source  string
	logger  *zap.Logger
}

// NewRESTClient builds a transport for one upstream source. rps caps the
// request rate towards that source.
func NewRESTClient(source string, rps float64, logger *zap.Logger) *RESTClient {
	return &RESTClient{
		client:  &fasthttp.Client{},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry: retrier.New(
			retrier.WithInitialInterval(500*time.Millisecond),
			retrier.WithMaxRetries(3),
		),
		timeout: defaultTimeout,
		source:  source,
		logger:  logger.Named(source),
	}
}

// Do executes one HTTP request and returns the response body.
func (c *RESTClient) Do(ctx context.Context, method, url string, body []byte, headers ...Header) ([]byte, error) {
	var permanent error
	out, err := retrier.DoWithData(c.retry, ctx, func(ctx context.Context) ([]byte, error) {
		b, e := c.do(ctx, method, url, body, headers)
		if e != nil && !retryable(e) {
			permanent = e
			return nil, nil
		}
		return b, e
	})
	if permanent != nil {
		return nil, permanent
	}
	return out, err
}

// Get executes a GET request and unmarshals the JSON response into dst.
func (c *RESTClient) Get(ctx context.Context, url string, dst any, headers ...Header) error {
	body, err := c.Do(ctx, fasthttp.MethodGet, url, nil, headers...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", url)
	}
	return nil
}

func (c *RESTClient) do(ctx context.Context, method, url string, body []byte, headers []Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Warn("request failed", zap.String("url", url), zap.Error(err))
		return nil, &domain.TransportError{Endpoint: url, Err: err}
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return nil, &domain.AuthError{Source: c.source, Err: errors.Errorf("status %d: %s", status, resp.Body())}
	case status == fasthttp.StatusTooManyRequests:
		retryAfter, _ := time.ParseDuration(string(resp.Header.Peek(fasthttp.HeaderRetryAfter)) + "s")
		return nil, &domain.RateLimitError{Source: c.source, RetryAfter: retryAfter}
	case status < 200 || status > 299:
		c.logger.Warn("unexpected status", zap.String("url", url), zap.Int("status", status))
		return nil, &domain.TransportError{
			Endpoint: url,
			Status:   status,
			Err:      errors.Errorf("unexpected status %d: %s", status, resp.Body()),
		}
	}

	return append([]byte(nil), resp.Body()...), nil
}

func retryable(err error) bool {
	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var tr *domain.TransportError
	if errors.As(err, &tr) {
		return tr.Status == 0 || tr.Status >= 500
	}
	return false
}
