// Package confluence talks to the Confluence Cloud REST API: it discovers the
// pages under a decision log root and fetches their storage-format bodies.
package confluence

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/decisync/internal/model"
	"github.com/ppiankov/decisync/internal/worker"
	"go.uber.org/zap"
)

// ErrMissingCredentials is returned before any request when no credential is set
var ErrMissingCredentials = errors.New("CONFLUENCE_EMAIL and CONFLUENCE_API_TOKEN must be set")

// retryWait pauses between retries and gives up early when ctx is done
// (injectable for tests)
var retryWait = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// maxErrorBody bounds the response excerpt kept in a StatusError
const maxErrorBody = 512

// Credentials carries the two secrets used to authenticate, or a
// pre-assembled Authorization header value
type Credentials struct {
	Email  string
	Token  string
	Header string
}

// AuthorizationHeader returns the Authorization header value
func (c Credentials) AuthorizationHeader() (string, error) {
	if h := strings.TrimSpace(c.Header); h != "" {
		return h, nil
	}
	if c.Email == "" || c.Token == "" {
		return "", ErrMissingCredentials
	}
	raw := base64.StdEncoding.EncodeToString([]byte(c.Email + ":" + c.Token))
	return "Basic " + raw, nil
}

// StatusError is a non-success HTTP response
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.Code, e.Op, e.Body)
}

// Client is a minimal Confluence REST client
type Client struct {
	baseURL    string
	httpClient *http.Client
	authHeader string
	userAgent  string
	maxBytes   int64
	pageType   string
	pageSize   int
	retries    int
	backoff    time.Duration
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// NewClient creates a client from the run configuration.
// limiter may be nil to disable client-side rate limiting.
func NewClient(cfg *model.Config, creds Credentials, limiter *worker.Limiter, logger *zap.Logger) (*Client, error) {
	auth, err := creds.AuthorizationHeader()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Confluence.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		authHeader: auth,
		userAgent:  cfg.HTTP.UserAgent,
		maxBytes:   cfg.HTTP.MaxBodyBytes,
		pageType:   cfg.Confluence.PageType,
		pageSize:   cfg.Confluence.PageSize,
		retries:    cfg.HTTP.Retries,
		backoff:    cfg.HTTP.RetryBackoff,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// proxyFunc uses explicit proxy URLs when given and the environment otherwise
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// getJSON issues a GET and decodes the JSON response into out.
// Retries only happen when configured and are always logged.
func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			if waitErr := retryWait(ctx, c.backoff); waitErr != nil {
				return fmt.Errorf("%s: %w", op, waitErr)
			}
		}

		err = c.doGet(ctx, op, rawURL, out)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return err
}

func (c *Client) doGet(ctx context.Context, op, rawURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("GET", zap.String("url", rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		body = io.LimitReader(resp.Body, c.maxBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// isRetryable reports whether a failed request is worth repeating
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
