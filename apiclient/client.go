package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-blog-client/apimodel"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/token/refresh"
)

const (
	DefaultTimeout = 10 * time.Second
	RefreshPath    = "/auth/refresh"

	maxBodyBytes = 16 << 20
)

// Client talks to the blog API. Every request goes through the session
// interceptor: the bearer token is attached, a 401 is answered with a single
// shared refresh and one replay, and a failed refresh logs the user out.
type Client struct {
	baseURL    string
	store      sessions.Store
	manager    *refresh.Manager
	http       *http.Client
	raw        *http.Client
	base       http.RoundTripper
	limiter    *rate.Limiter
	logger     zerolog.Logger
	onExpired  refresh.ExpiredFunc
	loginRoute string
	skew       time.Duration
	timeout    time.Duration
	userAgent  string
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, store sessions.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[apiclient New] invalid base url %q", baseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("[apiclient New] nil session store")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		base:       http.DefaultTransport,
		logger:     log.Logger,
		loginRoute: "/login",
		skew:       30 * time.Second,
		timeout:    DefaultTimeout,
		userAgent:  "blogctl",
	}
	for _, opt := range opts {
		opt(c)
	}

	c.manager = refresh.NewManager(store, c,
		refresh.WithExpiredFunc(c.onExpired),
		refresh.WithLoginRoute(c.loginRoute),
		refresh.WithSkew(c.skew),
		refresh.WithLogger(c.logger),
	)

	// The refresh call itself bypasses the session interceptor.
	c.raw = &http.Client{
		Timeout: c.timeout,
		Transport: Chain(c.base,
			RequestIDMiddleware(),
			RateLimitMiddleware(c.limiter),
			LoggingMiddleware(c.logger),
		),
	}
	c.http = &http.Client{
		Timeout: c.timeout,
		Transport: Chain(c.base,
			RequestIDMiddleware(),
			SessionMiddleware(c.manager),
			RateLimitMiddleware(c.limiter),
			LoggingMiddleware(c.logger),
		),
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Sessions() sessions.Store {
	return c.store
}

// RefreshTokens exchanges a refresh token for a new pair. It implements
// refresh.Refresher.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*apimodel.TokenResponse, error) {
	body, err := json.Marshal(apimodel.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, RefreshPath, nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var tokens apimodel.TokenResponse
	if err := c.send(c.raw, req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Do sends a JSON request and decodes the envelope's data into out. body and
// out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errs.Wrapf(err, "[apiclient Do] encode %s %s", method, path)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, query, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(c.http, req, out)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errs.Wrapf(err, "[apiclient] build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) send(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		if errs.Is(err, ErrSessionExpired) || errs.Is(err, context.Canceled) || errs.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

// decode unwraps the response envelope. Non-2xx statuses and envelopes with
// success=false become *APIError, whether or not out is nil and whether or
// not the envelope carries an error object.
func decode(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	var env apimodel.Envelope[json.RawMessage]
	jsonErr := json.Unmarshal(raw, &env)
	failed := resp.StatusCode >= http.StatusBadRequest

	if failed || (jsonErr == nil && !env.Success && (env.Error != nil || hasSuccessField(raw))) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr == nil {
			apiErr.Message = env.Message
			if env.Error != nil {
				apiErr.Code = env.Error.Code
				if env.Error.Message != "" {
					apiErr.Message = env.Error.Message
				}
				apiErr.FieldErrors = env.Error.FieldErrors
			}
		}
		if !failed {
			return fmt.Errorf("%w: %w", apimodel.ErrEnvelopeFailure, apiErr)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if jsonErr != nil {
		return fmt.Errorf("%w: %w", errs.ErrUnexpectedBody, jsonErr)
	}
	if !hasSuccessField(raw) {
		// A few endpoints (file upload) answer with the bare object.
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrUnexpectedBody, err)
		}
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return apimodel.ErrEmptyEnvelope
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUnexpectedBody, err)
	}
	return nil
}

func hasSuccessField(raw []byte) bool {
	var head struct {
		Success *bool `json:"success"`
	}
	return json.Unmarshal(raw, &head) == nil && head.Success != nil
}
