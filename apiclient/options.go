package apiclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-blog-client/token/refresh"
)

type Option func(*Client)

// WithTransport replaces the base transport under the middleware chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit caps outbound requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithOnSessionExpired is called once per failed refresh, after the session
// has been cleared, with the route the user should sign in at.
func WithOnSessionExpired(fn refresh.ExpiredFunc) Option {
	return func(c *Client) { c.onExpired = fn }
}

func WithLoginRoute(route string) Option {
	return func(c *Client) { c.loginRoute = route }
}

func WithRefreshSkew(d time.Duration) Option {
	return func(c *Client) { c.skew = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}
