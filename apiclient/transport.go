package apiclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/token/refresh"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base so that mw[0] sees the request first.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

type skipRefreshKey struct{}

// WithoutRefresh marks requests made with ctx so that a 401 is returned to
// the caller instead of triggering a refresh. Login and signup use it: a 401
// there means bad credentials, not an expired session.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipRefreshKey{}, true)
}

func skipRefresh(ctx context.Context) bool {
	v, _ := ctx.Value(skipRefreshKey{}).(bool)
	return v
}

// RequestIDMiddleware tags each logical request with an id. A replay keeps
// the id of the request it replays.
func RequestIDMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(HeaderRequestID) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(HeaderRequestID, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}

func RateLimitMiddleware(l *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if l == nil {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := l.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

func LoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			started := time.Now()
			resp, err := next.RoundTrip(r)
			evt := logger.Debug()
			if err != nil {
				evt = logger.Warn().Err(err)
			}
			evt = evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get(HeaderRequestID)).
				Dur("took", time.Since(started))
			if resp != nil {
				evt = evt.Int("status", resp.StatusCode)
			}
			evt.Msg("api request")
			return resp, err
		})
	}
}

// SessionMiddleware is the refresh interceptor. Every request carries the
// current bearer token; a 401 triggers one shared refresh and one replay with
// the new token. A 401 on the replay is handed back as-is.
func SessionMiddleware(m *refresh.Manager) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &sessionTransport{next: next, manager: m}
	}
}

type sessionTransport struct {
	next    http.RoundTripper
	manager *refresh.Manager
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	noRefresh := skipRefresh(ctx)

	sess := t.manager.Store().Get()
	if !noRefresh {
		var err error
		if sess, err = t.manager.EnsureFresh(ctx); err != nil {
			return nil, err
		}
	}

	first := req.Clone(ctx)
	stale := authorize(first, sess)

	resp, err := t.next.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || noRefresh {
		return resp, err
	}
	if req.Body != nil && req.GetBody == nil {
		// The body has been consumed and cannot be sent again.
		return resp, nil
	}
	drainAndClose(resp.Body)

	fresh, err := t.manager.Refresh(ctx, stale)
	if err != nil {
		return nil, err
	}

	replay := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}
	authorize(replay, fresh)
	return t.next.RoundTrip(replay)
}

// authorize sets the bearer header on r and returns the access token it used.
func authorize(r *http.Request, sess sessions.Session) string {
	r.Header.Del(HeaderAuthorization)
	tok := sess.Token()
	if tok == nil {
		return ""
	}
	tok.SetAuthHeader(r)
	return tok.AccessToken
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
