package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-blog-client/apimodel"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/token/jwt"
)

var (
	ErrSessionExpired = errs.ErrSessionExpired
	ErrNoRefreshToken = errs.ErrNoRefreshToken
)

// Refresher exchanges a refresh token for a new token pair. It must not go
// through the refreshing transport itself.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*apimodel.TokenResponse, error)
}

type RefresherFunc func(ctx context.Context, refreshToken string) (*apimodel.TokenResponse, error)

func (f RefresherFunc) RefreshTokens(ctx context.Context, refreshToken string) (*apimodel.TokenResponse, error) {
	return f(ctx, refreshToken)
}

// ExpiredFunc is told the session could not be renewed. loginRoute is where
// the user should be sent to sign in again.
type ExpiredFunc func(loginRoute string)

// Manager serializes token refreshes: however many requests fail with a stale
// access token at once, exactly one refresh call is made and every waiter
// gets its result.
type Manager struct {
	store      sessions.Store
	refresher  Refresher
	onExpired  ExpiredFunc
	loginRoute string
	skew       time.Duration
	logger     zerolog.Logger
	now        func() time.Time

	group singleflight.Group
	lock  sync.Mutex
}

type Option func(*Manager)

func WithExpiredFunc(fn ExpiredFunc) Option {
	return func(m *Manager) { m.onExpired = fn }
}

func WithLoginRoute(route string) Option {
	return func(m *Manager) { m.loginRoute = route }
}

// WithSkew sets how close to expiry a JWT access token is renewed before use.
func WithSkew(d time.Duration) Option {
	return func(m *Manager) { m.skew = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithNow replaces the clock used for expiry checks.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new refresh manager
func NewManager(store sessions.Store, refresher Refresher, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		refresher:  refresher,
		loginRoute: "/login",
		skew:       30 * time.Second,
		logger:     log.Logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the session store the manager refreshes.
func (m *Manager) Store() sessions.Store {
	return m.store
}

// Refresh renews the session whose access token staleAccessToken was rejected.
// If the store already holds a different access token another request won
// the race and that session is returned without a network call.
func (m *Manager) Refresh(ctx context.Context, staleAccessToken string) (sessions.Session, error) {
	if cur := m.store.Get(); cur.AccessToken != "" && cur.AccessToken != staleAccessToken {
		return cur, nil
	}

	ch := m.group.DoChan("refresh:"+staleAccessToken, func() (any, error) {
		// The flight outlives any single caller's cancellation.
		return m.refresh(context.WithoutCancel(ctx), staleAccessToken)
	})

	select {
	case <-ctx.Done():
		return sessions.Session{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return sessions.Session{}, res.Err
		}
		return res.Val.(sessions.Session), nil
	}
}

// EnsureFresh renews the session ahead of time when its access token is a
// JWT that expires within the configured skew. Opaque tokens are left alone.
func (m *Manager) EnsureFresh(ctx context.Context) (sessions.Session, error) {
	cur := m.store.Get()
	if cur.AccessToken == "" || !cur.CanRefresh() {
		return cur, nil
	}
	if !jwt.ExpiresWithin(cur.AccessToken, m.now(), m.skew) {
		return cur, nil
	}
	m.logger.Debug().Msg("access token about to expire, refreshing")
	return m.Refresh(ctx, cur.AccessToken)
}

func (m *Manager) refresh(ctx context.Context, staleAccessToken string) (sessions.Session, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	cur := m.store.Get()
	if cur.AccessToken != "" && cur.AccessToken != staleAccessToken {
		return cur, nil
	}
	if !cur.CanRefresh() {
		m.expire(ErrNoRefreshToken)
		return sessions.Session{}, fmt.Errorf("%w: %w", ErrSessionExpired, ErrNoRefreshToken)
	}

	started := m.now()
	tokens, err := m.refresher.RefreshTokens(ctx, cur.RefreshToken)
	if err == nil && (tokens == nil || tokens.AccessToken == "") {
		err = fmt.Errorf("refresh response has no access token")
	}
	if err != nil {
		m.expire(err)
		return sessions.Session{}, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	refreshToken := tokens.RefreshToken
	if refreshToken == "" {
		refreshToken = cur.RefreshToken
	}
	if err := m.store.SetTokens(tokens.AccessToken, refreshToken); err != nil {
		return sessions.Session{}, fmt.Errorf("[refresh Manager] store tokens: %w", err)
	}

	m.logger.Info().Dur("took", m.now().Sub(started)).Msg("session refreshed")
	return m.store.Get(), nil
}

func (m *Manager) expire(cause error) {
	m.logger.Warn().Err(cause).Msg("session could not be refreshed, logging out")
	if err := m.store.Clear(); err != nil {
		m.logger.Err(err).Msg("failed to clear session")
	}
	if m.onExpired != nil {
		m.onExpired(m.loginRoute)
	}
}
