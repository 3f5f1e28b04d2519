package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/apimodel"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/users"
)

const (
	loginPath  = "/auth/login"
	signUpPath = "/auth/signup"
	logoutPath = "/auth/logout"
	mePath     = "/auth/me"
)

// TokenResponse is what login and signup return: the token pair plus the
// identity it was issued to.
type TokenResponse struct {
	apimodel.TokenResponse
	User *users.UserInfo `json:"user"`
}

// Service runs the authentication flows against the API and keeps the
// session store in step with them.
type Service struct {
	api    *apiclient.Client
	store  sessions.Store
	logger zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates an auth service using the client's session store.
func NewService(api *apiclient.Client, opts ...ServiceOption) *Service {
	s := &Service{
		api:    api,
		store:  api.Sessions(),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login validates the form, exchanges the credentials for tokens and stores
// the new session.
func (s *Service) Login(ctx context.Context, form LoginForm) (*users.UserInfo, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var resp TokenResponse
	if err := s.api.Post(apiclient.WithoutRefresh(ctx), loginPath, form, &resp); err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

// SignUp validates the form locally, registers the account and logs it in.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) (*users.UserInfo, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var resp TokenResponse
	if err := s.api.Post(apiclient.WithoutRefresh(ctx), signUpPath, form.request(), &resp); err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

func (s *Service) startSession(ctx context.Context, resp TokenResponse) (*users.UserInfo, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("[auth] token response has no access token")
	}
	if err := s.store.Login(resp.AccessToken, resp.RefreshToken, resp.User); err != nil {
		return nil, err
	}
	if resp.User != nil {
		s.logger.Info().Int64("user_id", resp.User.ID).Msg("logged in")
		return resp.User, nil
	}

	s.logger.Debug().Err(NoUserInResponseErr).Msg("fetching identity")
	user, err := s.Me(ctx)
	if err != nil {
		_ = s.store.Clear()
		return nil, err
	}
	if err := s.store.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout tells the server to revoke the refresh token and clears the local
// session. The local session is cleared even when the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	cur := s.store.Get()
	if cur.CanRefresh() {
		body := apimodel.RefreshRequest{RefreshToken: cur.RefreshToken}
		if err := s.api.Post(apiclient.WithoutRefresh(ctx), logoutPath, body, nil); err != nil {
			s.logger.Warn().Err(err).Msg("server logout failed")
		}
	}
	return s.store.Clear()
}

// Me fetches the identity of the current session.
func (s *Service) Me(ctx context.Context) (*users.UserInfo, error) {
	var user users.UserInfo
	if err := s.api.Get(ctx, mePath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshUser re-reads the identity into the session. Any failure logs the
// user out.
func (s *Service) RefreshUser(ctx context.Context) (*users.UserInfo, error) {
	user, err := s.Me(ctx)
	if err != nil {
		if clearErr := s.store.Clear(); clearErr != nil {
			s.logger.Err(clearErr).Msg("failed to clear session")
		}
		return nil, err
	}
	if err := s.store.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) CurrentUser() *users.UserInfo {
	return s.store.Get().User
}

func (s *Service) IsAuthenticated() bool {
	return s.store.Get().IsAuthenticated
}
