package sessions

import (
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-blog-client/token/jwt"
	"github.com/jrsteele09/go-blog-client/users"
)

// Session is the client-held authentication state: the token pair issued by
// the API and the identity it belongs to. The zero value is a logged-out session.
type Session struct {
	AccessToken     string          `json:"accessToken,omitempty"`
	RefreshToken    string          `json:"refreshToken,omitempty"`
	User            *users.UserInfo `json:"user,omitempty"`
	IsAuthenticated bool            `json:"isAuthenticated"`
}

// Token returns the access token as an oauth2.Token, or nil when there is none.
// Expiry is only known for JWT access tokens.
func (s Session) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	t := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, ok := jwt.ExpiresAt(s.AccessToken); ok {
		t.Expiry = exp
	}
	return t
}

func (s Session) CanRefresh() bool {
	return s.RefreshToken != ""
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
