package sessions

import (
	"sync"

	"github.com/jrsteele09/go-blog-client/users"
)

// StorageKey is the fixed key the session is persisted under.
const StorageKey = "auth-storage"

// Store holds the single active session. Writes are last-write-wins and
// implementations must be safe for concurrent use, since the HTTP client
// reads the session while login, logout and refresh flows write it.
type Store interface {
	// Get returns a copy of the current session
	Get() Session

	// Login replaces the session with a freshly authenticated one
	Login(accessToken, refreshToken string, user *users.UserInfo) error

	// SetTokens swaps the token pair after a refresh, keeping the user
	SetTokens(accessToken, refreshToken string) error

	// SetUser updates the identity, e.g. after /auth/me
	SetUser(user *users.UserInfo) error

	// Clear destroys the session
	Clear() error
}

// state is the mutex-guarded session shared by the Store implementations.
// commit is called with the new value while the lock is held; if it fails the
// in-memory value is left unchanged, except for Clear.
type state struct {
	lock    sync.RWMutex
	session Session
	commit  func(Session) error
}

func (s *state) get() Session {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.clone()
}

func (s *state) apply(fn func(*Session)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := s.session.clone()
	fn(&next)
	if s.commit != nil {
		if err := s.commit(next); err != nil {
			return err
		}
	}
	s.session = next
	return nil
}

func (s *state) Get() Session {
	return s.get()
}

func (s *state) Login(accessToken, refreshToken string, user *users.UserInfo) error {
	return s.apply(func(sess *Session) {
		*sess = Session{
			AccessToken:     accessToken,
			RefreshToken:    refreshToken,
			User:            copyUser(user),
			IsAuthenticated: true,
		}
	})
}

func (s *state) SetTokens(accessToken, refreshToken string) error {
	return s.apply(func(sess *Session) {
		sess.AccessToken = accessToken
		sess.RefreshToken = refreshToken
		sess.IsAuthenticated = true
	})
}

func (s *state) SetUser(user *users.UserInfo) error {
	return s.apply(func(sess *Session) {
		sess.User = copyUser(user)
	})
}

// Clear always drops the in-memory session, even when persisting the empty
// one fails, so a caller that signs out is never left signed in.
func (s *state) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.session = Session{}
	if s.commit == nil {
		return nil
	}
	return s.commit(Session{})
}

func copyUser(u *users.UserInfo) *users.UserInfo {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
