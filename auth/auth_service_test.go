package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/auth"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/users"
	"github.com/stretchr/testify/require"
)

var testUser = users.UserInfo{ID: 3, Email: "writer@blog.io", Nickname: "writer", Role: users.RoleAdmin}

type authAPI struct {
	calls       atomic.Int32
	logoutCalls atomic.Int32
	failLogout  bool
	failMe      bool
	omitUser    bool
}

func reply(w http.ResponseWriter, status int, success bool, data any, errBody map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": success, "data": data}
	if errBody != nil {
		body["error"] = errBody
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (a *authAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.calls.Add(1)
	switch r.URL.Path {
	case "/auth/login", "/auth/signup":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			reply(w, http.StatusUnauthorized, false, nil, map[string]any{"code": "BAD_CREDENTIALS", "message": "wrong email or password"})
			return
		}
		data := map[string]any{"accessToken": "access-1", "refreshToken": "refresh-1", "accessTokenExpiresIn": 3600}
		if !a.omitUser {
			data["user"] = testUser
		}
		reply(w, http.StatusOK, true, data, nil)
	case "/auth/me":
		if a.failMe || r.Header.Get("Authorization") != "Bearer access-1" {
			reply(w, http.StatusForbidden, false, nil, map[string]any{"code": "FORBIDDEN", "message": "no"})
			return
		}
		reply(w, http.StatusOK, true, testUser, nil)
	case "/auth/logout":
		a.logoutCalls.Add(1)
		if a.failLogout {
			reply(w, http.StatusInternalServerError, false, nil, map[string]any{"message": "boom"})
			return
		}
		reply(w, http.StatusOK, true, nil, nil)
	default:
		http.NotFound(w, r)
	}
}

func newService(t *testing.T, api *authAPI, store sessions.Store) *auth.Service {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL, store)
	require.NoError(t, err)
	return auth.NewService(c)
}

func TestService_Login(t *testing.T) {
	t.Run("stores the session", func(t *testing.T) {
		store := sessions.NewMemoryStore()
		svc := newService(t, &authAPI{}, store)

		user, err := svc.Login(context.Background(), auth.LoginForm{Email: "writer@blog.io", Password: "correct-horse"})
		require.NoError(t, err)
		require.Equal(t, testUser, *user)

		sess := store.Get()
		require.True(t, sess.IsAuthenticated)
		require.Equal(t, "access-1", sess.AccessToken)
		require.Equal(t, "refresh-1", sess.RefreshToken)
		require.True(t, svc.IsAuthenticated())
		require.Equal(t, "writer", svc.CurrentUser().DisplayName())
	})

	t.Run("bad credentials do not trigger a refresh", func(t *testing.T) {
		store := sessions.NewMemoryStore()
		api := &authAPI{}
		svc := newService(t, api, store)

		_, err := svc.Login(context.Background(), auth.LoginForm{Email: "writer@blog.io", Password: "nope"})
		require.True(t, apiclient.IsUnauthorized(err))
		require.Equal(t, "wrong email or password", apiclient.ErrorMessage(err))
		require.EqualValues(t, 1, api.calls.Load())
		require.False(t, store.Get().IsAuthenticated)
	})

	t.Run("empty form never reaches the server", func(t *testing.T) {
		api := &authAPI{}
		svc := newService(t, api, sessions.NewMemoryStore())

		_, err := svc.Login(context.Background(), auth.LoginForm{})
		var formErr *auth.FormError
		require.ErrorAs(t, err, &formErr)
		require.ErrorIs(t, err, errs.ErrValidation)
		require.Contains(t, formErr.Fields, "email")
		require.Contains(t, formErr.Fields, "password")
		require.Zero(t, api.calls.Load())
	})

	t.Run("fetches identity when the response has none", func(t *testing.T) {
		store := sessions.NewMemoryStore()
		svc := newService(t, &authAPI{omitUser: true}, store)

		user, err := svc.Login(context.Background(), auth.LoginForm{Email: "writer@blog.io", Password: "correct-horse"})
		require.NoError(t, err)
		require.Equal(t, testUser.ID, user.ID)
		require.Equal(t, testUser.ID, store.Get().User.ID)
	})
}

func TestService_SignUp(t *testing.T) {
	tests := []struct {
		name   string
		form   auth.SignUpForm
		fields []string
	}{
		{
			name:   "password mismatch",
			form:   auth.SignUpForm{Email: "a@b.io", Password: "correct-horse", ConfirmPassword: "correct-hors", Nickname: "ab"},
			fields: []string{"confirmPassword"},
		},
		{
			name:   "password too short",
			form:   auth.SignUpForm{Email: "a@b.io", Password: "short", ConfirmPassword: "short", Nickname: "ab"},
			fields: []string{"password"},
		},
		{
			name:   "password too long",
			form:   auth.SignUpForm{Email: "a@b.io", Password: "abcdefghijklmnopqrstu", ConfirmPassword: "abcdefghijklmnopqrstu", Nickname: "ab"},
			fields: []string{"password"},
		},
		{
			name:   "nickname and email",
			form:   auth.SignUpForm{Email: "not-an-email", Password: "correct-horse", ConfirmPassword: "correct-horse", Nickname: "a"},
			fields: []string{"email", "nickname"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &authAPI{}
			svc := newService(t, api, sessions.NewMemoryStore())

			_, err := svc.SignUp(context.Background(), tt.form)
			var formErr *auth.FormError
			require.ErrorAs(t, err, &formErr)
			require.Len(t, formErr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				require.Contains(t, formErr.Fields, f)
			}
			require.Zero(t, api.calls.Load())
		})
	}

	t.Run("valid form logs in", func(t *testing.T) {
		store := sessions.NewMemoryStore()
		svc := newService(t, &authAPI{}, store)

		_, err := svc.SignUp(context.Background(), auth.SignUpForm{
			Email: "writer@blog.io", Password: "correct-horse", ConfirmPassword: "correct-horse", Nickname: "writer",
		})
		require.NoError(t, err)
		require.True(t, store.Get().IsAuthenticated)
	})
}

func TestService_Logout(t *testing.T) {
	for _, fail := range []bool{false, true} {
		api := &authAPI{failLogout: fail}
		store := sessions.NewMemoryStore()
		require.NoError(t, store.Login("access-1", "refresh-1", &testUser))
		svc := newService(t, api, store)

		require.NoError(t, svc.Logout(context.Background()))
		require.EqualValues(t, 1, api.logoutCalls.Load())
		require.Equal(t, sessions.Session{}, store.Get())
	}

	t.Run("without a session nothing is sent", func(t *testing.T) {
		api := &authAPI{}
		svc := newService(t, api, sessions.NewMemoryStore())
		require.NoError(t, svc.Logout(context.Background()))
		require.Zero(t, api.calls.Load())
	})
}

func TestService_RefreshUser(t *testing.T) {
	t.Run("updates the stored identity", func(t *testing.T) {
		store := sessions.NewMemoryStore()
		require.NoError(t, store.Login("access-1", "refresh-1", &users.UserInfo{ID: 3, Nickname: "old"}))
		svc := newService(t, &authAPI{}, store)

		user, err := svc.RefreshUser(context.Background())
		require.NoError(t, err)
		require.Equal(t, "writer", user.Nickname)
		require.Equal(t, "writer", store.Get().User.Nickname)
	})

	t.Run("failure clears the session", func(t *testing.T) {
		store := sessions.NewMemoryStore()
		require.NoError(t, store.Login("access-1", "refresh-1", &testUser))
		svc := newService(t, &authAPI{failMe: true}, store)

		_, err := svc.RefreshUser(context.Background())
		require.True(t, apiclient.IsForbidden(err))
		require.False(t, store.Get().IsAuthenticated)
	})
}
