package auth

import (
	"strings"

	"github.com/jrsteele09/go-blog-client/users"
)

// LoginForm is the body of POST /auth/login.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credentials are present. Whether they are right is for
// the server to say.
func (f LoginForm) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(f.Email) == "" {
		fields["email"] = "email is required"
	}
	if f.Password == "" {
		fields["password"] = "password is required"
	}
	return formErrors(fields)
}

// SignUpForm is what the signup screen collects. ConfirmPassword never leaves
// the client.
type SignUpForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	Nickname        string
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Validate runs the signup rules locally so an obviously bad form is never
// sent. The confirmation is checked first and reported on its own.
func (f SignUpForm) Validate() error {
	if f.Password != f.ConfirmPassword {
		return &FormError{Fields: map[string]string{"confirmPassword": PasswordsDontMatchErr.Error()}}
	}

	fields := map[string]string{}
	if err := users.ValidateEmail(f.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := users.ValidatePassword(f.Password); err != nil {
		fields["password"] = err.Error()
	}
	if err := users.ValidateNickname(f.Nickname); err != nil {
		fields["nickname"] = err.Error()
	}
	return formErrors(fields)
}

func (f SignUpForm) request() signUpRequest {
	return signUpRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Nickname: strings.TrimSpace(f.Nickname),
	}
}
