package users

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Role is the account role the API assigns to a user.
type Role string

const (
	RoleAdmin Role = "ADMIN" // Can write, edit and delete posts and manage the taxonomy
	RoleUser  Role = "USER"  // Regular reader account
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 20
	NicknameMinLength = 2
	NicknameMaxLength = 20
)

// UserInfo is the identity the API returns with tokens and from /auth/me.
type UserInfo struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	Role            Role   `json:"role"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

func (u *UserInfo) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName prefers the nickname and falls back to the email address.
func (u *UserInfo) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Email
}

// ValidatePassword checks the length rule the API enforces on passwords.
// Length is measured in characters, not bytes.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return fmt.Errorf("password must be %d-%d characters", PasswordMinLength, PasswordMaxLength)
	}
	return nil
}

func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(nickname))
	if n < NicknameMinLength || n > NicknameMaxLength {
		return fmt.Errorf("nickname must be %d-%d characters", NicknameMinLength, NicknameMaxLength)
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}
