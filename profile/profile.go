package profile

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/files"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/users"
)

const (
	mePath       = "/auth/me"
	profilePath  = "/me/profile"
	passwordPath = "/me/password"
)

type UpdateProfileRequest struct {
	Nickname string `json:"nickname,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

// Validate checks the new password locally before it is sent.
func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return fmt.Errorf("current password is required: %w", errs.ErrValidation)
	}
	if r.NewPassword != r.ConfirmPassword {
		return fmt.Errorf("passwords do not match: %w", errs.ErrValidation)
	}
	if err := users.ValidatePassword(r.NewPassword); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	return nil
}

// Client is the profile API of the signed-in user.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Me(ctx context.Context) (*users.UserInfo, error) {
	var u users.UserInfo
	if err := c.api.Get(ctx, mePath, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the nickname, the profile image, or both. The
// request part is only sent when a nickname is given.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest, image *files.File) (*users.UserInfo, error) {
	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" && image == nil {
		return nil, fmt.Errorf("nothing to update: %w", errs.ErrValidation)
	}

	var parts []apiclient.Part
	if req.Nickname != "" {
		if err := users.ValidateNickname(req.Nickname); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrValidation, err)
		}
		p, err := apiclient.JSONPart("request", req)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if image != nil {
		img := image.Sniffed()
		if !img.IsImage() {
			return nil, fmt.Errorf("%s: %w", img.Name, errs.ErrNotAnImage)
		}
		parts = append(parts, img.Part("profileImage"))
	}

	var u users.UserInfo
	if err := c.api.Upload(ctx, http.MethodPatch, profilePath, parts, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return c.api.Patch(ctx, passwordPath, req, nil)
}
