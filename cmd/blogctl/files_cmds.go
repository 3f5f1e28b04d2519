package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/files"
	"github.com/jrsteele09/go-blog-client/profile"
	"github.com/jrsteele09/go-blog-client/routes"
)

func newUploadCmd(a *app) *cobra.Command {
	var imageOnly bool
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(routes.RouteWrite); err != nil {
				return err
			}
			f, closer, err := files.Open(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			var resp *files.UploadResponse
			if imageOnly {
				resp, err = a.files.UploadImage(a.context(cmd), f)
			} else {
				resp, err = a.files.Upload(a.context(cmd), f)
			}
			if err != nil {
				return err
			}
			return a.print.emit(resp, func(w io.Writer) {
				fmt.Fprintf(w, "ID\t%d\n", resp.ID)
				fmt.Fprintf(w, "Name\t%s\n", resp.OriginalName)
				fmt.Fprintf(w, "Type\t%s\n", resp.Type)
				fmt.Fprintf(w, "URL\t%s\n", resp.URL)
			})
		},
	}
	cmd.Flags().BoolVar(&imageOnly, "image", false, "refuse files that are not images")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}
			return a.requireLogin(routes.RouteProfile)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.profile.Me(a.context(cmd))
			if err != nil {
				return err
			}
			return a.printUser(u)
		},
	}

	var nickname, image string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your nickname or profile image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if nickname == "" && image == "" {
				return errors.New("nothing to update: pass --nickname or --image")
			}
			var img *files.File
			if image != "" {
				f, closer, err := files.Open(image)
				if err != nil {
					return err
				}
				defer closer.Close()
				img = &f
			}
			u, err := a.profile.UpdateProfile(a.context(cmd), profile.UpdateProfileRequest{Nickname: nickname}, img)
			if err != nil {
				return a.formFailure(err)
			}
			return a.printUser(u)
		},
	}
	update.Flags().StringVar(&nickname, "nickname", "", "new nickname")
	update.Flags().StringVar(&image, "image", "", "path of a new profile image")

	var req profile.ChangePasswordRequest
	password := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.profile.ChangePassword(a.context(cmd), req); err != nil {
				return a.formFailure(err)
			}
			return a.print.done("Password changed.")
		},
	}
	password.Flags().StringVar(&req.CurrentPassword, "current", "", "current password")
	password.Flags().StringVar(&req.NewPassword, "new", "", "new password, 8 to 20 characters")
	password.Flags().StringVar(&req.ConfirmPassword, "confirm", "", "new password again")

	cmd.AddCommand(show, update, password)
	return cmd
}
