package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/auth"
	"github.com/jrsteele09/go-blog-client/routes"
	"github.com/jrsteele09/go-blog-client/users"
)

func newLoginCmd(a *app) *cobra.Command {
	var form auth.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guestOnly(routes.RouteLogin); err != nil {
				return err
			}
			if form.Password == "" {
				pw, err := a.prompt("Password: ")
				if err != nil {
					return err
				}
				form.Password = pw
			}
			user, err := a.auth.Login(a.context(cmd), form)
			if err != nil {
				return a.formFailure(err)
			}
			return a.printUser(user)
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var form auth.SignUpForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guestOnly(routes.RouteSignup); err != nil {
				return err
			}
			user, err := a.auth.SignUp(a.context(cmd), form)
			if err != nil {
				return a.formFailure(err)
			}
			return a.printUser(user)
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password, 8 to 20 characters")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	cmd.Flags().StringVar(&form.Nickname, "nickname", "", "display name, 2 to 20 characters")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(a.context(cmd)); err != nil {
				a.logger.Warn().Err(err).Msg("server logout failed, local session cleared")
			}
			return a.print.done("Signed out.")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.auth.IsAuthenticated() {
				return a.print.emit(map[string]any{"authenticated": false}, func(w io.Writer) {
					fmt.Fprintln(w, "Not signed in.")
				})
			}
			user, err := a.auth.RefreshUser(a.context(cmd))
			if err != nil {
				return err
			}
			return a.printUser(user)
		},
	}
}

func (a *app) printUser(u *users.UserInfo) error {
	return a.print.emit(u, func(w io.Writer) {
		if u == nil {
			fmt.Fprintln(w, "No user.")
			return
		}
		fmt.Fprintf(w, "ID\t%d\n", u.ID)
		fmt.Fprintf(w, "Email\t%s\n", u.Email)
		fmt.Fprintf(w, "Nickname\t%s\n", u.Nickname)
		fmt.Fprintf(w, "Role\t%s\n", u.Role)
		if u.ProfileImageURL != "" {
			fmt.Fprintf(w, "Image\t%s\n", u.ProfileImageURL)
		}
	})
}

// formFailure prints per field messages of validation failures, local or
// from the server, and returns the error.
func (a *app) formFailure(err error) error {
	fields := apiclient.FieldErrors(err)
	var formErr *auth.FormError
	if errors.As(err, &formErr) {
		fields = formErr.Fields
	}
	a.printFieldErrors(fields)
	if len(fields) > 0 {
		return errors.New("invalid input")
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiclient.ErrorMessage(err))
	}
	return err
}

func (a *app) printFieldErrors(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.errOut, "  %s: %s\n", name, fields[name])
	}
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.errOut, label)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
