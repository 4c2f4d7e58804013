package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/types"
)

const envPassword = "STOREFRONT_PASSWORD"

func newLoginCmd(c *cli) *cobra.Command {
	var in session.LoginInput
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv(envPassword)
			}
			user, err := c.app.Session.Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.render(user, func(w io.Writer) {
				fmt.Fprintf(w, "signed in as %s <%s>\n", user.FullName, user.Email)
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password (or "+envPassword+")")
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var in session.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv(envPassword)
			}
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}
			user, err := c.app.Session.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.render(user, func(w io.Writer) {
				fmt.Fprintf(w, "welcome, %s\n", user.FullName)
			})
		},
	}
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (or "+envPassword+")")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "repeat the password (defaults to --password)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget every cached resource",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Session.Logout(cmd.Context())
		},
	}
}

type whoami struct {
	User      types.User `json:"user"`
	ExpiresAt time.Time  `json:"tokenExpiresAt,omitzero"`
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := c.app.Session.CheckAuth(ctx)
			if err != nil {
				return err
			}
			if user == nil {
				return c.render(nil, func(w io.Writer) {
					fmt.Fprintln(w, "not signed in")
				})
			}

			out := whoami{User: *user}
			if token, err := c.app.Tokens.Token(ctx); err == nil {
				if info, err := auth.Inspect(token); err == nil {
					out.ExpiresAt = info.ExpiresAt
				}
			}
			return c.render(out, func(w io.Writer) {
				printUser(w, out.User)
				if !out.ExpiresAt.IsZero() {
					fmt.Fprintf(w, "token expires\t%s\n", out.ExpiresAt.Local().Format(time.RFC3339))
				}
			})
		},
	}
}
