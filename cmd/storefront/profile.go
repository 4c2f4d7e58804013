package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/users"
)

func newProfileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "profile",
		Short:             "Show or edit your profile",
		PersistentPreRunE: c.signedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show your profile",
			RunE: func(cmd *cobra.Command, _ []string) error {
				u, err := c.app.Users.GetProfile(cmd.Context())
				if err != nil {
					return err
				}
				return c.render(u, func(w io.Writer) { printUser(w, u) })
			},
		},
		newProfileUpdateCmd(c),
	)
	return cmd
}

func newProfileUpdateCmd(c *cli) *cobra.Command {
	var in users.ProfileInput
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name, phone or avatar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			current, err := c.app.Users.GetProfile(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				in.FullName = current.FullName
			}
			u, err := c.app.Users.UpdateProfile(ctx, in)
			if err != nil {
				return err
			}
			return c.render(u, func(w io.Writer) { printUser(w, u) })
		},
	}
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Avatar, "avatar", "", "avatar url")
	return cmd
}
