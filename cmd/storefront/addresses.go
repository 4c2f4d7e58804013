package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/angelmondragon/storefront/internal/address"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

func newAddressesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "addresses",
		Short:             "Manage the address book",
		PersistentPreRunE: c.signedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved addresses",
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := c.app.Address.List(cmd.Context())
				if err != nil {
					return err
				}
				return c.render(list, func(w io.Writer) { printAddresses(w, list) })
			},
		},
		newAddressAddCmd(c),
		newAddressUpdateCmd(c),
		&cobra.Command{
			Use:   "delete <address-id>",
			Short: "Delete an address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.Address.Delete(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "default <address-id>",
			Short: "Make an address the default",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.app.Address.SetDefault(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.render(a, func(w io.Writer) { printAddresses(w, []types.Address{a}) })
			},
		},
	)
	return cmd
}

func addressFlags(f *pflag.FlagSet, in *address.AddressInput) {
	f.StringVar(&in.FullName, "name", "", "recipient name")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Street, "street", "", "street and number")
	f.StringVar(&in.City, "city", "", "city")
	f.StringVar(&in.State, "state", "", "state or region")
	f.StringVar(&in.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&in.Country, "country", "", "country")
	f.BoolVar(&in.IsDefault, "default", false, "make this the default address")
}

func newAddressAddCmd(c *cli) *cobra.Command {
	var in address.AddressInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app.Address.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.render(a, func(w io.Writer) { printAddresses(w, []types.Address{a}) })
		},
	}
	addressFlags(cmd.Flags(), &in)
	return cmd
}

func newAddressUpdateCmd(c *cli) *cobra.Command {
	var patch address.AddressInput
	cmd := &cobra.Command{
		Use:   "update <address-id>",
		Short: "Change the given fields of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := c.app.Address.List(ctx)
			if err != nil {
				return err
			}
			var current *types.Address
			for i := range list {
				if list[i].ID == args[0] {
					current = &list[i]
				}
			}
			if current == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("address %s not found", args[0]))
			}

			in := address.FromAddress(*current)
			f := cmd.Flags()
			overlay := map[string]*string{
				"name": &in.FullName, "phone": &in.Phone, "street": &in.Street, "city": &in.City,
				"state": &in.State, "postal-code": &in.PostalCode, "country": &in.Country,
			}
			from := map[string]string{
				"name": patch.FullName, "phone": patch.Phone, "street": patch.Street, "city": patch.City,
				"state": patch.State, "postal-code": patch.PostalCode, "country": patch.Country,
			}
			for name, dst := range overlay {
				if f.Changed(name) {
					*dst = from[name]
				}
			}
			if f.Changed("default") {
				in.IsDefault = patch.IsDefault
			}

			a, err := c.app.Address.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			return c.render(a, func(w io.Writer) { printAddresses(w, []types.Address{a}) })
		},
	}
	addressFlags(cmd.Flags(), &patch)
	return cmd
}
