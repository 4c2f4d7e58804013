package main

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/types"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
		PersistentPreRunE: c.signedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cur, err := c.app.Cart.Get(cmd.Context())
				if err != nil {
					return err
				}
				return c.showCart(cur)
			},
		},
		newCartAddCmd(c),
		&cobra.Command{
			Use:   "update <item-id> <quantity>",
			Short: "Set the quantity of a line; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return err
				}
				cur, err := c.app.Cart.UpdateQuantity(cmd.Context(), args[0], qty)
				if err != nil {
					return err
				}
				return c.showCart(cur)
			},
		},
		&cobra.Command{
			Use:   "remove <item-id>",
			Short: "Remove a line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cur, err := c.app.Cart.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.showCart(cur)
			},
		},
	)
	return cmd
}

func newCartAddCmd(c *cli) *cobra.Command {
	var in cart.AddItemInput
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product variant to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in.ProductID = args[0]
			// A known product gives the optimistic line its name and price.
			if p, err := c.app.Catalog.GetProduct(ctx, in.ProductID); err == nil {
				in.Product = &p
			}
			cur, err := c.app.Cart.Add(ctx, in)
			if err != nil {
				return err
			}
			return c.showCart(cur)
		},
	}
	cmd.Flags().IntVar(&in.Quantity, "qty", 1, "quantity")
	cmd.Flags().StringVar(&in.Color, "color", "", "color")
	cmd.Flags().StringVar(&in.Size, "size", "", "size")
	return cmd
}

func (c *cli) showCart(cur types.Cart) error {
	return c.render(cur, func(w io.Writer) { printCart(w, cur) })
}
