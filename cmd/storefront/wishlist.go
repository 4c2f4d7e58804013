package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/pkg/types"
)

func newWishlistCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "wishlist",
		Short:             "Show and change the wishlist",
		PersistentPreRunE: c.signedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show saved products",
			RunE: func(cmd *cobra.Command, _ []string) error {
				w, err := c.app.Wishlist.Get(cmd.Context())
				if err != nil {
					return err
				}
				return c.showWishlist(w)
			},
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Save a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := c.app.Wishlist.Add(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.showWishlist(w)
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Forget a saved product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				// Load first so removing an unsaved product sends nothing.
				if _, err := c.app.Wishlist.Get(ctx); err != nil {
					return err
				}
				w, err := c.app.Wishlist.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				return c.showWishlist(w)
			},
		},
		&cobra.Command{
			Use:   "toggle <product-id>",
			Short: "Save the product, or forget it when already saved",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, saved, err := c.app.Wishlist.Toggle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.render(map[string]any{"saved": saved, "wishlist": w}, func(out io.Writer) {
					if saved {
						fmt.Fprintf(out, "%s saved\n", args[0])
					} else {
						fmt.Fprintf(out, "%s removed\n", args[0])
					}
				})
			},
		},
	)
	return cmd
}

func (c *cli) showWishlist(w types.Wishlist) error {
	return c.render(w, func(out io.Writer) {
		if len(w.Products) == 0 {
			fmt.Fprintln(out, "wishlist is empty")
			return
		}
		printProducts(out, w.Products)
	})
}
