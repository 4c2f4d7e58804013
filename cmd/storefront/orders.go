package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/types"
)

func newOrdersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "orders",
		Short:             "Check out, list, cancel and track orders",
		PersistentPreRunE: c.signedIn,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your orders, newest first",
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := c.app.Orders.List(cmd.Context())
				if err != nil {
					return err
				}
				return c.render(list, func(w io.Writer) { printOrders(w, list) })
			},
		},
		&cobra.Command{
			Use:   "get <order-id>",
			Short: "Show one order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				o, err := c.app.Orders.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.showOrder(o)
			},
		},
		newOrdersPlaceCmd(c),
		&cobra.Command{
			Use:   "cancel <order-id>",
			Short: "Cancel a pending order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				o, err := c.app.Orders.Cancel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.showOrder(o)
			},
		},
		&cobra.Command{
			Use:   "track <order-id>",
			Short: "Show where an order is",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := c.app.Orders.Track(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.render(t, func(w io.Writer) {
					if t.Cancelled {
						fmt.Fprintf(w, "order %s was cancelled\n", t.OrderID)
					}
					for _, step := range t.Steps {
						mark := " "
						switch {
						case step.Current:
							mark = ">"
						case step.Reached:
							mark = "x"
						}
						fmt.Fprintf(w, "[%s]\t%s\n", mark, step.Status)
					}
				})
			},
		},
	)
	return cmd
}

func newOrdersPlaceCmd(c *cli) *cobra.Command {
	var (
		in      orders.CheckoutInput
		payment string
	)
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Check out the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if payment != "" {
				method, err := enums.ParsePaymentMethod(payment)
				if err != nil {
					return err
				}
				in.PaymentMethod = method
			}
			if in.AddressID == "" {
				list, err := c.app.Address.List(ctx)
				if err != nil {
					return err
				}
				if a, ok := types.DefaultAddress(list); ok {
					in.AddressID = a.ID
				}
			}
			o, err := c.app.Orders.Place(ctx, in)
			if err != nil {
				return err
			}
			return c.showOrder(o)
		},
	}
	cmd.Flags().StringSliceVar(&in.ItemIDs, "items", nil, "cart item ids to order (default: the whole cart)")
	cmd.Flags().StringVar(&in.AddressID, "address", "", "shipping address id (default: the default address)")
	cmd.Flags().StringVar(&payment, "payment", "COD", "COD or Card")
	return cmd
}

func (c *cli) showOrder(o types.Order) error {
	return c.render(o, func(w io.Writer) {
		fmt.Fprintf(w, "order\t%s\n", o.ID)
		fmt.Fprintf(w, "status\t%s\n", o.Status)
		fmt.Fprintf(w, "payment\t%s\n", o.PaymentMethod)
		fmt.Fprintf(w, "ship to\t%s, %s, %s\n", o.ShippingAddress.FullName, o.ShippingAddress.Street, o.ShippingAddress.City)
		for _, item := range o.Items {
			fmt.Fprintf(w, "  %d x %s\t%s %s\t%s\n", item.Quantity, firstNonEmpty(item.Product.Name, item.Product.ID), item.Color, item.Size, money(item.Price))
		}
		fmt.Fprintf(w, "total\t%s\n", money(o.TotalAmount))
	})
}
