package storefront

import (
	"context"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/types"
)

// MergeGuest returns a login hook that folds the cart lines and wishlist
// products held before sign-in into the account.
func MergeGuest(c cart.Service, w wishlist.Service) session.LoginHook {
	return func(ctx context.Context, _ types.User, guest session.GuestState) error {
		if guest.Empty() {
			return nil
		}
		var err error
		if len(guest.Cart.Items) > 0 {
			items := make([]cart.AddItemInput, 0, len(guest.Cart.Items))
			for _, item := range guest.Cart.Items {
				items = append(items, cart.AddItemInput{
					ProductID: item.Product.ID,
					Quantity:  item.Quantity,
					Color:     item.Color,
					Size:      item.Size,
				})
			}
			_, cerr := c.MergeGuest(ctx, items)
			err = multierr.Append(err, cerr)
		}
		if len(guest.Wishlist.Products) > 0 {
			ids := make([]string, 0, len(guest.Wishlist.Products))
			for _, p := range guest.Wishlist.Products {
				ids = append(ids, p.ID)
			}
			_, werr := w.MergeGuest(ctx, ids)
			err = multierr.Append(err, werr)
		}
		return err
	}
}
