package backend

import (
	"slices"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// WishlistAddInput is the body of POST /wishlist/add.
type WishlistAddInput struct {
	ProductID string `json:"productId" validate:"required"`
}

// WishlistMergeInput is the body of POST /wishlist/merge.
type WishlistMergeInput struct {
	ProductIDs []string `json:"productIds"`
}

func (s *Store) Wishlist(userID string) types.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistLocked(userID)
}

// AddToWishlist is idempotent: a product already saved stays saved once.
func (s *Store) AddToWishlist(userID, productID string) (types.Wishlist, error) {
	productID = strings.TrimSpace(productID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.productLocked(productID); err != nil {
		return types.Wishlist{}, err
	}
	if !slices.Contains(s.wishlists[userID], productID) {
		s.wishlists[userID] = append(s.wishlists[userID], productID)
	}
	return s.wishlistLocked(userID), nil
}

func (s *Store) RemoveFromWishlist(userID, productID string) (types.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.wishlists[userID]
	idx := slices.Index(ids, productID)
	if idx < 0 {
		return types.Wishlist{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not in wishlist")
	}
	s.wishlists[userID] = slices.Delete(ids, idx, idx+1)
	return s.wishlistLocked(userID), nil
}

// MergeWishlist adds every known product id, skipping unknown ones.
func (s *Store) MergeWishlist(userID string, in WishlistMergeInput) types.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range in.ProductIDs {
		id = strings.TrimSpace(id)
		if _, err := s.productLocked(id); err != nil {
			continue
		}
		if !slices.Contains(s.wishlists[userID], id) {
			s.wishlists[userID] = append(s.wishlists[userID], id)
		}
	}
	return s.wishlistLocked(userID)
}

func (s *Store) wishlistLocked(userID string) types.Wishlist {
	out := types.Wishlist{Products: []types.Product{}}
	for _, id := range s.wishlists[userID] {
		if p, err := s.productLocked(id); err == nil {
			out.Products = append(out.Products, p)
		}
	}
	return out
}
