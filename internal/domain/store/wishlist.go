// internal/domain/store/wishlist.go
package store

import (
	"context"
	"sort"
	"time"

	"github.com/your-org/storefront-bff/internal/domain/commerce"
)

// BulkAddResult reports the outcome of moving the wishlist into the cart
type BulkAddResult struct {
	AddedCount int                    `json:"added_count"`
	TotalItems int                    `json:"total_items"`
	Failed     []commerce.ItemFailure `json:"failed_items"`
}

func wishlistKey(productID string) string {
	return "wishlist:" + productID
}

// ToggleWishlist adds a product to the wishlist. Adding an id that is
// already present is a no-op success, reported via alreadyExists.
func (s *Service) ToggleWishlist(ctx context.Context, productID string) (alreadyExists bool, err error) {
	if productID == "" {
		return false, &commerce.ValidationError{Reason: "product id is required"}
	}

	key := wishlistKey(productID)
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	s.mu.RLock()
	_, present := s.wishlist[productID]
	s.mu.RUnlock()
	if present {
		return true, nil
	}

	epoch := s.guard.Epoch()

	entry := commerce.WishlistEntry{ProductID: productID, AddedAt: time.Now()}
	s.mu.Lock()
	s.wishlist[productID] = entry
	s.mu.Unlock()

	resp, err := s.remote.AddWishlistItem(ctx, productID)
	if err != nil {
		s.mu.Lock()
		delete(s.wishlist, productID)
		s.mu.Unlock()
		return false, s.fail(ctx, "toggleWishlist", productID, epoch, err)
	}
	return resp.AlreadyExists, nil
}

// RemoveFromWishlist optimistically deletes a wishlist entry; on failure
// the entry is restored verbatim. Removing an absent product is a no-op.
func (s *Service) RemoveFromWishlist(ctx context.Context, productID string) error {
	if productID == "" {
		return &commerce.ValidationError{Reason: "product id is required"}
	}

	key := wishlistKey(productID)
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	prev, existed := s.wishlist[productID]
	if !existed {
		s.mu.Unlock()
		return nil
	}
	delete(s.wishlist, productID)
	s.mu.Unlock()

	if _, err := s.remote.RemoveWishlistItem(ctx, productID); err != nil {
		s.mu.Lock()
		s.wishlist[productID] = prev
		s.mu.Unlock()
		return s.fail(ctx, "removeFromWishlist", productID, epoch, err)
	}
	return nil
}

// ClearWishlist empties the wishlist. On failure every entry is restored.
func (s *Service) ClearWishlist(ctx context.Context) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.wishlist))
	for id := range s.wishlist {
		keys = append(keys, wishlistKey(id))
	}
	s.mu.RUnlock()

	locked := s.keys.LockMany(keys)
	defer s.keys.UnlockMany(locked)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	removed := s.wishlist
	s.wishlist = make(map[string]commerce.WishlistEntry)
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}

	if _, err := s.remote.ClearWishlist(ctx); err != nil {
		s.mu.Lock()
		for id, entry := range removed {
			if _, raced := s.wishlist[id]; !raced {
				s.wishlist[id] = entry
			}
		}
		s.mu.Unlock()
		return s.fail(ctx, "clearWishlist", "", epoch, err)
	}
	return nil
}

// AddAllWishlistToCart moves every wishlist entry into the cart in one
// remote call. Items the server accepted stay committed even when
// others fail; partial failure is reported item by item, and only the
// failed entries remain on the wishlist.
func (s *Service) AddAllWishlistToCart(ctx context.Context) (*BulkAddResult, error) {
	s.mu.RLock()
	size := len(s.wishlist)
	s.mu.RUnlock()
	if size == 0 {
		return &BulkAddResult{}, nil
	}

	epoch := s.guard.Epoch()

	resp, err := s.remote.AddAllWishlistToCart(ctx)
	if err != nil {
		return nil, s.fail(ctx, "addAllWishlistToCart", "", epoch, err)
	}

	failed := make(map[string]struct{}, len(resp.FailedItems))
	result := &BulkAddResult{
		AddedCount: resp.AddedCount,
		TotalItems: resp.TotalItems,
	}
	for _, item := range resp.FailedItems {
		failed[item.ProductID] = struct{}{}
		result.Failed = append(result.Failed, commerce.ItemFailure{
			ProductID: item.ProductID,
			Reason:    item.Reason,
		})
	}

	// Consumed entries leave the wishlist; failed ones stay
	s.mu.Lock()
	for id := range s.wishlist {
		if _, stays := failed[id]; !stays {
			delete(s.wishlist, id)
		}
	}
	s.mu.Unlock()

	// The server moved rows we never saw priced; re-read the cart so the
	// local projection carries authoritative quantities and prices
	if cart, ferr := s.fetchFullCart(ctx); ferr != nil {
		s.log.WithError(ferr).Warn("Cart refresh after bulk add failed, local cart may lag")
	} else {
		s.mu.Lock()
		s.cart = cart
		s.mu.Unlock()
	}

	if len(result.Failed) > 0 {
		return result, &commerce.PartialBatchError{
			Succeeded: result.AddedCount,
			Failures:  result.Failed,
		}
	}
	return result, nil
}

// WishlistEntries returns a copy of the wishlist, oldest first
func (s *Service) WishlistEntries() []commerce.WishlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]commerce.WishlistEntry, 0, len(s.wishlist))
	for _, entry := range s.wishlist {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
	return entries
}
