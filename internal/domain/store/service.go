// internal/domain/store/service.go
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/reqctx"
	"github.com/your-org/storefront-bff/internal/remote"
)

// RemoteAPI is the slice of the remote commerce service this store uses
type RemoteAPI interface {
	AddCartItem(ctx context.Context, productID string, quantity int, isGift bool) (*remote.CartActionResponse, error)
	UpdateCartItem(ctx context.Context, productID string, quantity *int, isGift *bool) (*remote.CartActionResponse, error)
	DeleteCartItems(ctx context.Context, productIDs []string) (*remote.CartBulkDeleteResponse, error)
	ClearCart(ctx context.Context) (*remote.CartClearResponse, error)
	ListCart(ctx context.Context, skip, limit int, search string) (*remote.CartListResponse, error)
	AddWishlistItem(ctx context.Context, productID string) (*remote.WishlistActionResponse, error)
	RemoveWishlistItem(ctx context.Context, productID string) (*remote.WishlistActionResponse, error)
	ClearWishlist(ctx context.Context) (*remote.WishlistActionResponse, error)
	ListWishlist(ctx context.Context) (*remote.WishlistListResponse, error)
	AddAllWishlistToCart(ctx context.Context) (*remote.WishlistBulkAddResponse, error)
}

// AuthReporter receives authorization failures. Epoch is captured before
// a remote call and handed back with the report so duplicate reports
// from concurrent operations collapse into one invalidation.
type AuthReporter interface {
	Epoch() uint64
	ReportAuthExpired(ctx context.Context, epoch uint64, location string) bool
}

// Service keeps the session's cart and wishlist in memory and mediates
// every mutation through optimistic-update plus confirm-or-rollback
// against the remote commerce service.
type Service struct {
	remote   RemoteAPI
	guard    AuthReporter
	currency string
	log      *logrus.Logger

	mu       sync.RWMutex
	cart     map[string]commerce.CartLine
	wishlist map[string]commerce.WishlistEntry

	keys *keyedLocks
}

// NewService creates a new commerce state store service
func NewService(remoteAPI RemoteAPI, guard AuthReporter, currency string, log *logrus.Logger) *Service {
	return &Service{
		remote:   remoteAPI,
		guard:    guard,
		currency: currency,
		log:      log,
		cart:     make(map[string]commerce.CartLine),
		wishlist: make(map[string]commerce.WishlistEntry),
		keys:     newKeyedLocks(),
	}
}

const hydratePageSize = 200

// fail routes auth failures to the session guard, then wraps the error
// with the operation that hit it
func (s *Service) fail(ctx context.Context, op, productID string, epoch uint64, err error) error {
	if commerce.IsAuthExpired(err) {
		s.guard.ReportAuthExpired(ctx, epoch, reqctx.ClientLocation(ctx))
	}
	s.log.WithFields(logrus.Fields{
		"op":         op,
		"product_id": productID,
	}).WithError(err).Warn("Mutation rolled back")
	return &commerce.MutationError{Op: op, ProductID: productID, Err: err}
}

// AddItem optimistically inserts or increments a cart line, then
// confirms with the remote service. On failure the cart is restored to
// the exact pre-call snapshot.
func (s *Service) AddItem(ctx context.Context, productID string, quantity int, isGift bool) error {
	if productID == "" {
		return &commerce.ValidationError{Reason: "product id is required"}
	}
	if quantity < 1 {
		return &commerce.ValidationError{Reason: "quantity must be positive"}
	}

	s.keys.Lock(productID)
	defer s.keys.Unlock(productID)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	prev, existed := s.cart[productID]
	line := prev
	if existed {
		line.Quantity += quantity
	} else {
		line = commerce.CartLine{ProductID: productID, Quantity: quantity}
	}
	line.IsGift = isGift
	s.cart[productID] = line
	s.mu.Unlock()

	resp, err := s.remote.AddCartItem(ctx, productID, quantity, isGift)
	if err != nil {
		s.mu.Lock()
		if existed {
			s.cart[productID] = prev
		} else {
			delete(s.cart, productID)
		}
		s.mu.Unlock()
		return s.fail(ctx, "addItem", productID, epoch, err)
	}

	// Server quantity wins over the optimistic projection. A zero
	// quantity means the server omitted the field, not an empty row.
	s.mu.Lock()
	confirmed := s.cart[productID]
	if resp.Quantity > 0 {
		confirmed.Quantity = resp.Quantity
	}
	priceKnown := !confirmed.UnitPrice.IsZero()
	s.cart[productID] = confirmed
	s.mu.Unlock()

	if !priceKnown {
		s.refreshLinePrice(ctx, productID)
	}
	return nil
}

// UpdateQuantity sets the quantity of a cart line. Zero or negative
// collapses to removal.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	return s.UpdateItem(ctx, productID, &quantity, nil)
}

// UpdateItem patches quantity and/or gift flag of one cart line. Nil
// fields are left unchanged.
func (s *Service) UpdateItem(ctx context.Context, productID string, quantity *int, isGift *bool) error {
	if productID == "" {
		return &commerce.ValidationError{Reason: "product id is required"}
	}
	if quantity == nil && isGift == nil {
		return &commerce.ValidationError{Reason: "nothing to update"}
	}
	if quantity != nil && *quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.keys.Lock(productID)
	defer s.keys.Unlock(productID)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	prev, existed := s.cart[productID]
	if !existed {
		s.mu.Unlock()
		return &commerce.ValidationError{Reason: "product is not in the cart"}
	}
	line := prev
	if quantity != nil {
		line.Quantity = *quantity
	}
	if isGift != nil {
		line.IsGift = *isGift
	}
	s.cart[productID] = line
	s.mu.Unlock()

	resp, err := s.remote.UpdateCartItem(ctx, productID, quantity, isGift)
	if err != nil {
		s.mu.Lock()
		s.cart[productID] = prev
		s.mu.Unlock()
		return s.fail(ctx, "updateItem", productID, epoch, err)
	}

	s.mu.Lock()
	confirmed := s.cart[productID]
	if resp.Quantity > 0 {
		confirmed.Quantity = resp.Quantity
	}
	priceKnown := !confirmed.UnitPrice.IsZero()
	s.cart[productID] = confirmed
	s.mu.Unlock()

	if !priceKnown {
		s.refreshLinePrice(ctx, productID)
	}
	return nil
}

// RemoveItem optimistically deletes a cart line; on failure the line is
// restored verbatim. Removing an absent product is a no-op.
func (s *Service) RemoveItem(ctx context.Context, productID string) error {
	if productID == "" {
		return &commerce.ValidationError{Reason: "product id is required"}
	}

	s.keys.Lock(productID)
	defer s.keys.Unlock(productID)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	prev, existed := s.cart[productID]
	if !existed {
		s.mu.Unlock()
		return nil
	}
	delete(s.cart, productID)
	s.mu.Unlock()

	if _, err := s.remote.DeleteCartItems(ctx, []string{productID}); err != nil {
		s.mu.Lock()
		s.cart[productID] = prev
		s.mu.Unlock()
		return s.fail(ctx, "removeItem", productID, epoch, err)
	}
	return nil
}

// RemoveMany deletes several cart lines in one remote call. On failure
// every removed line is restored verbatim.
func (s *Service) RemoveMany(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return &commerce.ValidationError{Reason: "no product ids given"}
	}

	locked := s.keys.LockMany(productIDs)
	defer s.keys.UnlockMany(locked)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	removed := make(map[string]commerce.CartLine)
	for _, id := range locked {
		if line, ok := s.cart[id]; ok {
			removed[id] = line
			delete(s.cart, id)
		}
	}
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}

	if _, err := s.remote.DeleteCartItems(ctx, locked); err != nil {
		s.mu.Lock()
		for id, line := range removed {
			s.cart[id] = line
		}
		s.mu.Unlock()
		return s.fail(ctx, "removeMany", "", epoch, err)
	}
	return nil
}

// Clear empties the cart. On failure every line is restored verbatim.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.cart))
	for id := range s.cart {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	locked := s.keys.LockMany(ids)
	defer s.keys.UnlockMany(locked)

	epoch := s.guard.Epoch()

	s.mu.Lock()
	removed := make(map[string]commerce.CartLine, len(locked))
	for _, id := range locked {
		if line, ok := s.cart[id]; ok {
			removed[id] = line
			delete(s.cart, id)
		}
	}
	s.mu.Unlock()

	if _, err := s.remote.ClearCart(ctx); err != nil {
		s.mu.Lock()
		for id, line := range removed {
			s.cart[id] = line
		}
		s.mu.Unlock()
		return s.fail(ctx, "clear", "", epoch, err)
	}
	return nil
}

// Summary derives {item count, total value} from local state. Never
// triggers a network round trip.
func (s *Service) Summary() commerce.CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := commerce.CartSummary{
		TotalValue: decimal.Zero,
		Currency:   s.currency,
	}
	for _, line := range s.cart {
		summary.ItemCount += line.Quantity
		summary.TotalValue = summary.TotalValue.Add(line.LineTotal())
	}
	return summary
}

// Lines returns a copy of the current cart, sorted by product id
func (s *Service) Lines() []commerce.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]commerce.CartLine, 0, len(s.cart))
	for _, line := range s.cart {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
	return lines
}

// Hydrate replaces local cart and wishlist state with the server's
// truth. Called when a session attaches, before any optimistic mutation.
func (s *Service) Hydrate(ctx context.Context) error {
	epoch := s.guard.Epoch()

	cart, err := s.fetchFullCart(ctx)
	if err != nil {
		return s.fail(ctx, "hydrate", "", epoch, err)
	}

	wishlistResp, err := s.remote.ListWishlist(ctx)
	if err != nil {
		return s.fail(ctx, "hydrate", "", epoch, err)
	}
	wishlist := make(map[string]commerce.WishlistEntry, len(wishlistResp.Items))
	for _, item := range wishlistResp.Items {
		wishlist[item.ProductID] = commerce.WishlistEntry{
			ProductID: item.ProductID,
			AddedAt:   item.CreatedAt,
		}
	}

	s.mu.Lock()
	s.cart = cart
	s.wishlist = wishlist
	s.mu.Unlock()
	return nil
}

// refreshLinePrice reads the authoritative row for a product whose price
// this session has never seen, so summaries and checkout carry the
// server's price. Best effort: the mutation is already committed
// remotely, a failed read only leaves the price unknown until the next
// hydration.
func (s *Service) refreshLinePrice(ctx context.Context, productID string) {
	cart, err := s.fetchFullCart(ctx)
	if err != nil {
		s.log.WithField("product_id", productID).WithError(err).
			Warn("Line refresh failed, price unknown until next hydration")
		return
	}
	row, ok := cart[productID]
	if !ok {
		return
	}

	s.mu.Lock()
	if line, present := s.cart[productID]; present {
		line.UnitPrice = row.UnitPrice
		s.cart[productID] = line
	}
	s.mu.Unlock()
}

// fetchFullCart pages through the remote cart until every row is read
func (s *Service) fetchFullCart(ctx context.Context) (map[string]commerce.CartLine, error) {
	cart := make(map[string]commerce.CartLine)
	skip := 0
	for {
		page, err := s.remote.ListCart(ctx, skip, hydratePageSize, "")
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			cart[item.ProductID] = commerce.CartLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				IsGift:    item.IsGift,
				UnitPrice: item.UnitPrice,
			}
		}
		skip += len(page.Items)
		if len(page.Items) == 0 || skip >= page.Total {
			return cart, nil
		}
	}
}
