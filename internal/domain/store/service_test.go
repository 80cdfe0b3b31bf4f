// internal/domain/store/service_test.go
package store

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/remote"
)

// fakeRemote implements RemoteAPI with pluggable behavior per endpoint
type fakeRemote struct {
	mu    sync.Mutex
	calls map[string]int

	addCartFn       func(productID string, quantity int, isGift bool) (*remote.CartActionResponse, error)
	updateCartFn    func(productID string, quantity *int, isGift *bool) (*remote.CartActionResponse, error)
	deleteCartFn    func(productIDs []string) (*remote.CartBulkDeleteResponse, error)
	clearCartFn     func() (*remote.CartClearResponse, error)
	addWishlistFn   func(productID string) (*remote.WishlistActionResponse, error)
	bulkAddToCartFn func() (*remote.WishlistBulkAddResponse, error)
	listCartFn      func(skip, limit int) (*remote.CartListResponse, error)
	removeWishFn    func(productID string) (*remote.WishlistActionResponse, error)
	clearWishFn     func() (*remote.WishlistActionResponse, error)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(map[string]int)}
}

func (f *fakeRemote) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeRemote) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRemote) AddCartItem(_ context.Context, productID string, quantity int, isGift bool) (*remote.CartActionResponse, error) {
	f.record("AddCartItem")
	if f.addCartFn != nil {
		return f.addCartFn(productID, quantity, isGift)
	}
	return &remote.CartActionResponse{Success: true, Quantity: quantity}, nil
}

func (f *fakeRemote) UpdateCartItem(_ context.Context, productID string, quantity *int, isGift *bool) (*remote.CartActionResponse, error) {
	f.record("UpdateCartItem")
	if f.updateCartFn != nil {
		return f.updateCartFn(productID, quantity, isGift)
	}
	qty := 0
	if quantity != nil {
		qty = *quantity
	}
	return &remote.CartActionResponse{Success: true, Quantity: qty, Updated: true}, nil
}

func (f *fakeRemote) DeleteCartItems(_ context.Context, productIDs []string) (*remote.CartBulkDeleteResponse, error) {
	f.record("DeleteCartItems")
	if f.deleteCartFn != nil {
		return f.deleteCartFn(productIDs)
	}
	return &remote.CartBulkDeleteResponse{DeletedCount: len(productIDs)}, nil
}

func (f *fakeRemote) ClearCart(_ context.Context) (*remote.CartClearResponse, error) {
	f.record("ClearCart")
	if f.clearCartFn != nil {
		return f.clearCartFn()
	}
	return &remote.CartClearResponse{}, nil
}

func (f *fakeRemote) ListCart(_ context.Context, skip, limit int, _ string) (*remote.CartListResponse, error) {
	f.record("ListCart")
	if f.listCartFn != nil {
		return f.listCartFn(skip, limit)
	}
	return &remote.CartListResponse{}, nil
}

func (f *fakeRemote) AddWishlistItem(_ context.Context, productID string) (*remote.WishlistActionResponse, error) {
	f.record("AddWishlistItem")
	if f.addWishlistFn != nil {
		return f.addWishlistFn(productID)
	}
	return &remote.WishlistActionResponse{Success: true}, nil
}

func (f *fakeRemote) RemoveWishlistItem(_ context.Context, productID string) (*remote.WishlistActionResponse, error) {
	f.record("RemoveWishlistItem")
	if f.removeWishFn != nil {
		return f.removeWishFn(productID)
	}
	return &remote.WishlistActionResponse{Success: true}, nil
}

func (f *fakeRemote) ClearWishlist(_ context.Context) (*remote.WishlistActionResponse, error) {
	f.record("ClearWishlist")
	if f.clearWishFn != nil {
		return f.clearWishFn()
	}
	return &remote.WishlistActionResponse{Success: true}, nil
}

func (f *fakeRemote) ListWishlist(_ context.Context) (*remote.WishlistListResponse, error) {
	f.record("ListWishlist")
	return &remote.WishlistListResponse{}, nil
}

func (f *fakeRemote) AddAllWishlistToCart(_ context.Context) (*remote.WishlistBulkAddResponse, error) {
	f.record("AddAllWishlistToCart")
	if f.bulkAddToCartFn != nil {
		return f.bulkAddToCartFn()
	}
	return &remote.WishlistBulkAddResponse{}, nil
}

// fakeGuard mirrors the real guard's epoch contract
type fakeGuard struct {
	mu      sync.Mutex
	epoch   uint64
	reports int
}

func (g *fakeGuard) Epoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

func (g *fakeGuard) ReportAuthExpired(_ context.Context, epoch uint64, _ string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if epoch != g.epoch {
		return false
	}
	g.epoch++
	g.reports++
	return true
}

func (g *fakeGuard) reportCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reports
}

func newTestService(f *fakeRemote, g *fakeGuard) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(f, g, "EUR", log)
}

func TestAddItemConfirmsServerQuantity(t *testing.T) {
	f := newFakeRemote()
	f.addCartFn = func(_ string, _ int, _ bool) (*remote.CartActionResponse, error) {
		return &remote.CartActionResponse{Success: true, Quantity: 7}, nil
	}
	svc := newTestService(f, &fakeGuard{})

	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 2, false))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestAddItemLearnsServerPrice(t *testing.T) {
	f := newFakeRemote()
	f.listCartFn = func(skip, _ int) (*remote.CartListResponse, error) {
		if skip > 0 {
			return &remote.CartListResponse{Total: 1}, nil
		}
		return &remote.CartListResponse{
			Items: []remote.CartItemRecord{
				{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.NewFromInt(12)},
			},
			Total: 1,
		}, nil
	}
	svc := newTestService(f, &fakeGuard{})

	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 2, false))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(12)),
		"expected 12, got %s", lines[0].UnitPrice)
	assert.True(t, svc.Summary().TotalValue.Equal(decimal.NewFromInt(24)),
		"expected 24, got %s", svc.Summary().TotalValue)
}

func TestAddItemPriceRefreshFailureKeepsLine(t *testing.T) {
	f := newFakeRemote()
	f.listCartFn = func(_, _ int) (*remote.CartListResponse, error) {
		return nil, &commerce.RemoteError{StatusCode: 503, Reason: "unavailable", Retriable: true}
	}
	svc := newTestService(f, &fakeGuard{})

	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 1, false))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.IsZero())
}

func TestAddItemSkipsRefreshWhenPriceKnown(t *testing.T) {
	f := newFakeRemote()
	f.listCartFn = func(skip, _ int) (*remote.CartListResponse, error) {
		if skip > 0 {
			return &remote.CartListResponse{Total: 1}, nil
		}
		return &remote.CartListResponse{
			Items: []remote.CartItemRecord{
				{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
			},
			Total: 1,
		}, nil
	}
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.Hydrate(context.Background()))
	listCalls := f.callCount("ListCart")

	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 1, false))

	assert.Equal(t, listCalls, f.callCount("ListCart"))
}

func TestAddItemFailureRollsBackExactly(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 2, false))
	before := svc.Lines()

	f.addCartFn = func(_ string, _ int, _ bool) (*remote.CartActionResponse, error) {
		return nil, &commerce.RemoteError{StatusCode: 409, Reason: "out of stock"}
	}
	err := svc.AddItem(context.Background(), "prod-1", 1, false)

	require.Error(t, err)
	var me *commerce.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "addItem", me.Op)
	assert.Contains(t, err.Error(), "out of stock")
	assert.Equal(t, before, svc.Lines())
}

func TestAddItemRejectsBadInput(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})

	var ve *commerce.ValidationError
	require.ErrorAs(t, svc.AddItem(context.Background(), "", 1, false), &ve)
	require.ErrorAs(t, svc.AddItem(context.Background(), "prod-1", 0, false), &ve)
	assert.Equal(t, 0, f.callCount("AddCartItem"))
}

func TestUpdateQuantityZeroCollapsesToRemoval(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 3, false))

	require.NoError(t, svc.UpdateQuantity(context.Background(), "prod-1", 0))

	assert.Empty(t, svc.Lines())
	assert.Equal(t, 1, f.callCount("DeleteCartItems"))
	assert.Equal(t, 0, f.callCount("UpdateCartItem"))
}

func TestUpdateItemUnknownProduct(t *testing.T) {
	svc := newTestService(newFakeRemote(), &fakeGuard{})
	qty := 2

	err := svc.UpdateItem(context.Background(), "ghost", &qty, nil)

	var ve *commerce.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestGiftOnlyUpdateKeepsQuantityWhenServerOmitsIt(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 3, false))

	f.updateCartFn = func(_ string, _ *int, _ *bool) (*remote.CartActionResponse, error) {
		return &remote.CartActionResponse{Success: true, Updated: true}, nil
	}
	gift := true
	require.NoError(t, svc.UpdateItem(context.Background(), "prod-1", nil, &gift))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, lines[0].IsGift)
}

func TestUpdateItemBackfillsUnknownPrice(t *testing.T) {
	f := newFakeRemote()
	f.listCartFn = func(_, _ int) (*remote.CartListResponse, error) {
		return nil, &commerce.TimeoutError{Op: "GET /cart/"}
	}
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 1, false))
	require.True(t, svc.Lines()[0].UnitPrice.IsZero())

	f.listCartFn = func(skip, _ int) (*remote.CartListResponse, error) {
		if skip > 0 {
			return &remote.CartListResponse{Total: 1}, nil
		}
		return &remote.CartListResponse{
			Items: []remote.CartItemRecord{
				{ProductID: "prod-1", Quantity: 4, UnitPrice: decimal.NewFromInt(9)},
			},
			Total: 1,
		}, nil
	}
	qty := 4
	require.NoError(t, svc.UpdateItem(context.Background(), "prod-1", &qty, nil))

	line := svc.Lines()[0]
	assert.Equal(t, 4, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(9)),
		"expected 9, got %s", line.UnitPrice)
}

func TestRemoveItemFailureRestoresLine(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 2, true))
	before := svc.Lines()

	f.deleteCartFn = func(_ []string) (*remote.CartBulkDeleteResponse, error) {
		return nil, &commerce.TimeoutError{Op: "POST /cart/bulk-delete"}
	}
	err := svc.RemoveItem(context.Background(), "prod-1")

	require.Error(t, err)
	assert.True(t, commerce.IsRetriable(err))
	assert.Equal(t, before, svc.Lines())
}

func TestClearFailureRestoresEveryLine(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 2, false))
	require.NoError(t, svc.AddItem(context.Background(), "prod-2", 1, false))
	before := svc.Lines()

	f.clearCartFn = func() (*remote.CartClearResponse, error) {
		return nil, &commerce.RemoteError{StatusCode: 503, Reason: "unavailable", Retriable: true}
	}
	err := svc.Clear(context.Background())

	require.Error(t, err)
	assert.Equal(t, before, svc.Lines())
}

func TestSummaryIsLocal(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 2, false))
	callsBefore := f.callCount("AddCartItem") + f.callCount("ListCart")

	summary := svc.Summary()

	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, "EUR", summary.Currency)
	assert.Equal(t, callsBefore, f.callCount("AddCartItem")+f.callCount("ListCart"))
}

func TestSummaryValuesFromHydratedPrices(t *testing.T) {
	f := newFakeRemote()
	f.listCartFn = func(skip, _ int) (*remote.CartListResponse, error) {
		if skip > 0 {
			return &remote.CartListResponse{Total: 2}, nil
		}
		return &remote.CartListResponse{
			Items: []remote.CartItemRecord{
				{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
				{ProductID: "prod-2", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
			},
			Total: 2,
		}, nil
	}
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.Hydrate(context.Background()))

	summary := svc.Summary()

	assert.Equal(t, 3, summary.ItemCount)
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(25)),
		"expected 25, got %s", summary.TotalValue)
}

func TestSameProductMutationsApplyInIssueOrder(t *testing.T) {
	f := newFakeRemote()
	var mu sync.Mutex
	serverQty := 0
	f.addCartFn = func(_ string, quantity int, _ bool) (*remote.CartActionResponse, error) {
		mu.Lock()
		serverQty += quantity
		qty := serverQty
		mu.Unlock()
		return &remote.CartActionResponse{Success: true, Quantity: qty}, nil
	}
	svc := newTestService(f, &fakeGuard{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.AddItem(context.Background(), "prod-1", 1, false)
		}()
	}
	wg.Wait()

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 10, lines[0].Quantity)
}

func TestAuthExpiredRollsBackAndFiresGuardOnce(t *testing.T) {
	f := newFakeRemote()
	svc := newTestService(f, &fakeGuard{})
	require.NoError(t, svc.AddItem(context.Background(), "prod-1", 1, false))
	require.NoError(t, svc.AddItem(context.Background(), "prod-2", 1, false))
	before := svc.Lines()

	guard := &fakeGuard{}
	svc.guard = guard

	// Both mutations must be in flight before either fails, so both
	// capture the same credential epoch
	var barrier sync.WaitGroup
	barrier.Add(2)
	f.updateCartFn = func(_ string, _ *int, _ *bool) (*remote.CartActionResponse, error) {
		barrier.Done()
		barrier.Wait()
		return nil, &commerce.AuthExpiredError{}
	}

	var wg sync.WaitGroup
	for _, id := range []string{"prod-1", "prod-2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := svc.UpdateQuantity(context.Background(), id, 5)
			assert.True(t, commerce.IsAuthExpired(err))
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, guard.reportCount())
	assert.Equal(t, before, svc.Lines())
}
