// internal/domain/analytics/service_test.go
package analytics

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/remote"
)

type fakeSources struct {
	ordersFn            func(limit int) (*remote.RawOrderListResponse, error)
	wishlistStatsFn     func() (*remote.WishlistStatsResponse, error)
	wishlistAnalyticsFn func() (*remote.RawWishlistAnalytics, error)
	cartStatsFn         func() (*remote.CartStatsResponse, error)
}

func (f *fakeSources) ListAllOrders(_ context.Context, limit int) (*remote.RawOrderListResponse, error) {
	if f.ordersFn != nil {
		return f.ordersFn(limit)
	}
	return &remote.RawOrderListResponse{}, nil
}

func (f *fakeSources) WishlistStats(_ context.Context) (*remote.WishlistStatsResponse, error) {
	if f.wishlistStatsFn != nil {
		return f.wishlistStatsFn()
	}
	return &remote.WishlistStatsResponse{}, nil
}

func (f *fakeSources) WishlistAnalytics(_ context.Context) (*remote.RawWishlistAnalytics, error) {
	if f.wishlistAnalyticsFn != nil {
		return f.wishlistAnalyticsFn()
	}
	return &remote.RawWishlistAnalytics{}, nil
}

func (f *fakeSources) CartStats(_ context.Context) (*remote.CartStatsResponse, error) {
	if f.cartStatsFn != nil {
		return f.cartStatsFn()
	}
	return &remote.CartStatsResponse{}, nil
}

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

func newTestService(f *fakeSources, g *fakeGuard) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(f, g, time.UTC, 3, 1000, log)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }
func timePtr(t time.Time) *time.Time            { return &t }

func TestOrderStatsRevenueAndPaymentCounts(t *testing.T) {
	f := &fakeSources{
		ordersFn: func(_ int) (*remote.RawOrderListResponse, error) {
			return &remote.RawOrderListResponse{Orders: []remote.RawOrderRecord{
				{PaymentStatus: strPtr("paid"), TotalPrice: decPtr(decimal.NewFromInt(10))},
				{PaymentStatus: strPtr("paid"), TotalPrice: decPtr(decimal.NewFromInt(20))},
				{PaymentStatus: strPtr("failed"), TotalPrice: decPtr(decimal.NewFromInt(5))},
			}}, nil
		},
	}
	snap := newTestService(f, &fakeGuard{}).Refresh(context.Background())

	assert.True(t, snap.Orders.TotalRevenue.Equal(decimal.NewFromInt(30)),
		"expected 30, got %s", snap.Orders.TotalRevenue)
	assert.Equal(t, 2, snap.Orders.SuccessfulPayments)
	assert.Equal(t, 1, snap.Orders.FailedPayments)
	assert.InDelta(t, 66.6667, snap.Orders.ConversionRate, 0.01)
}

func TestEmptyOrderListYieldsZeroRatesNotNaN(t *testing.T) {
	snap := newTestService(&fakeSources{}, &fakeGuard{}).Refresh(context.Background())

	assert.Equal(t, 0.0, snap.Orders.ConversionRate)
	assert.False(t, math.IsNaN(snap.Orders.ConversionRate))
	assert.True(t, snap.Orders.AverageOrderValue.IsZero())
}

func TestNullFieldsAreZeroForSumsExcludedForCounts(t *testing.T) {
	f := &fakeSources{
		ordersFn: func(_ int) (*remote.RawOrderListResponse, error) {
			return &remote.RawOrderListResponse{Orders: []remote.RawOrderRecord{
				{PaymentStatus: strPtr("paid"), TotalPrice: nil, Status: strPtr("complete")},
				{PaymentStatus: nil, TotalPrice: decPtr(decimal.NewFromInt(50)), Status: nil},
			}}, nil
		},
	}
	snap := newTestService(f, &fakeGuard{}).Refresh(context.Background())

	assert.Equal(t, 2, snap.Orders.TotalOrders)
	// Null total counts as zero; null payment status is not counted as any
	assert.True(t, snap.Orders.TotalRevenue.IsZero())
	assert.Equal(t, 1, snap.Orders.SuccessfulPayments)
	assert.Equal(t, 0, snap.Orders.FailedPayments)
	assert.Equal(t, map[string]int{"complete": 1}, snap.Orders.StatusCounts)
}

func TestTodayWindowUsesConfiguredZone(t *testing.T) {
	now := time.Now().UTC()
	f := &fakeSources{
		ordersFn: func(_ int) (*remote.RawOrderListResponse, error) {
			return &remote.RawOrderListResponse{Orders: []remote.RawOrderRecord{
				{PaymentStatus: strPtr("paid"), TotalPrice: decPtr(decimal.NewFromInt(10)), CreatedAt: timePtr(now)},
				{PaymentStatus: strPtr("paid"), TotalPrice: decPtr(decimal.NewFromInt(20)), CreatedAt: timePtr(now.AddDate(0, 0, -2))},
				{PaymentStatus: strPtr("paid"), TotalPrice: decPtr(decimal.NewFromInt(40)), CreatedAt: nil},
			}}, nil
		},
	}
	snap := newTestService(f, &fakeGuard{}).Refresh(context.Background())

	assert.Equal(t, 1, snap.Orders.OrdersToday)
	assert.True(t, snap.Orders.RevenueToday.Equal(decimal.NewFromInt(10)),
		"expected 10, got %s", snap.Orders.RevenueToday)
}

func TestTopProductsDeterministicOrderAndTruncation(t *testing.T) {
	f := &fakeSources{
		wishlistStatsFn: func() (*remote.WishlistStatsResponse, error) {
			return &remote.WishlistStatsResponse{Products: []remote.RawProductStat{
				{ProductID: strPtr("prod-c"), UserCount: intPtr(5)},
				{ProductID: strPtr("prod-a"), UserCount: intPtr(9)},
				{ProductID: strPtr("prod-d"), UserCount: intPtr(5)},
				{ProductID: strPtr("prod-b"), UserCount: intPtr(1)},
				{ProductID: nil, UserCount: intPtr(100)},
			}}, nil
		},
	}
	snap := newTestService(f, &fakeGuard{}).Refresh(context.Background())

	require.Len(t, snap.Wishlist.TopProducts, 3)
	assert.Equal(t, "prod-a", snap.Wishlist.TopProducts[0].ProductID)
	// Tie on count 5 breaks by ascending product id
	assert.Equal(t, "prod-c", snap.Wishlist.TopProducts[1].ProductID)
	assert.Equal(t, "prod-d", snap.Wishlist.TopProducts[2].ProductID)
}

func TestSourceFailureDegradesOnlyItsAggregate(t *testing.T) {
	f := &fakeSources{
		ordersFn: func(_ int) (*remote.RawOrderListResponse, error) {
			return nil, &commerce.RemoteError{StatusCode: 503, Reason: "unavailable", Retriable: true}
		},
		wishlistAnalyticsFn: func() (*remote.RawWishlistAnalytics, error) {
			return &remote.RawWishlistAnalytics{TotalItems: intPtr(12)}, nil
		},
	}
	snap := newTestService(f, &fakeGuard{}).Refresh(context.Background())

	require.Len(t, snap.Failures, 1)
	assert.Equal(t, "orders", snap.Failures[0].Source)
	assert.Contains(t, snap.Failures[0].Reason, "unavailable")
	assert.Equal(t, 0, snap.Orders.TotalOrders)
	assert.Equal(t, 12, snap.Wishlist.TotalItems)
}

func TestAuthFailureAcrossSourcesFiresGuardOnce(t *testing.T) {
	authErr := &commerce.AuthExpiredError{}
	f := &fakeSources{
		ordersFn:            func(_ int) (*remote.RawOrderListResponse, error) { return nil, authErr },
		wishlistStatsFn:     func() (*remote.WishlistStatsResponse, error) { return nil, authErr },
		wishlistAnalyticsFn: func() (*remote.RawWishlistAnalytics, error) { return nil, authErr },
		cartStatsFn:         func() (*remote.CartStatsResponse, error) { return nil, authErr },
	}
	guard := &fakeGuard{}
	snap := newTestService(f, guard).Refresh(context.Background())

	assert.Len(t, snap.Failures, 4)
	assert.Equal(t, 1, guard.reports)
}

func TestSnapshotIsFreshPerRefresh(t *testing.T) {
	f := &fakeSources{}
	svc := newTestService(f, &fakeGuard{})

	first := svc.Refresh(context.Background())
	f.ordersFn = func(_ int) (*remote.RawOrderListResponse, error) {
		return &remote.RawOrderListResponse{Orders: []remote.RawOrderRecord{
			{PaymentStatus: strPtr("paid"), TotalPrice: decPtr(decimal.NewFromInt(10))},
		}}, nil
	}
	second := svc.Refresh(context.Background())

	assert.NotSame(t, first, second)
	assert.Equal(t, 0, first.Orders.TotalOrders)
	assert.Equal(t, 1, second.Orders.TotalOrders)
}
