// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/reqctx"
	"github.com/your-org/storefront-bff/internal/remote"
)

// Sources is the slice of the remote commerce service the engine reads
type Sources interface {
	ListAllOrders(ctx context.Context, limit int) (*remote.RawOrderListResponse, error)
	WishlistStats(ctx context.Context) (*remote.WishlistStatsResponse, error)
	WishlistAnalytics(ctx context.Context) (*remote.RawWishlistAnalytics, error)
	CartStats(ctx context.Context) (*remote.CartStatsResponse, error)
}

// AuthReporter receives authorization failures, keyed by credential epoch
type AuthReporter interface {
	Epoch() uint64
	ReportAuthExpired(ctx context.Context, epoch uint64, location string) bool
}

// SourceFailure reports one record set that could not be fetched. The
// snapshot's other sub-aggregates are unaffected.
type SourceFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// ProductCount is one entry of a top-N popularity list
type ProductCount struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Count       int    `json:"count"`
}

// OrderStats are the aggregates derived from raw order records
type OrderStats struct {
	TotalOrders        int             `json:"total_orders"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	SuccessfulPayments int             `json:"successful_payments"`
	FailedPayments     int             `json:"failed_payments"`
	PendingPayments    int             `json:"pending_payments"`
	RefundedPayments   int             `json:"refunded_payments"`
	ConversionRate     float64         `json:"conversion_rate"`
	AverageOrderValue  decimal.Decimal `json:"average_order_value"`
	OrdersToday        int             `json:"orders_today"`
	RevenueToday       decimal.Decimal `json:"revenue_today"`
	StatusCounts       map[string]int  `json:"status_counts"`
}

// WishlistStats are the aggregates derived from raw wishlist rows
type WishlistStats struct {
	TotalWishlists  int            `json:"total_wishlists"`
	TotalItems      int            `json:"total_items"`
	AvgItemsPerUser float64        `json:"avg_items_per_user"`
	TopProducts     []ProductCount `json:"top_products"`
}

// CartStats are the aggregates derived from raw cart rows
type CartStats struct {
	TotalCarts    int             `json:"total_carts"`
	TotalItems    int             `json:"total_items"`
	AbandonedRate float64         `json:"abandoned_rate"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// Snapshot is one fully-computed set of derived metrics. Every value
// comes from a single fetch pass; a snapshot is never updated in place.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Orders      OrderStats      `json:"orders"`
	Wishlist    WishlistStats   `json:"wishlist"`
	Cart        CartStats       `json:"cart"`
	Failures    []SourceFailure `json:"failures,omitempty"`
}

// Service computes dashboard aggregates from bulk raw records
type Service struct {
	sources    Sources
	guard      AuthReporter
	loc        *time.Location
	topN       int
	fetchLimit int
	log        *logrus.Logger
}

// NewService creates a new analytics aggregation engine. loc is the one
// time zone used for every calendar-day comparison of a computation.
func NewService(sources Sources, guard AuthReporter, loc *time.Location, topN, fetchLimit int, log *logrus.Logger) *Service {
	return &Service{
		sources:    sources,
		guard:      guard,
		loc:        loc,
		topN:       topN,
		fetchLimit: fetchLimit,
		log:        log,
	}
}

// Refresh fetches every record set once and computes a new snapshot.
// A source that fails to fetch degrades its own sub-aggregate to zero
// values and is reported in Failures; the other sources still compute.
func (s *Service) Refresh(ctx context.Context) *Snapshot {
	epoch := s.guard.Epoch()
	now := time.Now().In(s.loc)

	snap := &Snapshot{
		GeneratedAt: now,
		Orders:      emptyOrderStats(),
		Wishlist:    WishlistStats{},
		Cart:        emptyCartStats(),
	}

	if orders, err := s.sources.ListAllOrders(ctx, s.fetchLimit); err != nil {
		s.recordFailure(ctx, snap, "orders", epoch, err)
	} else {
		snap.Orders = s.computeOrderStats(orders.Orders, now)
	}

	if agg, err := s.sources.WishlistAnalytics(ctx); err != nil {
		s.recordFailure(ctx, snap, "wishlist_analytics", epoch, err)
	} else {
		snap.Wishlist.TotalWishlists = intOrZero(agg.TotalWishlists)
		snap.Wishlist.TotalItems = intOrZero(agg.TotalItems)
		snap.Wishlist.AvgItemsPerUser = floatOrZero(agg.AvgItemsPerUser)
	}
	if stats, err := s.sources.WishlistStats(ctx); err != nil {
		s.recordFailure(ctx, snap, "wishlist_stats", epoch, err)
	} else {
		snap.Wishlist.TopProducts = s.topProducts(stats.Products)
	}

	if carts, err := s.sources.CartStats(ctx); err != nil {
		s.recordFailure(ctx, snap, "carts", epoch, err)
	} else {
		snap.Cart = CartStats{
			TotalCarts:    intOrZero(carts.TotalCarts),
			TotalItems:    intOrZero(carts.TotalItems),
			AbandonedRate: floatOrZero(carts.AbandonedRate),
			TotalValue:    decimalOrZero(carts.TotalValue),
		}
	}

	return snap
}

func (s *Service) recordFailure(ctx context.Context, snap *Snapshot, source string, epoch uint64, err error) {
	if commerce.IsAuthExpired(err) {
		s.guard.ReportAuthExpired(ctx, epoch, reqctx.ClientLocation(ctx))
	}
	s.log.WithFields(logrus.Fields{"source": source}).WithError(err).Warn("Analytics source unavailable")
	snap.Failures = append(snap.Failures, SourceFailure{Source: source, Reason: err.Error()})
}

func emptyOrderStats() OrderStats {
	return OrderStats{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		RevenueToday:      decimal.Zero,
		StatusCounts:      map[string]int{},
	}
}

func emptyCartStats() CartStats {
	return CartStats{TotalValue: decimal.Zero}
}

// computeOrderStats derives order aggregates from one fetched record
// set. Null totals count as zero in sums; records with an unknown
// status or payment status are excluded from the respective counts
// rather than guessed into one. "Today" is calendar-day equality in the
// configured zone, with now fixed for the whole pass.
func (s *Service) computeOrderStats(records []remote.RawOrderRecord, now time.Time) OrderStats {
	stats := emptyOrderStats()
	stats.TotalOrders = len(records)

	for _, rec := range records {
		total := decimalOrZero(rec.TotalPrice)

		if rec.PaymentStatus != nil {
			switch commerce.PaymentStatus(*rec.PaymentStatus) {
			case commerce.PaymentStatusPaid:
				stats.SuccessfulPayments++
				stats.TotalRevenue = stats.TotalRevenue.Add(total)
			case commerce.PaymentStatusFailed:
				stats.FailedPayments++
			case commerce.PaymentStatusPending:
				stats.PendingPayments++
			case commerce.PaymentStatusRefunded:
				stats.RefundedPayments++
			}
		}

		if rec.Status != nil && *rec.Status != "" {
			stats.StatusCounts[*rec.Status]++
		}

		if rec.CreatedAt != nil && sameDay(rec.CreatedAt.In(s.loc), now) {
			stats.OrdersToday++
			stats.RevenueToday = stats.RevenueToday.Add(total)
		}
	}

	if stats.TotalOrders > 0 {
		stats.ConversionRate = float64(stats.SuccessfulPayments) / float64(stats.TotalOrders) * 100
	}
	if stats.SuccessfulPayments > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.SuccessfulPayments)))
	}
	return stats
}

// topProducts sorts by count descending with ties broken by ascending
// product id, truncated to N. Deterministic for a given input set.
func (s *Service) topProducts(rows []remote.RawProductStat) []ProductCount {
	products := make([]ProductCount, 0, len(rows))
	for _, row := range rows {
		if row.ProductID == nil || *row.ProductID == "" {
			continue
		}
		entry := ProductCount{
			ProductID: *row.ProductID,
			Count:     intOrZero(row.UserCount),
		}
		if row.ProductName != nil {
			entry.ProductName = *row.ProductName
		}
		products = append(products, entry)
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].Count != products[j].Count {
			return products[i].Count > products[j].Count
		}
		return products[i].ProductID < products[j].ProductID
	})

	if len(products) > s.topN {
		products = products[:s.topN]
	}
	return products
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func decimalOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
