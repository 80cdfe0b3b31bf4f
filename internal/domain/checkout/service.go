// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/reqctx"
	"github.com/your-org/storefront-bff/internal/remote"
)

// State is the phase of one checkout attempt. Transitions are forward
// only; no operation may target a phase behind the current one.
type State string

const (
	StateDraft             State = "draft"
	StateOrderCreated      State = "order_created"
	StatePaymentAuthorized State = "payment_authorized"
	StateCaptured          State = "captured"
	StatePaymentFailed     State = "payment_failed"
	StateSettled           State = "settled"
)

var stateRank = map[State]int{
	StateDraft:             0,
	StateOrderCreated:      1,
	StatePaymentAuthorized: 2,
	StateCaptured:          3,
	StatePaymentFailed:     3,
	StateSettled:           4,
}

// StateError reports an operation invoked out of order
type StateError struct {
	Op      string
	Current State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while checkout is %s", e.Op, e.Current)
}

// RemoteAPI is the slice of the remote commerce service checkout uses
type RemoteAPI interface {
	CheckoutCart(ctx context.Context, lines []commerce.CartLine, currency string) (*remote.OrderRecord, error)
	BuyNow(ctx context.Context, productID string, maxPrice decimal.Decimal) (*remote.OrderRecord, error)
	GetOrder(ctx context.Context, orderID int64) (*remote.OrderRecord, error)
	CreatePaymentIntent(ctx context.Context, orderID int64) (*commerce.PaymentIntentHandle, error)
}

// AuthReporter receives authorization failures, keyed by credential epoch
type AuthReporter interface {
	Epoch() uint64
	ReportAuthExpired(ctx context.Context, epoch uint64, location string) bool
}

// Attempt is one checkout attempt. The snapshot freezes quantities and
// prices at begin time; the server's order total is authoritative after
// creation.
type Attempt struct {
	ID string

	mu             sync.Mutex
	state          State
	snapshot       []commerce.CartLine
	currency       string
	requestedTotal decimal.Decimal
	order          *commerce.Order
	intent         *commerce.PaymentIntentHandle
}

// State returns the attempt's current phase
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Order returns the order created for this attempt, nil before creation
func (a *Attempt) Order() *commerce.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.order
}

// Snapshot returns the frozen cart lines of this attempt
func (a *Attempt) Snapshot() []commerce.CartLine {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]commerce.CartLine, len(a.snapshot))
	copy(out, a.snapshot)
	return out
}

// CreateOrderResult carries the created order plus the price-change
// condition when the server's total differs from the frozen snapshot's
type CreateOrderResult struct {
	Order          *commerce.Order `json:"order"`
	PriceChanged   bool            `json:"price_changed"`
	RequestedTotal decimal.Decimal `json:"requested_total"`
	ConfirmedTotal decimal.Decimal `json:"confirmed_total"`
}

// Service orchestrates checkout attempts. It reads cart snapshots but
// never mutates the state store; the cart is cleared by its own
// operations after settlement.
type Service struct {
	remote   RemoteAPI
	guard    AuthReporter
	currency string
	log      *logrus.Logger

	mu       sync.Mutex
	attempts map[string]*Attempt
}

// NewService creates a new checkout orchestrator
func NewService(remoteAPI RemoteAPI, guard AuthReporter, currency string, log *logrus.Logger) *Service {
	return &Service{
		remote:   remoteAPI,
		guard:    guard,
		currency: currency,
		log:      log,
		attempts: make(map[string]*Attempt),
	}
}

func (s *Service) attempt(id string) (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, &commerce.ValidationError{Reason: "unknown checkout attempt"}
	}
	return a, nil
}

func (s *Service) reportIfAuthExpired(ctx context.Context, epoch uint64, err error) {
	if commerce.IsAuthExpired(err) {
		s.guard.ReportAuthExpired(ctx, epoch, reqctx.ClientLocation(ctx))
	}
}

// AttemptState returns the current phase of an attempt
func (s *Service) AttemptState(attemptID string) (State, error) {
	a, err := s.attempt(attemptID)
	if err != nil {
		return "", err
	}
	return a.State(), nil
}

// BeginCheckout freezes a cart snapshot into a new Draft attempt.
// Validates locally and performs no network call.
func (s *Service) BeginCheckout(snapshot []commerce.CartLine) (*Attempt, error) {
	if len(snapshot) == 0 {
		return nil, commerce.ErrEmptyCart
	}

	frozen := make([]commerce.CartLine, len(snapshot))
	copy(frozen, snapshot)

	total := decimal.Zero
	for _, line := range frozen {
		if line.Quantity <= 0 {
			return nil, &commerce.ValidationError{
				Reason: fmt.Sprintf("product %s has non-positive quantity", line.ProductID),
			}
		}
		if line.UnitPrice.IsZero() {
			return nil, &commerce.ValidationError{
				Reason: fmt.Sprintf("product %s has no known price", line.ProductID),
			}
		}
		total = total.Add(line.LineTotal())
	}

	a := &Attempt{
		ID:             uuid.NewString(),
		state:          StateDraft,
		snapshot:       frozen,
		currency:       s.currency,
		requestedTotal: total,
	}

	s.mu.Lock()
	s.attempts[a.ID] = a
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"attempt_id": a.ID,
		"lines":      len(frozen),
		"total":      total.String(),
	}).Info("Checkout attempt started")
	return a, nil
}

// CreateOrder submits the attempt's frozen lines to the remote service.
// The call is detached from the caller's cancellation so navigating away
// mid-flight cannot orphan a created order. A total that differs from
// the snapshot is surfaced via PriceChanged, never silently accepted.
// On failure the attempt stays Draft and the cart is untouched.
func (s *Service) CreateOrder(ctx context.Context, attemptID string) (*CreateOrderResult, error) {
	a, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateDraft {
		return nil, &StateError{Op: "create order", Current: a.state}
	}

	epoch := s.guard.Epoch()

	record, err := s.remote.CheckoutCart(context.WithoutCancel(ctx), a.snapshot, a.currency)
	if err != nil {
		s.reportIfAuthExpired(ctx, epoch, err)
		s.log.WithFields(logrus.Fields{"attempt_id": a.ID}).WithError(err).Warn("Order creation failed")
		return nil, err
	}

	order := record.ToOrder()
	a.order = order
	a.state = StateOrderCreated

	result := &CreateOrderResult{
		Order:          order,
		PriceChanged:   !order.TotalPrice.Equal(a.requestedTotal),
		RequestedTotal: a.requestedTotal,
		ConfirmedTotal: order.TotalPrice,
	}
	if result.PriceChanged {
		s.log.WithFields(logrus.Fields{
			"attempt_id": a.ID,
			"order_id":   order.ID,
			"requested":  a.requestedTotal.String(),
			"confirmed":  order.TotalPrice.String(),
		}).Warn("Order total differs from snapshot")
	}
	return result, nil
}

// RequestPaymentIntent obtains the payment authorization handle for the
// attempt's order. Idempotent before capture: re-invoking returns the
// already-obtained handle instead of creating a second charge target.
// Failure leaves the attempt at OrderCreated, retriable without
// re-creating the order.
func (s *Service) RequestPaymentIntent(ctx context.Context, attemptID string) (*commerce.PaymentIntentHandle, error) {
	a, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateDraft:
		return nil, &StateError{Op: "request payment intent", Current: a.state}
	case StatePaymentAuthorized:
		return a.intent, nil
	case StateOrderCreated:
	default:
		return nil, &StateError{Op: "request payment intent", Current: a.state}
	}

	epoch := s.guard.Epoch()

	intent, err := s.remote.CreatePaymentIntent(ctx, a.order.ID)
	if err != nil {
		s.reportIfAuthExpired(ctx, epoch, err)
		return nil, err
	}

	a.intent = intent
	a.state = StatePaymentAuthorized
	return intent, nil
}

// BuyNow creates a single-product order bypassing the cart entirely.
// MaxPrice caps the unit price the buyer accepts. The state store's cart
// is never touched. The returned attempt starts at OrderCreated.
func (s *Service) BuyNow(ctx context.Context, productID string, maxPrice decimal.Decimal) (*Attempt, error) {
	if productID == "" {
		return nil, &commerce.ValidationError{Reason: "product id is required"}
	}
	if !maxPrice.IsPositive() {
		return nil, &commerce.ValidationError{Reason: "max price must be positive"}
	}

	epoch := s.guard.Epoch()

	record, err := s.remote.BuyNow(context.WithoutCancel(ctx), productID, maxPrice)
	if err != nil {
		s.reportIfAuthExpired(ctx, epoch, err)
		return nil, err
	}

	order := record.ToOrder()
	a := &Attempt{
		ID:             uuid.NewString(),
		state:          StateOrderCreated,
		currency:       s.currency,
		requestedTotal: order.TotalPrice,
		order:          order,
	}

	s.mu.Lock()
	s.attempts[a.ID] = a
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"attempt_id": a.ID,
		"order_id":   order.ID,
		"product_id": productID,
	}).Info("Buy-now order created")
	return a, nil
}

// ObserveOrder re-fetches the attempt's order and advances the attempt
// when the payment reached a terminal status. Status updates may arrive
// out of order; the latest fetched value always wins over anything
// inferred locally, but the attempt's phase never moves backwards.
func (s *Service) ObserveOrder(ctx context.Context, attemptID string) (*commerce.Order, error) {
	a, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateDraft {
		return nil, &StateError{Op: "observe order", Current: a.state}
	}

	epoch := s.guard.Epoch()

	record, err := s.remote.GetOrder(ctx, a.order.ID)
	if err != nil {
		s.reportIfAuthExpired(ctx, epoch, err)
		return nil, err
	}

	order := record.ToOrder()
	a.order = order

	if order.PaymentStatus.IsTerminal() {
		next := StateCaptured
		if order.PaymentStatus == commerce.PaymentStatusFailed {
			next = StatePaymentFailed
		}
		if stateRank[next] > stateRank[a.state] {
			a.state = next
		}
	}
	return order, nil
}

// Settle closes an attempt whose payment reached a terminal status and
// discards it. Returns the final order.
func (s *Service) Settle(attemptID string) (*commerce.Order, error) {
	a, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.state != StateCaptured && a.state != StatePaymentFailed {
		state := a.state
		a.mu.Unlock()
		return nil, &StateError{Op: "settle", Current: state}
	}
	a.state = StateSettled
	order := a.order
	a.mu.Unlock()

	s.mu.Lock()
	delete(s.attempts, attemptID)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"attempt_id": attemptID,
		"order_id":   order.ID,
		"payment":    string(order.PaymentStatus),
	}).Info("Checkout attempt settled")
	return order, nil
}
