// internal/domain/session/guard.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

// Redirect tells the UI where to send the user after an auth failure.
// ReturnTo is the location the user was at when the failure hit, so the
// login flow can restore it afterwards.
type Redirect struct {
	LoginPath string    `json:"login_path"`
	ReturnTo  string    `json:"return_to"`
	At        time.Time `json:"at"`
}

// Guard handles authorization failures for one browser session. Every
// component reports auth failures here instead of acting on them itself.
//
// Idempotency works through epochs: a caller captures Epoch() before its
// remote call and hands the captured value to ReportAuthExpired. Only
// the first report of an epoch invalidates; late reports from concurrent
// operations that hit the same dead token are no-ops.
type Guard struct {
	sessionID string
	store     CredentialStore
	loginPath string
	ttl       time.Duration
	log       *logrus.Logger

	mu       sync.Mutex
	epoch    uint64
	redirect *Redirect
}

// NewGuard creates the session guard for one browser session
func NewGuard(sessionID string, store CredentialStore, loginPath string, ttl time.Duration, log *logrus.Logger) *Guard {
	return &Guard{
		sessionID: sessionID,
		store:     store,
		loginPath: loginPath,
		ttl:       ttl,
		log:       log,
	}
}

// Epoch returns the current credential epoch. Capture it before starting
// an operation that may report an auth failure.
func (g *Guard) Epoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

// SetCredentials caches a fresh token for the session and clears any
// pending redirect. Called when the UI completes re-authentication.
func (g *Guard) SetCredentials(ctx context.Context, token string) error {
	creds := &Credentials{Token: token, SavedAt: time.Now()}
	if err := g.store.Save(ctx, g.sessionID, creds, g.ttl); err != nil {
		return err
	}

	g.mu.Lock()
	g.epoch++
	g.redirect = nil
	g.mu.Unlock()
	return nil
}

// Token returns the cached bearer token for remote calls. A missing or
// locally expired token fails with AuthExpiredError before any network
// I/O is attempted.
func (g *Guard) Token(ctx context.Context) (string, error) {
	creds, err := g.store.Load(ctx, g.sessionID)
	if err != nil {
		return "", err
	}
	if creds == nil {
		return "", &commerce.AuthExpiredError{Reason: "no credentials cached"}
	}
	if auth.IsTokenExpired(creds.Token, time.Now()) {
		return "", &commerce.AuthExpiredError{Reason: "token expired"}
	}
	return creds.Token, nil
}

// ReportAuthExpired invalidates the session credentials and records the
// redirect hint. epoch must be the value captured from Epoch() before
// the failed operation began; a stale epoch means another report already
// handled this failure, and the call is a no-op. Returns whether this
// call performed the invalidation.
func (g *Guard) ReportAuthExpired(ctx context.Context, epoch uint64, location string) bool {
	g.mu.Lock()
	if epoch != g.epoch {
		g.mu.Unlock()
		return false
	}
	g.epoch++
	g.redirect = &Redirect{
		LoginPath: g.loginPath,
		ReturnTo:  location,
		At:        time.Now(),
	}
	g.mu.Unlock()

	if err := g.store.Delete(ctx, g.sessionID); err != nil {
		g.log.WithFields(logrus.Fields{
			"session_id": g.sessionID,
		}).WithError(err).Warn("Failed to delete invalidated credentials")
	}

	g.log.WithFields(logrus.Fields{
		"session_id": g.sessionID,
		"return_to":  location,
	}).Info("Session credentials invalidated")
	return true
}

// PendingRedirect returns the redirect recorded by the last invalidation,
// or nil when the session does not need re-authentication
func (g *Guard) PendingRedirect() *Redirect {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.redirect == nil {
		return nil
	}
	r := *g.redirect
	return &r
}
