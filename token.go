package ebina

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nozomi-hiragi/ebina-go/store"
	"go.uber.org/zap"
)

// TokenState exclusively owns the current bearer token. Reads and writes
// are linearized behind one mutex: a Get observes the most recent
// completed Set, and a Set replaces token, derived claims, and the
// persisted record as one step. Only the recovery path, login, and
// logout write it. No side effects beyond persistence; no network calls.
type TokenState struct {
	mu       sync.RWMutex
	token    string
	claims   *Claims
	identity string

	store  store.Store
	logger *zap.Logger
}

func newTokenState(st store.Store, logger *zap.Logger) *TokenState {
	return &TokenState{store: st, logger: logger}
}

// Get returns the current token. The second result is false when absent.
func (t *TokenState) Get() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token, t.token != ""
}

// Claims returns the identity payload decoded from the current token.
func (t *TokenState) Claims() (*Claims, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.claims == nil {
		return nil, false
	}
	claims := *t.claims
	return &claims, true
}

// IdentityHint returns the best available identity for method lookup:
// the current token's subject, falling back to the last persisted
// identity when the token is absent or undecodable.
func (t *TokenState) IdentityHint() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.claims != nil && t.claims.Subject != "" {
		return t.claims.Subject
	}
	return t.identity
}

// Set atomically replaces the stored token and persists it. Claims are
// recomputed from the new token; an undecodable token still installs but
// carries no claims and counts as expired.
func (t *TokenState) Set(ctx context.Context, token string) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		t.logger.Warn("installing token with undecodable claims")
		claims = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = token
	t.claims = claims
	if claims != nil && claims.Subject != "" {
		t.identity = claims.Subject
	}

	rec := &store.Record{
		Token:     token,
		Identity:  t.identity,
		UpdatedAt: time.Now().Unix(),
	}
	if err := t.store.Save(ctx, rec); err != nil {
		// The in-memory token is authoritative for this runtime; a
		// persistence failure only costs the next process start.
		t.logger.Warn("session record save failed", zap.Error(err))
		return err
	}
	return nil
}

// Clear removes the token and the persisted record. Equivalent to
// setting the absent state.
func (t *TokenState) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.token = ""
	t.claims = nil

	if err := t.store.Delete(ctx); err != nil {
		t.logger.Warn("session record delete failed", zap.Error(err))
		return err
	}
	return nil
}

// hydrate loads the persisted record into memory without re-saving it.
// Called once during Build; an absent record leaves the state empty.
func (t *TokenState) hydrate(ctx context.Context) error {
	rec, err := t.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	claims, derr := DecodeClaims(rec.Token)
	if derr != nil {
		claims = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = rec.Token
	t.claims = claims
	t.identity = rec.Identity
	if t.identity == "" && claims != nil {
		t.identity = claims.Subject
	}
	return nil
}

// Expired reports whether the current token is absent or expired.
func (t *TokenState) Expired() bool {
	token, ok := t.Get()
	if !ok {
		return true
	}
	return IsExpired(token)
}
