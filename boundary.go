package ebina

import (
	"context"
	"errors"

	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"go.uber.org/zap"
)

// Boundary is the recovery point for a group of operations. Run executes
// an operation; when the operation fails with [ErrAuthRequired], the
// boundary suspends it, drives recovery to resolution, and then applies
// the configured [RetryPolicy]. Errors other than ErrAuthRequired pass
// through untouched — business failures never reach recovery.
//
// With nested boundaries the innermost one wins: it consumes the signal
// during its own Run, so an outer boundary never observes it.
type Boundary struct {
	reauth  *reauthenticator
	policy  RetryPolicy
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Run executes fn under this boundary.
//
// Under [RetryOnce] the operation is replayed exactly once after a
// successful recovery; a second ErrAuthRequired from the replay is
// returned as-is rather than looping. Under [RetryNever] a successful
// recovery returns [ErrReauthenticated] and the caller re-triggers the
// operation itself.
//
// A terminal recovery failure returns an error matching
// [ErrSessionTerminated]; the session is gone and the application must
// present its entry surface.
func (b *Boundary) Run(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if !errors.Is(err, ErrAuthRequired) {
		return err
	}

	if _, rerr := b.reauth.Recover(ctx); rerr != nil {
		return rerr
	}

	if b.policy == RetryNever {
		return ErrReauthenticated
	}

	b.metrics.Inc(metrics.MetricRetryReplayed)
	b.logger.Debug("replaying operation after reauthentication")
	return fn(ctx)
}
