package ebina

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/nozomi-hiragi/ebina-go/internal/events"
	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"github.com/nozomi-hiragi/ebina-go/internal/wire"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReauthState is the observable phase of the recovery state machine.
type ReauthState int32

const (
	// StateIdle means no recovery is in flight.
	StateIdle ReauthState = iota
	// StateDeterminingMethod means the applicable method is being looked up.
	StateDeterminingMethod
	// StateAwaitingWebAuthn means an assertion ceremony is running.
	StateAwaitingWebAuthn
	// StateAwaitingPassword means a password prompt is pending.
	StateAwaitingPassword
)

// reauthenticator recovers from an authorization outage: it determines
// the applicable method for the current identity, runs the ceremony,
// installs the new token, and resolves every waiting caller.
//
// At most one recovery runs at a time. The singleflight group is the
// shared attempt: callers that trigger recovery while one is in flight
// join it and observe the same resolved token or the same terminal
// failure, and the attempt resets to idle when the shared call returns.
type reauthenticator struct {
	group      singleflight.Group
	state      atomic.Int32
	tokens     *TokenState
	ceremonies *ceremonies
	prompter   Prompter
	attempts   int
	logger     *zap.Logger
	metrics    *metrics.Metrics
	events     *events.Dispatcher
}

// State reports the current recovery phase.
func (r *reauthenticator) State() ReauthState {
	return ReauthState(r.state.Load())
}

// Recover resolves one authorization outage episode and returns the
// newly installed token. Concurrent calls coalesce onto a single run.
func (r *reauthenticator) Recover(ctx context.Context) (string, error) {
	result, err, shared := r.group.Do("reauth", func() (any, error) {
		return r.run(ctx)
	})
	if shared {
		r.metrics.Inc(metrics.MetricReauthJoined)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (r *reauthenticator) run(ctx context.Context) (string, error) {
	r.metrics.Inc(metrics.MetricReauthStarted)
	r.state.Store(int32(StateDeterminingMethod))
	defer r.state.Store(int32(StateIdle))

	hint := r.tokens.IdentityHint()
	r.events.Emit(ctx, events.New(events.TypeReauthStarted, hint, nil, nil))
	r.logger.Info("reauthentication started", zap.String("identity", hint))

	if hint == "" {
		// Nothing to recover for: no prior token and no stored identity.
		return "", r.terminal(ctx, hint, ErrIdentityUnknown)
	}

	opts, err := r.ceremonies.loginOptions(ctx, hint)
	if err != nil {
		return "", r.terminal(ctx, hint, err)
	}
	r.events.Emit(ctx, events.New(events.TypeReauthMethod, hint, nil,
		map[string]string{"method": string(opts.Type)}))

	if opts.Type == wire.MethodWebAuthn {
		r.state.Store(int32(StateAwaitingWebAuthn))
		token, werr := r.ceremonies.webauthnLogin(ctx, opts.WebAuthn, opts.SessionID)
		if werr == nil {
			return token, r.resolve(ctx, hint, token, "WebAuthn")
		}
		if ctx.Err() != nil {
			return "", r.terminal(ctx, hint, werr)
		}
		if !opts.PasswordConfigured {
			return "", r.terminal(ctx, hint, werr)
		}
		r.metrics.Inc(metrics.MetricPasswordFallback)
		r.logger.Info("webauthn failed, falling back to password",
			zap.String("identity", hint), zap.Error(werr))
	}

	r.state.Store(int32(StateAwaitingPassword))
	token, err := r.passwordLoop(ctx, hint)
	if err != nil {
		return "", r.terminal(ctx, hint, err)
	}
	return token, r.resolve(ctx, hint, token, "Password")
}

// passwordLoop re-prompts on invalid passwords up to the configured
// limit. Any other failure, including a dismissed prompt, ends the loop.
func (r *reauthenticator) passwordLoop(ctx context.Context, identity string) (string, error) {
	if r.prompter == nil {
		return "", ErrNoMethodAvailable
	}

	for attempt := 1; attempt <= r.attempts; attempt++ {
		secret, perr := r.prompter.Password(ctx, identity, attempt)
		if perr != nil {
			return "", perr
		}

		token, err := r.ceremonies.passwordLogin(ctx, identity, secret)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, ErrCredentialInvalid) {
			return "", err
		}
		r.logger.Debug("invalid password, re-prompting",
			zap.String("identity", identity), zap.Int("attempt", attempt))
	}
	return "", ErrCredentialInvalid
}

// resolve installs the new token. The old token is replaced atomically;
// nothing dispatched after this point can carry it.
func (r *reauthenticator) resolve(ctx context.Context, identity, token, method string) error {
	if err := r.tokens.Set(ctx, token); err != nil {
		r.logger.Warn("token installed but not persisted", zap.Error(err))
	}
	r.metrics.Inc(metrics.MetricReauthSuccess)
	r.events.Emit(ctx, events.New(events.TypeReauthResolved, identity, nil,
		map[string]string{"method": method}))
	r.events.Emit(ctx, events.New(events.TypeTokenInstalled, identity, nil, nil))
	r.logger.Info("reauthentication resolved", zap.String("identity", identity),
		zap.String("method", method))
	return nil
}

// terminal ends the episode as a forced logout: the token is cleared and
// every waiting caller observes ErrSessionTerminated with the cause.
func (r *reauthenticator) terminal(ctx context.Context, identity string, cause error) error {
	_ = r.tokens.Clear(ctx)
	r.metrics.Inc(metrics.MetricReauthFailure)
	r.events.Emit(ctx, events.New(events.TypeReauthFailed, identity, cause, nil))
	r.events.Emit(ctx, events.New(events.TypeTokenCleared, identity, nil, nil))
	r.logger.Warn("reauthentication failed terminally",
		zap.String("identity", identity), zap.Error(cause))
	return errors.Join(ErrSessionTerminated, cause)
}
