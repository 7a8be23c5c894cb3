package ebina

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nozomi-hiragi/ebina-go/internal/events"
	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"github.com/nozomi-hiragi/ebina-go/internal/wire"
	"go.uber.org/zap"
)

// EventSink receives session lifecycle events; see [NewChannelSink] and
// [NewJSONWriterSink].
type EventSink = events.Sink

// Event is one session lifecycle occurrence delivered to an [EventSink].
type Event = events.Event

// NewChannelSink creates a buffered channel-based [EventSink].
func NewChannelSink(buffer int) *events.ChannelSink {
	return events.NewChannelSink(buffer)
}

// NewJSONWriterSink creates an [EventSink] that writes one JSON object
// per line to w.
func NewJSONWriterSink(w io.Writer) *events.JSONWriterSink {
	return events.NewJSONWriterSink(w)
}

// MetricsSnapshot is a point-in-time copy of client metrics.
type MetricsSnapshot = metrics.Snapshot

// Client is the authenticated entry point to the Ebina management API.
// Construct through [Builder.Build]; safe for concurrent use.
type Client struct {
	config     Config
	tokens     *TokenState
	dispatch   *dispatcher
	ceremonies *ceremonies
	reauth     *reauthenticator
	boundary   *Boundary
	metrics    *metrics.Metrics
	events     *events.Dispatcher
	logger     *zap.Logger
}

// Do sends an authenticated request under the client's recovery
// boundary: a 401 triggers transparent reauthentication and, per the
// configured [RetryPolicy], a single replay. Statuses other than 401 —
// business 4xx/5xx included — come back as the Response for the caller
// to interpret.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var resp *Response
	err := c.boundary.Run(ctx, func(ctx context.Context) error {
		r, derr := c.dispatch.do(ctx, method, path, body)
		if derr == nil {
			resp = r
		}
		return derr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// StepUp sends a request to a step-up-gated endpoint, driving the
// two-phase challenge ceremony when the server demands one. Runs under
// the recovery boundary like [Client.Do].
func (c *Client) StepUp(ctx context.Context, method, path string, body any) (*Response, error) {
	var resp *Response
	err := c.boundary.Run(ctx, func(ctx context.Context) error {
		r, serr := c.ceremonies.stepUp(ctx, method, path, body)
		if serr == nil {
			resp = r
		}
		return serr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Boundary exposes the client's recovery boundary for grouping arbitrary
// operations under one interception point.
func (c *Client) Boundary() *Boundary {
	return c.boundary
}

// Login establishes a fresh session for the identity: the server selects
// the method, the client runs the matching ceremony (silent WebAuthn, or
// password via the prompter), and the resulting token is installed.
func (c *Client) Login(ctx context.Context, identity string) error {
	opts, err := c.ceremonies.loginOptions(ctx, identity)
	if err != nil {
		return err
	}

	if opts.Type == wire.MethodWebAuthn {
		token, werr := c.ceremonies.webauthnLogin(ctx, opts.WebAuthn, opts.SessionID)
		if werr == nil {
			return c.installLoginToken(ctx, identity, token)
		}
		if ctx.Err() != nil || !opts.PasswordConfigured {
			return werr
		}
		c.metrics.Inc(metrics.MetricPasswordFallback)
	}

	if c.ceremonies.prompter == nil {
		return ErrNoMethodAvailable
	}
	for attempt := 1; attempt <= c.config.PasswordAttemptLimit; attempt++ {
		secret, perr := c.ceremonies.prompter.Password(ctx, identity, attempt)
		if perr != nil {
			return perr
		}
		token, lerr := c.ceremonies.passwordLogin(ctx, identity, secret)
		if lerr == nil {
			return c.installLoginToken(ctx, identity, token)
		}
		if !errors.Is(lerr, ErrCredentialInvalid) {
			return lerr
		}
	}
	return ErrCredentialInvalid
}

// LoginWithPassword establishes a fresh session with an explicit secret,
// bypassing the prompter. Single attempt; failures surface to the caller.
func (c *Client) LoginWithPassword(ctx context.Context, identity, secret string) error {
	token, err := c.ceremonies.passwordLogin(ctx, identity, secret)
	if err != nil {
		return err
	}
	return c.installLoginToken(ctx, identity, token)
}

func (c *Client) installLoginToken(ctx context.Context, identity, token string) error {
	if err := c.tokens.Set(ctx, token); err != nil {
		c.logger.Warn("login token installed but not persisted", zap.Error(err))
	}
	c.events.Emit(ctx, events.New(events.TypeLoginSuccess, identity, nil, nil))
	c.events.Emit(ctx, events.New(events.TypeTokenInstalled, identity, nil, nil))
	return nil
}

// Logout tells the server to drop the session (best effort) and clears
// the local token and persisted record.
func (c *Client) Logout(ctx context.Context) error {
	identity := c.tokens.IdentityHint()

	if _, ok := c.tokens.Get(); ok {
		if _, err := c.dispatch.do(ctx, http.MethodPost, pathLogout, nil); err != nil &&
			!errors.Is(err, ErrAuthRequired) {
			c.logger.Warn("server logout failed, clearing locally", zap.Error(err))
		}
	}

	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	c.events.Emit(ctx, events.New(events.TypeLogout, identity, nil, nil))
	return nil
}

// ChangePassword updates the account password. The endpoint is step-up
// gated: the server may demand a fresh WebAuthn or one-time-code proof
// before accepting the change.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		Current string `json:"current"`
		New     string `json:"new"`
	}{Current: current, New: next}

	resp, err := c.StepUp(ctx, http.MethodPut, pathPassword, body)
	if err != nil {
		return err
	}
	switch {
	case resp.OK():
		return nil
	case resp.Status == http.StatusForbidden:
		return ErrCredentialInvalid
	default:
		return fmt.Errorf("change password: unexpected status %d", resp.Status)
	}
}

// Identity returns the decoded claims of the current token.
func (c *Client) Identity() (*Claims, bool) {
	return c.tokens.Claims()
}

// Token returns the current bearer token.
func (c *Client) Token() (string, bool) {
	return c.tokens.Get()
}

// SessionExpired reports whether the current token is absent or expired.
// Purely local; no network call.
func (c *Client) SessionExpired() bool {
	return c.tokens.Expired()
}

// ReauthState reports the phase of any in-flight recovery.
func (c *Client) ReauthState() ReauthState {
	return c.reauth.State()
}

// Metrics returns a point-in-time copy of client metrics.
func (c *Client) Metrics() MetricsSnapshot {
	return c.metrics.TakeSnapshot()
}

// Close drains and stops the event dispatcher. The client must not be
// used afterwards.
func (c *Client) Close() {
	c.events.Close()
}
