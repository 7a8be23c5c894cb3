package ebina

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nozomi-hiragi/ebina-go/internal/metrics"
	"github.com/nozomi-hiragi/ebina-go/internal/wire"
	"go.uber.org/zap"
)

// API paths of the Ebina management interface.
const (
	pathLoginOptions   = "/ebina/i/login/option"
	pathLoginPassword  = "/ebina/i/login/password"
	pathLoginVerify    = "/ebina/i/login/verify"
	pathLogout         = "/ebina/i/logout"
	pathPassword       = "/ebina/i/password"
	pathDevices        = "/ebina/i/webauthn/device"
	pathDeviceRegister = "/ebina/i/webauthn/regist"
)

// statusChallenge is how a step-up-gated endpoint answers an initial
// request that needs a fresh proof of identity: the requested effect is
// withheld and a challenge envelope comes back instead.
const statusChallenge = http.StatusAccepted

// ceremonies runs the credential exchanges shared by fresh login,
// recovery, and privileged in-session actions. A ceremony never stores
// challenge or session identifiers on the receiver: they are scoped to a
// single invocation, so concurrent ceremonies against the same endpoint
// cannot cross-talk.
type ceremonies struct {
	dispatch      *dispatcher
	authenticator Authenticator
	prompter      Prompter
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// loginOptions asks the server which authentication method applies to the
// identity. The hint is optional; the server may fall back to
// discoverable credentials. Obtained fresh per attempt, never cached:
// server-side method configuration can change between sessions.
func (c *ceremonies) loginOptions(ctx context.Context, hint string) (*wire.LoginOptions, error) {
	resp, err := c.dispatch.public(ctx, http.MethodPost, pathLoginOptions, wire.OptionsRequest{ID: hint})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChallengeRequest, err)
	}
	switch {
	case resp.OK():
		opts, derr := wire.DecodeLoginOptions(resp.Body)
		if derr != nil {
			return nil, fmt.Errorf("%w: %v", ErrChallengeRequest, derr)
		}
		return opts, nil
	case resp.Status == http.StatusNotFound:
		return nil, ErrIdentityUnknown
	default:
		return nil, fmt.Errorf("%w: status %d", ErrChallengeRequest, resp.Status)
	}
}

// passwordLogin performs the single-request password ceremony and returns
// a fresh bearer token. Failures are surfaced for the caller to present;
// there is no retry at this layer.
func (c *ceremonies) passwordLogin(ctx context.Context, id, secret string) (string, error) {
	body := wire.PasswordLoginRequest{Type: "password", ID: id, Secret: secret}
	resp, err := c.dispatch.public(ctx, http.MethodPost, pathLoginPassword, body)
	if err != nil {
		return "", err
	}

	switch {
	case resp.OK():
		return resp.Text(), nil
	case resp.Status == http.StatusNotFound:
		return "", ErrIdentityUnknown
	case resp.Status == http.StatusUnauthorized, resp.Status == http.StatusForbidden:
		return "", ErrCredentialInvalid
	case resp.Status == http.StatusMethodNotAllowed:
		return "", ErrNoMethodAvailable
	default:
		return "", fmt.Errorf("password login: unexpected status %d", resp.Status)
	}
}

// webauthnLogin runs the silent assertion ceremony for login: the
// authenticator signs the server's challenge, the result goes to the
// verify endpoint under the exact session identifier phase 1 returned,
// and the server answers with a bearer token.
func (c *ceremonies) webauthnLogin(ctx context.Context, options *wire.PublicKeyRequestOptions, sessionID string) (string, error) {
	result, err := c.assert(ctx, options)
	if err != nil {
		return "", err
	}

	resp, err := c.dispatch.public(ctx, http.MethodPost, pathLoginVerify, wire.VerifyRequest{
		Result:    result,
		SessionID: sessionID,
	})
	if err != nil {
		return "", err
	}

	switch {
	case resp.OK():
		return resp.Text(), nil
	case resp.Status == http.StatusGone:
		return "", fmt.Errorf("%w: stale challenge", ErrChallengeVerification)
	case resp.Status == http.StatusUnauthorized, resp.Status == http.StatusForbidden:
		return "", ErrChallengeVerification
	default:
		return "", fmt.Errorf("webauthn verify: unexpected status %d", resp.Status)
	}
}

// stepUp drives the two-phase protocol of a step-up-gated endpoint. The
// initial request goes out as-is; if the server answers with a challenge,
// the ceremony runs the authenticator (or prompts for a code) and
// resubmits the signed result to the identical endpoint. When the first
// response already carries the effect — server policy may waive the
// step-up — the ceremony short-circuits without phase 2.
func (c *ceremonies) stepUp(ctx context.Context, method, path string, body any) (*Response, error) {
	resp, err := c.dispatch.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.Status != statusChallenge {
		c.metrics.Inc(metrics.MetricCeremonyShortCircuit)
		return resp, nil
	}

	challenge, err := wire.DecodeChallenge(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChallengeRequest, err)
	}
	c.metrics.Inc(metrics.MetricCeremonyChallenge)
	c.logger.Debug("step-up challenge received",
		zap.String("path", path), zap.String("type", string(challenge.Type)))

	answer := wire.StepUpAnswer{SessionID: challenge.SessionID, Request: body}
	switch challenge.Type {
	case wire.MethodWebAuthn:
		result, aerr := c.assert(ctx, challenge.Options)
		if aerr != nil {
			return nil, aerr
		}
		answer.Result = result
	case wire.MethodTOTP:
		code, perr := c.promptCode(ctx, challenge.SessionID)
		if perr != nil {
			return nil, perr
		}
		answer.Code = code
	}

	second, err := c.dispatch.do(ctx, method, path, answer)
	if err != nil {
		return nil, err
	}

	switch {
	case second.Status == http.StatusGone:
		return nil, fmt.Errorf("%w: stale challenge", ErrChallengeVerification)
	case second.Status == http.StatusForbidden && challenge.Type == wire.MethodTOTP:
		return nil, ErrCredentialInvalid
	case second.Status == http.StatusForbidden:
		return nil, ErrChallengeVerification
	default:
		return second, nil
	}
}

// assert runs a get-assertion ceremony. Authenticator failures abort
// locally and are never sent to the server.
func (c *ceremonies) assert(ctx context.Context, options *wire.PublicKeyRequestOptions) (*wire.AssertionResult, error) {
	if c.authenticator == nil {
		c.metrics.Inc(metrics.MetricAuthenticatorFailure)
		return nil, fmt.Errorf("%w: no authenticator configured", ErrAuthenticator)
	}

	result, err := c.authenticator.Get(ctx, *options)
	if err != nil {
		c.metrics.Inc(metrics.MetricAuthenticatorFailure)
		c.logger.Debug("authenticator assertion failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAuthenticator, err)
	}
	return result, nil
}

// create runs a create-credential ceremony for device registration.
func (c *ceremonies) create(ctx context.Context, options *wire.PublicKeyCreationOptions) (*wire.AttestationResult, error) {
	if c.authenticator == nil {
		c.metrics.Inc(metrics.MetricAuthenticatorFailure)
		return nil, fmt.Errorf("%w: no authenticator configured", ErrAuthenticator)
	}

	result, err := c.authenticator.Create(ctx, *options)
	if err != nil {
		c.metrics.Inc(metrics.MetricAuthenticatorFailure)
		return nil, fmt.Errorf("%w: %v", ErrAuthenticator, err)
	}
	return result, nil
}

func (c *ceremonies) promptCode(ctx context.Context, sessionID string) (string, error) {
	if c.prompter == nil {
		return "", fmt.Errorf("%w: no prompter configured", ErrAuthenticator)
	}
	code, err := c.prompter.Code(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticator, err)
	}
	return code, nil
}
