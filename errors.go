package ebina

import "errors"

var (
	// ErrAuthRequired signals that the server rejected a request as
	// unauthorized. It is a control-flow signal, not a user-facing error:
	// it propagates through ordinary error returns until a [Boundary]
	// intercepts it and runs recovery. It carries no recovery state.
	ErrAuthRequired = errors.New("authorization required")

	// ErrClientNotReady is returned when the client was not fully built.
	ErrClientNotReady = errors.New("client not initialized")

	// ErrChallengeRequest is returned when the first phase of a step-up
	// ceremony could not obtain a challenge from the server.
	ErrChallengeRequest = errors.New("challenge request failed")

	// ErrAuthenticator is returned when the platform authenticator fails
	// locally (user cancel, no authenticator, timeout). Nothing is sent
	// to the server in this case.
	ErrAuthenticator = errors.New("authenticator failed")

	// ErrChallengeVerification is returned when the server rejects a
	// signed ceremony result, typically a stale or replayed challenge.
	// Restarting the ceremony obtains a fresh challenge.
	ErrChallengeVerification = errors.New("challenge verification failed")

	// ErrCredentialInvalid is returned for a wrong password or one-time
	// code. Recoverable by re-prompting.
	ErrCredentialInvalid = errors.New("invalid credential")

	// ErrIdentityUnknown is returned when no identity can be determined
	// for recovery, or the server does not know the identity. Terminal.
	ErrIdentityUnknown = errors.New("identity unknown")

	// ErrNoMethodAvailable is returned when the server has no usable
	// authentication method configured for the identity. Terminal.
	ErrNoMethodAvailable = errors.New("no authentication method available")

	// ErrSessionTerminated wraps the cause of a terminal recovery
	// failure. The token has been cleared; the application must return
	// to its entry surface and perform a fresh login.
	ErrSessionTerminated = errors.New("session terminated")

	// ErrPromptDismissed is returned by a [Prompter] when the user closes
	// the credential prompt without answering.
	ErrPromptDismissed = errors.New("prompt dismissed")

	// ErrReauthenticated is returned by [Boundary.Run] under
	// [RetryNever] after successful recovery: the new token is installed
	// but the original operation was not replayed and must be
	// re-triggered by the caller.
	ErrReauthenticated = errors.New("reauthenticated without replaying operation")
)
