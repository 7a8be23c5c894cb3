// Package ebina is a Go client for the Ebina management API with
// transparent step-up re-authentication. It holds the current bearer
// token, detects when the server rejects a request as unauthorized, and
// re-establishes authorization — via a WebAuthn authenticator, a one-time
// code, or a password — before the calling operation observes anything
// beyond an ordinary retry.
//
// The package is designed for long-lived client processes: Client methods
// are safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// ebina is the public surface. It exposes [Client], [Builder], [Config],
// the [Authenticator] and [Prompter] collaborator interfaces, and value
// types (Claims, Response, Device). Wire payload validation, event
// dispatch, and metric storage live under internal/ and are never
// exported. Persistence lives in the store subpackage.
//
// # What this package must NOT do
//
//   - Verify WebAuthn signatures or token signatures; that is the
//     server's job. The client decodes claims without verification, for
//     expiry and identity display only.
//   - Start more than one recovery run per authorization outage;
//     concurrent callers join the in-flight run.
//   - Attach anything but the current token to outgoing requests, or
//     reuse a replaced token.
package ebina
