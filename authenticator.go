package ebina

import (
	"context"

	"github.com/nozomi-hiragi/ebina-go/internal/wire"
)

// PublicKeyRequestOptions is the server-supplied assertion request passed
// verbatim to the platform authenticator.
type PublicKeyRequestOptions = wire.PublicKeyRequestOptions

// PublicKeyCreationOptions is the server-supplied registration request
// for a credential-creation ceremony.
type PublicKeyCreationOptions = wire.PublicKeyCreationOptions

// CredentialDescriptor identifies a credential the authenticator may use.
type CredentialDescriptor = wire.CredentialDescriptor

// AssertionResult is the signed output of a get-assertion ceremony.
type AssertionResult = wire.AssertionResult

// AttestationResult is the output of a create-credential ceremony.
type AttestationResult = wire.AttestationResult

// Device is one registered WebAuthn credential.
type Device = wire.Device

// Authenticator performs WebAuthn ceremonies against a platform or
// roaming credential authenticator. Implementations receive the server's
// options untouched and return the authenticator's result untouched, or
// an error when the user cancels, no authenticator is present, or the
// ceremony times out. An error never reaches the server; the ceremony
// aborts locally.
type Authenticator interface {
	Get(ctx context.Context, options PublicKeyRequestOptions) (*AssertionResult, error)
	Create(ctx context.Context, options PublicKeyCreationOptions) (*AttestationResult, error)
}

// Prompter supplies user-entered credentials when a ceremony needs text
// input. Password is called once per attempt with the attempt number
// (starting at 1); Code is called when a step-up challenge asks for a
// one-time code. Returning [ErrPromptDismissed] aborts the ceremony
// locally without contacting the server.
type Prompter interface {
	Password(ctx context.Context, identity string, attempt int) (string, error)
	Code(ctx context.Context, sessionID string) (string, error)
}
