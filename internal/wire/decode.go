package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Method tags the authentication method variants the server can select.
type Method string

const (
	// MethodWebAuthn requires a platform-authenticator assertion ceremony.
	MethodWebAuthn Method = "WebAuthn"
	// MethodPassword requires a plaintext secret.
	MethodPassword Method = "Password"
	// MethodTOTP requires a user-entered one-time code.
	MethodTOTP Method = "TOTP"
)

// ErrUnknownVariant is returned when a tagged payload carries a type this
// client does not understand.
var ErrUnknownVariant = errors.New("unknown payload variant")

// ErrMalformedPayload is returned when a payload fails structural
// validation at the decode boundary.
var ErrMalformedPayload = errors.New("malformed payload")

// LoginOptions is the decoded answer of the login-options lookup. Exactly
// one variant is populated, selected by Type. PasswordConfigured reports
// whether the server will also accept a password for this identity, which
// gates the WebAuthn-to-password fallback.
type LoginOptions struct {
	Type               Method
	WebAuthn           *PublicKeyRequestOptions
	SessionID          string
	PasswordConfigured bool
}

type loginOptionsJSON struct {
	Type            string                   `json:"type"`
	Options         *PublicKeyRequestOptions `json:"options"`
	SessionID       string                   `json:"sessionId"`
	PasswordEnabled bool                     `json:"passwordEnabled"`
}

// DecodeLoginOptions validates and decodes a login-options response body.
func DecodeLoginOptions(data []byte) (*LoginOptions, error) {
	var raw loginOptionsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch Method(raw.Type) {
	case MethodWebAuthn:
		if raw.Options == nil || raw.Options.Challenge == "" {
			return nil, fmt.Errorf("%w: webauthn options missing challenge", ErrMalformedPayload)
		}
		if raw.SessionID == "" {
			return nil, fmt.Errorf("%w: webauthn options missing session id", ErrMalformedPayload)
		}
		return &LoginOptions{
			Type:               MethodWebAuthn,
			WebAuthn:           raw.Options,
			SessionID:          raw.SessionID,
			PasswordConfigured: raw.PasswordEnabled,
		}, nil
	case MethodPassword:
		return &LoginOptions{
			Type:               MethodPassword,
			PasswordConfigured: true,
		}, nil
	default:
		return nil, fmt.Errorf("%w: login options type %q", ErrUnknownVariant, raw.Type)
	}
}

// Challenge is the decoded step-up challenge a privileged endpoint may
// return instead of its normal effect. For MethodWebAuthn, Options carries
// the assertion request; for MethodTOTP only SessionID is populated.
type Challenge struct {
	Type      Method
	Options   *PublicKeyRequestOptions
	SessionID string
}

type challengeJSON struct {
	Challenge *struct {
		Type      string                   `json:"type"`
		Options   *PublicKeyRequestOptions `json:"options"`
		SessionID string                   `json:"sessionId"`
	} `json:"challenge"`
}

// DecodeChallenge validates and decodes a step-up challenge body.
func DecodeChallenge(data []byte) (*Challenge, error) {
	var raw challengeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw.Challenge == nil {
		return nil, fmt.Errorf("%w: missing challenge envelope", ErrMalformedPayload)
	}
	if raw.Challenge.SessionID == "" {
		return nil, fmt.Errorf("%w: challenge missing session id", ErrMalformedPayload)
	}

	switch Method(raw.Challenge.Type) {
	case MethodWebAuthn:
		if raw.Challenge.Options == nil || raw.Challenge.Options.Challenge == "" {
			return nil, fmt.Errorf("%w: webauthn challenge missing options", ErrMalformedPayload)
		}
		return &Challenge{
			Type:      MethodWebAuthn,
			Options:   raw.Challenge.Options,
			SessionID: raw.Challenge.SessionID,
		}, nil
	case MethodTOTP:
		return &Challenge{
			Type:      MethodTOTP,
			SessionID: raw.Challenge.SessionID,
		}, nil
	default:
		return nil, fmt.Errorf("%w: challenge type %q", ErrUnknownVariant, raw.Challenge.Type)
	}
}

// PasswordLoginRequest is the body of a password login submission.
type PasswordLoginRequest struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// VerifyRequest resubmits a signed assertion for a login ceremony.
type VerifyRequest struct {
	Result    *AssertionResult `json:"result"`
	SessionID string           `json:"sessionId"`
}

// StepUpAnswer resubmits ceremony output to a step-up-gated endpoint. The
// session identifier echoes the challenge it answers; exactly one of
// Result or Code is set, matching the challenge type.
type StepUpAnswer struct {
	SessionID string           `json:"sessionId"`
	Result    *AssertionResult `json:"result,omitempty"`
	Code      string           `json:"code,omitempty"`
	Request   any              `json:"request,omitempty"`
}

// OptionsRequest is the body of the login-options lookup. The identity
// hint is optional; the server falls back to discoverable credentials.
type OptionsRequest struct {
	ID string `json:"id,omitempty"`
}

// RegisterAnswer resubmits a creation-ceremony attestation.
type RegisterAnswer struct {
	Name      string             `json:"name"`
	Result    *AttestationResult `json:"result"`
	SessionID string             `json:"sessionId"`
}

// RegistrationOptions is the decoded answer to a device registration
// request: the creation options for the authenticator and the session the
// attestation must be resubmitted under.
type RegistrationOptions struct {
	Options   *PublicKeyCreationOptions
	SessionID string
}

type registrationOptionsJSON struct {
	Options   *PublicKeyCreationOptions `json:"options"`
	SessionID string                    `json:"sessionId"`
}

// DecodeRegistrationOptions validates and decodes a registration response.
func DecodeRegistrationOptions(data []byte) (*RegistrationOptions, error) {
	var raw registrationOptionsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw.Options == nil || raw.Options.Challenge == "" {
		return nil, fmt.Errorf("%w: registration missing creation options", ErrMalformedPayload)
	}
	if raw.SessionID == "" {
		return nil, fmt.Errorf("%w: registration missing session id", ErrMalformedPayload)
	}
	return &RegistrationOptions{Options: raw.Options, SessionID: raw.SessionID}, nil
}
