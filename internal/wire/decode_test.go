package wire

import (
	"errors"
	"testing"
)

func TestDecodeLoginOptionsWebAuthn(t *testing.T) {
	body := []byte(`{
		"type": "WebAuthn",
		"options": {"challenge": "Y2hhbGxlbmdl", "rpId": "example.com"},
		"sessionId": "s-1",
		"passwordEnabled": true
	}`)

	opts, err := DecodeLoginOptions(body)
	if err != nil {
		t.Fatalf("DecodeLoginOptions failed: %v", err)
	}
	if opts.Type != MethodWebAuthn {
		t.Fatalf("expected WebAuthn variant, got %s", opts.Type)
	}
	if opts.WebAuthn == nil || opts.WebAuthn.Challenge != "Y2hhbGxlbmdl" {
		t.Fatal("expected decoded publicKey request options")
	}
	if opts.SessionID != "s-1" {
		t.Fatalf("expected session id s-1, got %q", opts.SessionID)
	}
	if !opts.PasswordConfigured {
		t.Fatal("expected password fallback flag preserved")
	}
}

func TestDecodeLoginOptionsPassword(t *testing.T) {
	opts, err := DecodeLoginOptions([]byte(`{"type": "Password"}`))
	if err != nil {
		t.Fatalf("DecodeLoginOptions failed: %v", err)
	}
	if opts.Type != MethodPassword {
		t.Fatalf("expected Password variant, got %s", opts.Type)
	}
	if !opts.PasswordConfigured {
		t.Fatal("password variant implies password configured")
	}
	if opts.WebAuthn != nil {
		t.Fatal("password variant must not carry webauthn options")
	}
}

func TestDecodeLoginOptionsRejectsUnknownType(t *testing.T) {
	_, err := DecodeLoginOptions([]byte(`{"type": "Telepathy"}`))
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestDecodeLoginOptionsRejectsIncompleteWebAuthn(t *testing.T) {
	cases := map[string]string{
		"missing options":   `{"type": "WebAuthn", "sessionId": "s-1"}`,
		"missing challenge": `{"type": "WebAuthn", "options": {}, "sessionId": "s-1"}`,
		"missing session":   `{"type": "WebAuthn", "options": {"challenge": "x"}}`,
	}
	for name, body := range cases {
		if _, err := DecodeLoginOptions([]byte(body)); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("%s: expected ErrMalformedPayload, got %v", name, err)
		}
	}
}

func TestDecodeChallengeVariants(t *testing.T) {
	webauthn := []byte(`{"challenge": {"type": "WebAuthn", "options": {"challenge": "abc"}, "sessionId": "c-1"}}`)
	ch, err := DecodeChallenge(webauthn)
	if err != nil {
		t.Fatalf("DecodeChallenge failed: %v", err)
	}
	if ch.Type != MethodWebAuthn || ch.SessionID != "c-1" || ch.Options == nil {
		t.Fatalf("unexpected webauthn challenge: %+v", ch)
	}

	totp := []byte(`{"challenge": {"type": "TOTP", "sessionId": "c-2"}}`)
	ch, err = DecodeChallenge(totp)
	if err != nil {
		t.Fatalf("DecodeChallenge failed: %v", err)
	}
	if ch.Type != MethodTOTP || ch.SessionID != "c-2" {
		t.Fatalf("unexpected totp challenge: %+v", ch)
	}
	if ch.Options != nil {
		t.Fatal("totp challenge must not carry options")
	}
}

func TestDecodeChallengeRejectsBadEnvelopes(t *testing.T) {
	cases := map[string]string{
		"no envelope":     `{}`,
		"missing session": `{"challenge": {"type": "TOTP"}}`,
		"not json":        `challenge`,
	}
	for name, body := range cases {
		if _, err := DecodeChallenge([]byte(body)); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("%s: expected ErrMalformedPayload, got %v", name, err)
		}
	}

	if _, err := DecodeChallenge([]byte(`{"challenge": {"type": "SMS", "sessionId": "c"}}`)); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}
