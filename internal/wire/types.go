package wire

// CredentialDescriptor identifies a credential the authenticator may use.
type CredentialDescriptor struct {
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	Transports []string `json:"transports,omitempty"`
}

// PublicKeyRequestOptions is the server-supplied assertion request, passed
// verbatim to the platform authenticator. Binary fields are base64url.
type PublicKeyRequestOptions struct {
	Challenge        string                 `json:"challenge"`
	Timeout          int64                  `json:"timeout,omitempty"`
	RPID             string                 `json:"rpId,omitempty"`
	AllowCredentials []CredentialDescriptor `json:"allowCredentials,omitempty"`
	UserVerification string                 `json:"userVerification,omitempty"`
}

// RelyingParty names the WebAuthn relying party in creation options.
type RelyingParty struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// UserEntity identifies the account a new credential is created for.
type UserEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// CredentialParameter is one acceptable credential algorithm.
type CredentialParameter struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

// PublicKeyCreationOptions is the server-supplied registration request for
// a credential-creation ceremony.
type PublicKeyCreationOptions struct {
	RP                 RelyingParty           `json:"rp"`
	User               UserEntity             `json:"user"`
	Challenge          string                 `json:"challenge"`
	PubKeyCredParams   []CredentialParameter  `json:"pubKeyCredParams"`
	Timeout            int64                  `json:"timeout,omitempty"`
	ExcludeCredentials []CredentialDescriptor `json:"excludeCredentials,omitempty"`
	Attestation        string                 `json:"attestation,omitempty"`
}

// AssertionResponse carries the signed output of a get-assertion ceremony.
type AssertionResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AuthenticatorData string `json:"authenticatorData"`
	Signature         string `json:"signature"`
	UserHandle        string `json:"userHandle,omitempty"`
}

// AssertionResult is the authenticator's answer to request options.
type AssertionResult struct {
	ID       string            `json:"id"`
	RawID    string            `json:"rawId"`
	Type     string            `json:"type"`
	Response AssertionResponse `json:"response"`
}

// AttestationResponse carries the output of a create-credential ceremony.
type AttestationResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AttestationObject string `json:"attestationObject"`
}

// AttestationResult is the authenticator's answer to creation options.
type AttestationResult struct {
	ID       string              `json:"id"`
	RawID    string              `json:"rawId"`
	Type     string              `json:"type"`
	Response AttestationResponse `json:"response"`
}

// Device is one registered WebAuthn credential as reported by the device
// listing endpoint.
type Device struct {
	Name         string `json:"name"`
	CredentialID string `json:"credentialId"`
	RegisteredAt int64  `json:"registeredAt,omitempty"`
	Enabled      bool   `json:"enabled"`
}
