package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProviderName = errors.New("core: invalid federated provider name")
	ErrCorrelationRequired = errors.New("core: correlation id is required")
)

const (
	// RefreshTokenCredentialHeader carries the PRT-bound credential on SSO navigations.
	RefreshTokenCredentialHeader = "x-ms-RefreshTokenCredential"
	// FederatedIDTokenHeader is the only key produced by FederatedCredential.AsHeaders.
	FederatedIDTokenHeader = "x-ms-fidp-idtoken"

	DefaultNonceParameter     = "sso_nonce"
	DefaultLoginHintParameter = "login_hint"
)

type ProviderName string

const (
	ProviderGoogle ProviderName = "google"
)

// ProviderNames lists every enumerated federated provider.
func ProviderNames() []ProviderName {
	return []ProviderName{ProviderGoogle}
}

func ParseProviderName(raw string) (ProviderName, error) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ProviderNames() {
		if name == known {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProviderName, raw)
}

func (n ProviderName) String() string {
	return string(n)
}

// FederatedCredential is proof of identity issued by an external provider.
type FederatedCredential struct {
	providerName ProviderName
	token        string
}

func NewFederatedCredential(provider ProviderName, token string) FederatedCredential {
	return FederatedCredential{providerName: provider, token: token}
}

func (c FederatedCredential) ProviderName() ProviderName {
	return c.providerName
}

func (c FederatedCredential) Token() string {
	return c.token
}

// AsHeaders returns a new single-entry map on every call.
func (c FederatedCredential) AsHeaders() map[string]string {
	return map[string]string{FederatedIDTokenHeader: c.token}
}

func (c FederatedCredential) String() string {
	return fmt.Sprintf("FederatedCredential{provider=%s token=%s}", c.providerName, redactSecret(c.token))
}

// SignInParameters configure one federated sign-in or sign-out attempt.
// UIContext is handed to the platform backend untouched.
type SignInParameters struct {
	UIContext      any
	UseBottomSheet bool
	ProviderName   ProviderName
}

func (p SignInParameters) Validate() error {
	if strings.TrimSpace(string(p.ProviderName)) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidProviderName)
	}
	return nil
}

type SignInStartParameters struct {
	Username       string
	Password       []byte
	Scopes         []string
	ChallengeTypes []string
}

func (p SignInStartParameters) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("core: username is required")
	}
	return nil
}

type NativeSignInRequest struct {
	CorrelationID  string
	Username       string
	Password       []byte
	Scopes         []string
	ChallengeTypes []string
}

type NativeSignInResponse struct {
	// Tokens is set when the sign-in completed without a further challenge.
	Tokens            *NativeTokens
	ContinuationToken string
	ChallengeType     string
	Channel           string
	TargetLabel       string
}

type NativeTokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int64
}

func (t NativeTokens) String() string {
	return fmt.Sprintf("NativeTokens{access=%s id=%s refresh=%s expires_in=%d}",
		redactSecret(t.AccessToken), redactSecret(t.IDToken), redactSecret(t.RefreshToken), t.ExpiresIn)
}

func redactSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "<empty>"
	}
	if len(value) <= 6 {
		return "***"
	}
	return value[:3] + "***(" + fmt.Sprint(len(value)) + ")"
}
