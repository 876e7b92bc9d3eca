package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeGoogleIDTokenCredential     = "com.google.android.libraries.identity.googleid.TYPE_GOOGLE_ID_TOKEN_CREDENTIAL"
	TypeGoogleIDTokenSIWGCredential = "com.google.android.libraries.identity.googleid.TYPE_GOOGLE_ID_TOKEN_SIWG_CREDENTIAL"

	BundleKeyIDToken = "com.google.android.libraries.identity.googleid.BUNDLE_KEY_ID_TOKEN"
)

var (
	// ErrNothingToClear is returned by backends that held no credential state.
	ErrNothingToClear  = errors.New("google: no credential state to clear")
	ErrIDTokenParsing  = errors.New("google: id token could not be parsed")
	ErrNonceMismatch   = errors.New("google: id token nonce does not match request")
	ErrBackendRequired = errors.New("google: credential backend is required")
)

// CredentialOption is the interaction-style option attached to a request.
type CredentialOption interface {
	RequestNonce() string
	credentialOption()
}

// GoogleIDOption drives the bottom sheet flow. Account filtering and auto
// select are always off.
type GoogleIDOption struct {
	ServerClientID             string
	Nonce                      string
	FilterByAuthorizedAccounts bool
	AutoSelectEnabled          bool
}

func (o GoogleIDOption) RequestNonce() string { return o.Nonce }

func (GoogleIDOption) credentialOption() {}

// SignInWithGoogleOption drives the default inline button flow.
type SignInWithGoogleOption struct {
	ServerClientID string
	Nonce          string
}

func (o SignInWithGoogleOption) RequestNonce() string { return o.Nonce }

func (SignInWithGoogleOption) credentialOption() {}

type CredentialRequest struct {
	UIContext any
	Option    CredentialOption
}

// CustomCredential is the typed credential shape the provider accepts.
type CustomCredential struct {
	Type string
	Data map[string]string
}

// CredentialResponse wraps whatever credential object the platform returned.
type CredentialResponse struct {
	Credential any
}

type CredentialBackend interface {
	GetCredential(ctx context.Context, req CredentialRequest) (CredentialResponse, error)
	ClearCredentialState(ctx context.Context) error
}

// BackendFunc adapts plain functions to CredentialBackend.
type BackendFunc struct {
	Get   func(ctx context.Context, req CredentialRequest) (CredentialResponse, error)
	Clear func(ctx context.Context) error
}

func (f BackendFunc) GetCredential(ctx context.Context, req CredentialRequest) (CredentialResponse, error) {
	if f.Get == nil {
		return CredentialResponse{}, ErrBackendRequired
	}
	return f.Get(ctx, req)
}

func (f BackendFunc) ClearCredentialState(ctx context.Context) error {
	if f.Clear == nil {
		return ErrNothingToClear
	}
	return f.Clear(ctx)
}

func acceptedCredentialType(credentialType string) bool {
	return credentialType == TypeGoogleIDTokenCredential || credentialType == TypeGoogleIDTokenSIWGCredential
}

// asCustomCredential reports whether the platform object has the custom
// credential shape.
func asCustomCredential(credential any) (CustomCredential, bool) {
	switch typed := credential.(type) {
	case CustomCredential:
		return typed, true
	case *CustomCredential:
		if typed == nil {
			return CustomCredential{}, false
		}
		return *typed, true
	default:
		return CustomCredential{}, false
	}
}

// ParseIDToken extracts the id token from the credential bundle.
func ParseIDToken(data map[string]string) (string, error) {
	token := strings.TrimSpace(data[BundleKeyIDToken])
	if token == "" {
		return "", fmt.Errorf("%w: bundle has no %s entry", ErrIDTokenParsing, BundleKeyIDToken)
	}
	return token, nil
}

// VerifyNonceClaim checks that token is a JWT whose nonce claim equals nonce.
// The signature is not checked here; the token service verifies it on
// exchange.
func VerifyNonceClaim(token, nonce string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: %v", ErrIDTokenParsing, err)
	}
	got, _ := claims["nonce"].(string)
	if got == "" || got != nonce {
		return ErrNonceMismatch
	}
	return nil
}
