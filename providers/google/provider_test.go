package google

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-signin/core"
)

type recordingBackend struct {
	response CredentialResponse
	err      error
	clearErr error
	requests []CredentialRequest
	clears   int
}

func (b *recordingBackend) GetCredential(_ context.Context, req CredentialRequest) (CredentialResponse, error) {
	b.requests = append(b.requests, req)
	return b.response, b.err
}

func (b *recordingBackend) ClearCredentialState(context.Context) error {
	b.clears++
	return b.clearErr
}

type passwordCredential struct {
	ID       string
	Password string
}

func newTestProvider(t *testing.T, cfg Config, params core.SignInParameters, backend CredentialBackend) *Provider {
	t.Helper()
	if cfg.WebClientID == "" {
		cfg.WebClientID = "web-client-id"
	}
	provider, err := New(cfg, params, Dependencies{Backend: backend})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return provider
}

func idTokenResponse(credentialType, token string) CredentialResponse {
	return CredentialResponse{Credential: CustomCredential{
		Type: credentialType,
		Data: map[string]string{BundleKeyIDToken: token},
	}}
}

func TestProvider_SignInReturnsCredential(t *testing.T) {
	for _, credentialType := range []string{TypeGoogleIDTokenCredential, TypeGoogleIDTokenSIWGCredential} {
		backend := &recordingBackend{response: idTokenResponse(credentialType, "abc123")}
		provider := newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, backend)

		credential, err := provider.SignIn(context.Background())
		if err != nil {
			t.Fatalf("sign in: %v", err)
		}
		if credential.Token() != "abc123" {
			t.Fatalf("expected token abc123, got %q", credential.Token())
		}
		if credential.ProviderName() != core.ProviderGoogle {
			t.Fatalf("expected google provider, got %q", credential.ProviderName())
		}
	}
}

func TestProvider_SignInOptionsFollowInteractionStyle(t *testing.T) {
	inline := &recordingBackend{response: idTokenResponse(TypeGoogleIDTokenCredential, "abc123")}
	newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle, UIContext: "activity"}, inline).
		SignIn(context.Background())

	sheet := &recordingBackend{response: idTokenResponse(TypeGoogleIDTokenCredential, "abc123")}
	newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle, UseBottomSheet: true}, sheet).
		SignIn(context.Background())

	inlineOption, ok := inline.requests[0].Option.(SignInWithGoogleOption)
	if !ok {
		t.Fatalf("expected sign in with google option, got %T", inline.requests[0].Option)
	}
	if inlineOption.ServerClientID != "web-client-id" || inlineOption.Nonce == "" {
		t.Fatalf("unexpected inline option: %#v", inlineOption)
	}
	if inline.requests[0].UIContext != "activity" {
		t.Fatalf("expected ui context to pass through untouched")
	}

	sheetOption, ok := sheet.requests[0].Option.(GoogleIDOption)
	if !ok {
		t.Fatalf("expected google id option, got %T", sheet.requests[0].Option)
	}
	if sheetOption.FilterByAuthorizedAccounts || sheetOption.AutoSelectEnabled {
		t.Fatalf("expected filter-free, no auto select option: %#v", sheetOption)
	}
	if sheetOption.Nonce == "" || sheetOption.Nonce == inlineOption.Nonce {
		t.Fatalf("expected a fresh nonce per attempt")
	}
	decoded, err := core.RawURLCodec{}.DecodeString(sheetOption.Nonce)
	if err != nil || len(decoded) != core.DefaultNonceBytes {
		t.Fatalf("expected %d byte url-safe nonce, got %q (%v)", core.DefaultNonceBytes, sheetOption.Nonce, err)
	}
}

func TestProvider_SignInRejectsUnsupportedType(t *testing.T) {
	backend := &recordingBackend{response: idTokenResponse("other-type", "abc123")}
	provider := newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, backend)

	_, err := provider.SignIn(context.Background())
	if !core.HasSubError(err, core.SubErrorUnsupportedCredentialType) {
		t.Fatalf("expected unsupported credential type, got %v", err)
	}
	if core.ErrorCodeOf(err) != core.ErrorCodeFederatedSignInFailed {
		t.Fatalf("expected federated_sign_in_failed, got %q", core.ErrorCodeOf(err))
	}
	if core.IsRetryable(err) {
		t.Fatalf("expected malformed response to be non retryable")
	}
}

func TestProvider_SignInRejectsUnexpectedShape(t *testing.T) {
	backend := &recordingBackend{response: CredentialResponse{Credential: passwordCredential{ID: "a", Password: "b"}}}
	provider := newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, backend)

	_, err := provider.SignIn(context.Background())
	if !core.HasSubError(err, core.SubErrorUnexpectedCredentialType) {
		t.Fatalf("expected unexpected credential type, got %v", err)
	}
}

func TestProvider_SignInParseFailure(t *testing.T) {
	backend := &recordingBackend{response: CredentialResponse{Credential: &CustomCredential{
		Type: TypeGoogleIDTokenCredential,
		Data: map[string]string{},
	}}}
	provider := newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, backend)

	_, err := provider.SignIn(context.Background())
	if !core.HasSubError(err, core.SubErrorSignInFailed) {
		t.Fatalf("expected sign_in_failed, got %v", err)
	}
	if !errors.Is(err, ErrIDTokenParsing) {
		t.Fatalf("expected parse cause to be kept")
	}
}

func TestProvider_SignInBackendFailures(t *testing.T) {
	network := &recordingBackend{err: &net.DNSError{Err: "no such host", Name: "accounts.google.com", IsNotFound: true}}
	_, err := newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, network).
		SignIn(context.Background())
	if !core.HasSubError(err, core.SubErrorNoNetwork) {
		t.Fatalf("expected no network, got %v", err)
	}

	cancelled := &recordingBackend{err: errors.New("user cancelled the selector")}
	_, err = newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, cancelled).
		SignIn(context.Background())
	if !core.HasSubError(err, core.SubErrorSignInFailed) {
		t.Fatalf("expected sign_in_failed, got %v", err)
	}
}

func TestProvider_VerifyNonceClaim(t *testing.T) {
	backend := &recordingBackend{}
	provider := newTestProvider(t, Config{VerifyNonceClaim: true}, core.SignInParameters{ProviderName: core.ProviderGoogle}, backend)

	backend.response = idTokenResponse(TypeGoogleIDTokenCredential, signedToken(t, "not-the-request-nonce"))
	if _, err := provider.SignIn(context.Background()); !errors.Is(err, ErrNonceMismatch) {
		t.Fatalf("expected nonce mismatch, got %v", err)
	}

	bound := &nonceEchoBackend{}
	provider = newTestProvider(t, Config{VerifyNonceClaim: true}, core.SignInParameters{ProviderName: core.ProviderGoogle}, bound)
	bound.sign = func(nonce string) string { return signedToken(t, nonce) }
	credential, err := provider.SignIn(context.Background())
	if err != nil {
		t.Fatalf("sign in with bound nonce: %v", err)
	}
	if credential.Token() == "" {
		t.Fatalf("expected token")
	}
}

type nonceEchoBackend struct {
	sign func(nonce string) string
}

func (b *nonceEchoBackend) GetCredential(_ context.Context, req CredentialRequest) (CredentialResponse, error) {
	return idTokenResponse(TypeGoogleIDTokenCredential, b.sign(req.Option.RequestNonce())), nil
}

func (b *nonceEchoBackend) ClearCredentialState(context.Context) error { return nil }

func signedToken(t *testing.T, nonce string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   "web-client-id",
		"nonce": nonce,
		"iat":   time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestProvider_SignOut(t *testing.T) {
	nothing := &recordingBackend{clearErr: ErrNothingToClear}
	provider := newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, nothing)
	if err := provider.SignOut(context.Background()); err != nil {
		t.Fatalf("expected nothing-to-clear to succeed, got %v", err)
	}
	if nothing.clears != 1 {
		t.Fatalf("expected one clear call")
	}

	offline := &recordingBackend{clearErr: context.DeadlineExceeded}
	provider = newTestProvider(t, Config{}, core.SignInParameters{ProviderName: core.ProviderGoogle}, offline)
	err := provider.SignOut(context.Background())
	if !core.HasSubError(err, core.SubErrorConnectionTimeout) {
		t.Fatalf("expected classified transport failure, got %v", err)
	}
}

func TestNew_RequiresBackendAndClientID(t *testing.T) {
	if _, err := New(Config{WebClientID: "id"}, core.SignInParameters{}, Dependencies{}); err == nil {
		t.Fatalf("expected missing backend to fail")
	}
	if _, err := New(Config{}, core.SignInParameters{}, Dependencies{Backend: &recordingBackend{}}); err == nil {
		t.Fatalf("expected missing web client id to fail")
	}
}
