package signin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/providers/google"
)

func testConfig() Config {
	return Config{Google: core.GoogleConfig{WebClientID: "web-client-id"}}
}

func googleBackend(credentialType, token string, clearErr error) google.CredentialBackend {
	return google.BackendFunc{
		Get: func(context.Context, google.CredentialRequest) (google.CredentialResponse, error) {
			return google.CredentialResponse{Credential: google.CustomCredential{
				Type: credentialType,
				Data: map[string]string{google.BundleKeyIDToken: token},
			}}, nil
		},
		Clear: func(context.Context) error { return clearErr },
	}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	client, err := New(testConfig(), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

var googleParams = SignInParameters{ProviderName: ProviderGoogle}

func TestClient_SignInModesAgree(t *testing.T) {
	client := newTestClient(t, WithGoogleBackend(googleBackend(google.TypeGoogleIDTokenCredential, "abc123", nil)))

	suspended, err := client.SignIn(context.Background(), googleParams)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	blocking, err := client.SignInSync(googleParams)
	if err != nil {
		t.Fatalf("sign in sync: %v", err)
	}

	var (
		wg       sync.WaitGroup
		callback Result
	)
	wg.Add(1)
	correlationID, err := client.SignInAsync(googleParams, func(result Result) {
		callback = result
		wg.Done()
	}, func(result ErrorResult) {
		t.Errorf("unexpected failure: %v", result.Err)
		wg.Done()
	})
	if err != nil {
		t.Fatalf("sign in async: %v", err)
	}
	wg.Wait()

	for name, result := range map[string]Result{"suspend": suspended, "blocking": blocking, "callback": callback} {
		credential, ok := core.AsFederatedCredential(result)
		if !ok || credential.Token() != "abc123" {
			t.Fatalf("%s: expected abc123 credential, got %#v", name, result)
		}
		if credential.AsHeaders()[core.FederatedIDTokenHeader] != "abc123" {
			t.Fatalf("%s: expected id token header", name)
		}
	}
	if callback.CorrelationID() != correlationID {
		t.Fatalf("expected callback correlation %q, got %q", correlationID, callback.CorrelationID())
	}
	if suspended.CorrelationID() == blocking.CorrelationID() {
		t.Fatalf("expected distinct correlation ids")
	}
}

func TestClient_UnsupportedCredentialType(t *testing.T) {
	client := newTestClient(t, WithGoogleBackend(googleBackend("other-type", "abc123", nil)))

	result, err := client.SignIn(context.Background(), googleParams)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if result.Kind() != core.ResultKindError {
		t.Fatalf("expected error result, got %#v", result)
	}
	if !core.HasSubError(core.ResultError(result), core.SubErrorUnsupportedCredentialType) {
		t.Fatalf("expected unsupported credential type, got %v", core.ResultError(result))
	}
}

func TestClient_SignOutNothingToClear(t *testing.T) {
	client := newTestClient(t, WithGoogleBackend(googleBackend(google.TypeGoogleIDTokenCredential, "abc123", google.ErrNothingToClear)))

	result, err := client.SignOut(context.Background(), googleParams)
	if err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if result.Kind() != core.ResultKindSuccess {
		t.Fatalf("expected sign-out success, got %#v", result)
	}
}

type nativeStub struct {
	response core.NativeSignInResponse
	err      error
}

func (n nativeStub) SignInStart(context.Context, core.NativeSignInRequest) (core.NativeSignInResponse, error) {
	return n.response, n.err
}

func TestClient_SignInStart(t *testing.T) {
	client := newTestClient(t, WithNativeAuthClient(nativeStub{response: core.NativeSignInResponse{
		ContinuationToken: "ct-1",
		ChallengeType:     "oob",
	}}))

	result, err := client.SignInStart(context.Background(), SignInStartParameters{Username: "user@example.com"})
	if err != nil {
		t.Fatalf("sign in start: %v", err)
	}
	challenge, ok := result.(ChallengeResult)
	if !ok || challenge.ContinuationToken != "ct-1" {
		t.Fatalf("expected challenge result, got %#v", result)
	}

	rejected, err := client.SignInStart(context.Background(), SignInStartParameters{})
	if err != nil {
		t.Fatalf("sign in start: %v", err)
	}
	if core.ErrorCodeOf(core.ResultError(rejected)) != core.ErrorCodeInvalidParameter {
		t.Fatalf("expected invalid parameter, got %v", core.ResultError(rejected))
	}
}

func TestClient_ProviderConstructorOverride(t *testing.T) {
	client := newTestClient(t, WithProviderConstructor(ProviderGoogle, func(core.SignInParameters) (core.FederatedSignInProvider, error) {
		return nil, core.NewIOError(core.SubErrorNoNetwork, errors.New("offline"))
	}))

	result, err := client.SignIn(context.Background(), googleParams)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if !core.HasSubError(core.ResultError(result), core.SubErrorNoNetwork) {
		t.Fatalf("expected no_network from constructor, got %v", core.ResultError(result))
	}
}

func TestClient_SignInHonoursContext(t *testing.T) {
	release := make(chan struct{})
	backend := google.BackendFunc{
		Get: func(context.Context, google.CredentialRequest) (google.CredentialResponse, error) {
			<-release
			return google.CredentialResponse{Credential: google.CustomCredential{
				Type: google.TypeGoogleIDTokenCredential,
				Data: map[string]string{google.BundleKeyIDToken: "late"},
			}}, nil
		},
	}
	client := newTestClient(t, WithGoogleBackend(backend))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.SignIn(ctx, googleParams); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_NewInterceptorUsesRuntimeConfig(t *testing.T) {
	client := newTestClient(t)
	interceptor := client.NewInterceptor(core.RefreshTokenCredentialIssuerFunc(func(context.Context, string, string, string) (string, error) {
		return "fresh", nil
	}))

	headers := map[string]string{core.RefreshTokenCredentialHeader: "stale", "Accept": "text/html"}
	nav, err := interceptor.Intercept(context.Background(), "https://login.example.com/authorize?sso_nonce=n1&login_hint=a", headers)
	if err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if !nav.Rotated || headers[core.RefreshTokenCredentialHeader] != "fresh" || headers["Accept"] != "text/html" {
		t.Fatalf("expected rotated header, got %#v", headers)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.Enabled = []string{"myspace"}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
}
