package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// FederatedSignInProvider obtains a credential from an external identity
// source. Implementations return classified client errors only.
type FederatedSignInProvider interface {
	SignIn(ctx context.Context) (FederatedCredential, error)
	SignOut(ctx context.Context) error
}

// ProviderResolver builds a fresh provider for one request.
type ProviderResolver interface {
	Provider(params SignInParameters) (FederatedSignInProvider, error)
}

// NativeAuthClient performs the first-party sign-in exchange.
type NativeAuthClient interface {
	SignInStart(ctx context.Context, req NativeSignInRequest) (NativeSignInResponse, error)
}

// RefreshTokenCredentialIssuer mints a refresh-token credential header bound to
// (url, username, nonce). An empty value with a nil error means absent.
type RefreshTokenCredentialIssuer interface {
	IssueBoundCredentialHeader(ctx context.Context, url, username, nonce string) (string, error)
}

type RefreshTokenCredentialIssuerFunc func(ctx context.Context, url, username, nonce string) (string, error)

func (f RefreshTokenCredentialIssuerFunc) IssueBoundCredentialHeader(ctx context.Context, url, username, nonce string) (string, error) {
	return f(ctx, url, username, nonce)
}
