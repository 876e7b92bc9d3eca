package signin

import (
	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/providers/google"
)

type Config = core.Config

type Result = core.Result
type SuccessResult = core.SuccessResult
type ErrorResult = core.ErrorResult
type ChallengeResult = core.ChallengeResult

type FederatedCredential = core.FederatedCredential
type SignInParameters = core.SignInParameters
type SignInStartParameters = core.SignInStartParameters
type ProviderName = core.ProviderName

type NativeAuthClient = core.NativeAuthClient
type RefreshTokenCredentialIssuer = core.RefreshTokenCredentialIssuer

const ProviderGoogle = core.ProviderGoogle

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithCodecRegistry   = core.WithCodecRegistry
	WithNonceLedger     = core.WithNonceLedger
	WithClassifier      = core.WithClassifier
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// GoogleProvider builds a standalone Google provider for one sign-in attempt.
func GoogleProvider(cfg google.Config, params SignInParameters, deps google.Dependencies) (*google.Provider, error) {
	return google.New(cfg, params, deps)
}
