package providers

import (
	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/providers/google"
)

// BuiltinDependencies carries the platform collaborators for the built-in
// providers.
type BuiltinDependencies struct {
	GoogleBackend google.CredentialBackend
	Nonces        *core.NonceGenerator
	Telemetry     *core.Telemetry
	Classifier    *core.Classifier
}

// Builtin returns the constructor table for every enumerated provider.
func Builtin(cfg core.Config, deps BuiltinDependencies) map[core.ProviderName]Constructor {
	googleCfg := google.Config{
		WebClientID:      cfg.Google.WebClientID,
		VerifyNonceClaim: cfg.Google.VerifyNonceClaim,
	}
	return map[core.ProviderName]Constructor{
		core.ProviderGoogle: func(params core.SignInParameters) (core.FederatedSignInProvider, error) {
			provider, err := google.New(googleCfg, params, google.Dependencies{
				Backend:    deps.GoogleBackend,
				Nonces:     deps.Nonces,
				Telemetry:  deps.Telemetry,
				Classifier: deps.Classifier,
			})
			if err != nil {
				return nil, err
			}
			return provider, nil
		},
	}
}

// NewBuiltinFactory builds the factory for the providers enabled in cfg.
func NewBuiltinFactory(cfg core.Config, deps BuiltinDependencies) (*Factory, error) {
	return NewFactory(Builtin(cfg, deps), cfg.EnabledProviders()...)
}
