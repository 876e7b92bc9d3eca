package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-signin/core"
)

const ProviderName = core.ProviderGoogle

type Config struct {
	WebClientID      string
	VerifyNonceClaim bool
}

type Dependencies struct {
	Backend    CredentialBackend
	Nonces     *core.NonceGenerator
	Telemetry  *core.Telemetry
	Classifier *core.Classifier
}

// Provider serves one sign-in or sign-out attempt. Build a new one per request.
type Provider struct {
	cfg        Config
	params     core.SignInParameters
	backend    CredentialBackend
	nonces     *core.NonceGenerator
	telemetry  *core.Telemetry
	classifier *core.Classifier
}

func New(cfg Config, params core.SignInParameters, deps Dependencies) (*Provider, error) {
	if deps.Backend == nil {
		return nil, core.NewInvalidParameterError(ErrBackendRequired)
	}
	if strings.TrimSpace(cfg.WebClientID) == "" {
		return nil, core.NewInvalidParameterError(fmt.Errorf("google: web client id is required"))
	}
	if deps.Nonces == nil {
		deps.Nonces = core.NewNonceGenerator(core.RawURLCodec{}, core.DefaultNonceBytes)
	}
	if deps.Telemetry == nil {
		deps.Telemetry = core.NewTelemetry(nil, nil)
	}
	if deps.Classifier == nil {
		deps.Classifier = core.DefaultClassifier()
	}
	return &Provider{
		cfg:        cfg,
		params:     params,
		backend:    deps.Backend,
		nonces:     deps.Nonces,
		telemetry:  deps.Telemetry,
		classifier: deps.Classifier,
	}, nil
}

// SignIn picks the bottom sheet or the inline flow from the parameters and
// binds a fresh nonce to the platform request.
func (p *Provider) SignIn(ctx context.Context) (core.FederatedCredential, error) {
	if p == nil {
		return core.FederatedCredential{}, core.NewInvalidParameterError(ErrBackendRequired)
	}
	nonce, err := p.nonces.Generate()
	if err != nil {
		return core.FederatedCredential{}, core.EnsureClassified(err)
	}

	request := CredentialRequest{UIContext: p.params.UIContext, Option: p.option(nonce)}
	response, err := p.backend.GetCredential(ctx, request)
	if err != nil {
		return core.FederatedCredential{}, p.credentialFailure(ctx, err)
	}

	custom, ok := asCustomCredential(response.Credential)
	if !ok {
		message := fmt.Sprintf("Unexpected credential type %T", response.Credential)
		return core.FederatedCredential{}, p.reject(ctx, core.SubErrorUnexpectedCredentialType, message, nil)
	}
	if !acceptedCredentialType(custom.Type) {
		message := "Unsupported credential type, " + custom.Type
		return core.FederatedCredential{}, p.reject(ctx, core.SubErrorUnsupportedCredentialType, message, nil)
	}

	token, err := ParseIDToken(custom.Data)
	if err == nil && p.cfg.VerifyNonceClaim {
		err = VerifyNonceClaim(token, nonce)
	}
	if err != nil {
		return core.FederatedCredential{}, p.reject(ctx, core.SubErrorSignInFailed, "", err)
	}

	p.telemetry.Debug(ctx, "google credential obtained", map[string]any{
		"correlation_id": core.CorrelationIDFromContext(ctx),
		"credential":     custom.Type,
		"bottom_sheet":   p.params.UseBottomSheet,
	})
	return core.NewFederatedCredential(ProviderName, token), nil
}

// SignOut clears the backend credential state. A backend with nothing to
// clear is a success.
func (p *Provider) SignOut(ctx context.Context) error {
	if p == nil {
		return core.NewInvalidParameterError(ErrBackendRequired)
	}
	err := p.backend.ClearCredentialState(ctx)
	if err == nil || errors.Is(err, ErrNothingToClear) {
		return nil
	}
	classified := p.classifier.Classify(err)
	p.telemetry.Warn(ctx, "google sign-out failed", map[string]any{
		"correlation_id": core.CorrelationIDFromContext(ctx),
		"error":          classified.Message,
	})
	return classified
}

func (p *Provider) option(nonce string) CredentialOption {
	if p.params.UseBottomSheet {
		return GoogleIDOption{
			ServerClientID:             p.cfg.WebClientID,
			Nonce:                      nonce,
			FilterByAuthorizedAccounts: false,
			AutoSelectEnabled:          false,
		}
	}
	return SignInWithGoogleOption{ServerClientID: p.cfg.WebClientID, Nonce: nonce}
}

// credentialFailure keeps network failures in the transport taxonomy and
// reports everything else as a provider sign-in failure.
func (p *Provider) credentialFailure(ctx context.Context, err error) error {
	if _, ok := core.SubErrorOf(err); ok {
		return err
	}
	if sub := p.classifier.SubError(err); sub != core.SubErrorUnexpectedException {
		classified := core.NewIOError(sub, err)
		p.telemetry.Warn(ctx, "google credential request failed", map[string]any{
			"correlation_id": core.CorrelationIDFromContext(ctx),
			"sub_error":      string(sub),
		})
		return classified
	}
	return p.reject(ctx, core.SubErrorSignInFailed, "", err)
}

func (p *Provider) reject(ctx context.Context, sub core.SubErrorCode, message string, cause error) error {
	err := core.NewFederatedSignInError(ProviderName, sub, message, cause)
	p.telemetry.Warn(ctx, "google sign-in rejected", map[string]any{
		"correlation_id": core.CorrelationIDFromContext(ctx),
		"sub_error":      string(sub),
		"error":          err.Message,
	})
	return err
}

var _ core.FederatedSignInProvider = (*Provider)(nil)
