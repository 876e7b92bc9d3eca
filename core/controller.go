package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNativeClientNotConfigured = errors.New("core: native auth client is not configured")
	ErrProvidersNotConfigured    = errors.New("core: federated provider resolver is not configured")
	ErrEmptyNativeResponse       = errors.New("core: native sign-in returned neither tokens nor a challenge")
)

// Controller exposes one operation per supported flow. It keeps no per-call
// state; the correlation id travels on the context and every operation returns
// exactly one Result instead of an error.
type Controller struct {
	native    NativeAuthClient
	providers ProviderResolver
	telemetry *Telemetry
}

func NewController(native NativeAuthClient, providers ProviderResolver, telemetry *Telemetry) *Controller {
	if telemetry == nil {
		telemetry = NewTelemetry(nil, nil)
	}
	return &Controller{native: native, providers: providers, telemetry: telemetry}
}

func (c *Controller) SignInStart(ctx context.Context, params SignInStartParameters) (result Result) {
	correlationID := CorrelationIDFromContext(ctx)
	defer c.recoverInto(ctx, "sign_in_start", correlationID, &result)

	if err := params.Validate(); err != nil {
		return Failure(correlationID, NewInvalidParameterError(err))
	}
	if c == nil || c.native == nil {
		return Failure(correlationID, newUnexpectedError(ErrNativeClientNotConfigured))
	}

	started := time.Now()
	response, err := c.native.SignInStart(ctx, NativeSignInRequest{
		CorrelationID:  correlationID,
		Username:       params.Username,
		Password:       append([]byte(nil), params.Password...),
		Scopes:         append([]string(nil), params.Scopes...),
		ChallengeTypes: append([]string(nil), params.ChallengeTypes...),
	})
	c.telemetry.Debug(ctx, "native sign-in start returned", map[string]any{
		"correlation_id": correlationID,
		"duration_ms":    time.Since(started).Milliseconds(),
		"failed":         err != nil,
	})
	if err != nil {
		return Failure(correlationID, err)
	}

	switch {
	case response.Tokens != nil:
		return Success(correlationID, *response.Tokens)
	case response.ContinuationToken != "" || response.ChallengeType != "":
		return ChallengeResult{
			Correlation:       correlationID,
			ChallengeType:     response.ChallengeType,
			ContinuationToken: response.ContinuationToken,
			Channel:           response.Channel,
			TargetLabel:       response.TargetLabel,
		}
	default:
		return Failure(correlationID, newUnexpectedError(ErrEmptyNativeResponse))
	}
}

func (c *Controller) FederatedSignIn(ctx context.Context, params SignInParameters) (result Result) {
	correlationID := CorrelationIDFromContext(ctx)
	defer c.recoverInto(ctx, "federated_sign_in", correlationID, &result)

	provider, failure := c.resolve(correlationID, params)
	if failure != nil {
		return failure
	}
	credential, err := provider.SignIn(ctx)
	if err != nil {
		return Failure(correlationID, err)
	}
	return Success(correlationID, credential)
}

// FederatedSignOut succeeds with an empty payload once provider state is clear.
func (c *Controller) FederatedSignOut(ctx context.Context, params SignInParameters) (result Result) {
	correlationID := CorrelationIDFromContext(ctx)
	defer c.recoverInto(ctx, "federated_sign_out", correlationID, &result)

	provider, failure := c.resolve(correlationID, params)
	if failure != nil {
		return failure
	}
	if err := provider.SignOut(ctx); err != nil {
		return Failure(correlationID, err)
	}
	return Success(correlationID, nil)
}

func (c *Controller) resolve(correlationID string, params SignInParameters) (FederatedSignInProvider, Result) {
	if err := params.Validate(); err != nil {
		return nil, Failure(correlationID, NewInvalidParameterError(err))
	}
	if c == nil || c.providers == nil {
		return nil, Failure(correlationID, newUnexpectedError(ErrProvidersNotConfigured))
	}
	provider, err := c.providers.Provider(params)
	if err != nil {
		return nil, Failure(correlationID, err)
	}
	if provider == nil {
		return nil, Failure(correlationID, NewProviderNotRegisteredError(params.ProviderName))
	}
	return provider, nil
}

func (c *Controller) recoverInto(ctx context.Context, operation, correlationID string, result *Result) {
	recovered := recover()
	if recovered == nil {
		return
	}
	err := newUnexpectedError(fmt.Errorf("core: %s panicked: %v", operation, recovered))
	if c != nil {
		c.telemetry.Error(ctx, "controller panic recovered", map[string]any{
			"correlation_id": correlationID,
			"operation":      operation,
			"error":          err.Message,
		})
	}
	*result = Failure(correlationID, err)
}
