package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-signin/core"
)

type Outcome string

const (
	OutcomeRotated       Outcome = "rotated"
	OutcomeNoNonce       Outcome = "no_nonce"
	OutcomeNoHeader      Outcome = "no_header"
	OutcomeNoLoginHint   Outcome = "no_login_hint"
	OutcomeNonceReplayed Outcome = "nonce_replayed"
	OutcomeIssuerFailed  Outcome = "issuer_failed"
	OutcomeIssuerTimeout Outcome = "issuer_timeout"
	OutcomeIssuerEmpty   Outcome = "issuer_empty"
	OutcomeInvalidURL    Outcome = "invalid_url"
)

const defaultTimeout = 5 * time.Second

// Navigation is the request that should be issued after interception. Headers
// is the caller's map, updated in place.
type Navigation struct {
	URL     string
	Headers map[string]string
	Rotated bool
	Outcome Outcome
}

// Navigator issues the navigation, typically by loading the url in a web view.
type Navigator interface {
	LoadURL(ctx context.Context, rawURL string, headers map[string]string) error
}

type NavigatorFunc func(ctx context.Context, rawURL string, headers map[string]string) error

func (f NavigatorFunc) LoadURL(ctx context.Context, rawURL string, headers map[string]string) error {
	return f(ctx, rawURL, headers)
}

type Option func(*Interceptor)

func WithNonceParameter(name string) Option {
	return func(i *Interceptor) {
		if name = strings.TrimSpace(name); name != "" {
			i.nonceParameter = name
		}
	}
}

func WithLoginHintParameter(name string) Option {
	return func(i *Interceptor) {
		if name = strings.TrimSpace(name); name != "" {
			i.loginHintParameter = name
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(i *Interceptor) {
		if timeout > 0 {
			i.timeout = timeout
		}
	}
}

// WithNonceLedger replaces the default in-memory single-use guard; nil
// disables it.
func WithNonceLedger(ledger core.NonceLedger) Option {
	return func(i *Interceptor) {
		i.ledger = ledger
	}
}

func WithTelemetry(telemetry *core.Telemetry) Option {
	return func(i *Interceptor) {
		if telemetry != nil {
			i.telemetry = telemetry
		}
	}
}

// Interceptor rotates the refresh-token credential header when a navigation
// carries a nonce. Rotation is best effort: on any failure the existing header
// is kept and the navigation proceeds.
type Interceptor struct {
	issuer             core.RefreshTokenCredentialIssuer
	ledger             core.NonceLedger
	telemetry          *core.Telemetry
	nonceParameter     string
	loginHintParameter string
	timeout            time.Duration
}

func New(issuer core.RefreshTokenCredentialIssuer, opts ...Option) *Interceptor {
	interceptor := &Interceptor{
		issuer:             issuer,
		ledger:             core.NewMemoryNonceLedger(0),
		telemetry:          core.NewTelemetry(nil, nil),
		nonceParameter:     core.DefaultNonceParameter,
		loginHintParameter: core.DefaultLoginHintParameter,
		timeout:            defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(interceptor)
		}
	}
	return interceptor
}

// FromRuntime wires parameter names, timeout, ledger and telemetry from rt.
func FromRuntime(rt *core.Runtime, issuer core.RefreshTokenCredentialIssuer, opts ...Option) *Interceptor {
	cfg := rt.Config()
	base := []Option{
		WithNonceParameter(cfg.NonceParameter()),
		WithLoginHintParameter(cfg.LoginHintParameter()),
		WithTimeout(cfg.RotationTimeout()),
		WithNonceLedger(rt.NonceLedger()),
		WithTelemetry(rt.Telemetry()),
	}
	return New(issuer, append(base, opts...)...)
}

// Intercept inspects one outbound navigation and, when possible, replaces the
// refresh-token credential header with one bound to the navigation nonce. No
// other header is touched.
func (i *Interceptor) Intercept(ctx context.Context, rawURL string, headers map[string]string) (Navigation, error) {
	nav := Navigation{URL: rawURL, Headers: headers}
	if i == nil {
		nav.Outcome = OutcomeNoNonce
		return nav, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// A percent-encoded parameter key can only be found by a full parse.
	if !strings.Contains(rawURL, i.nonceParameter+"=") && !strings.Contains(rawURL, "%") {
		nav.Outcome = OutcomeNoNonce
		i.record(ctx, nav.Outcome)
		return nav, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		nav.Outcome = OutcomeInvalidURL
		i.telemetry.Warn(ctx, "navigation url could not be parsed, keeping credential header", map[string]any{
			"error": err.Error(),
		})
		i.record(ctx, nav.Outcome)
		return nav, nil
	}
	query := parsed.Query()
	nonce := strings.TrimSpace(query.Get(i.nonceParameter))
	if nonce == "" {
		nav.Outcome = OutcomeNoNonce
		i.record(ctx, nav.Outcome)
		return nav, nil
	}

	headerKey, current := credentialHeader(headers)
	if strings.TrimSpace(current) == "" {
		nav.Outcome = OutcomeNoHeader
		i.record(ctx, nav.Outcome)
		return nav, nil
	}
	i.telemetry.Info(ctx, "refresh token credential header found", map[string]any{
		"host": parsed.Host,
	})

	username := strings.TrimSpace(query.Get(i.loginHintParameter))
	if username == "" {
		nav.Outcome = OutcomeNoLoginHint
		i.telemetry.Info(ctx, "navigation has no login hint, keeping credential header", map[string]any{
			"host": parsed.Host,
		})
		i.record(ctx, nav.Outcome)
		return nav, nil
	}

	if i.ledger != nil {
		claimed, err := i.ledger.Claim(ctx, nonce)
		if err != nil {
			nav.Outcome = OutcomeIssuerFailed
			i.telemetry.Warn(ctx, "nonce ledger claim failed, keeping credential header", map[string]any{
				"host":  parsed.Host,
				"error": err.Error(),
			})
			i.record(ctx, nav.Outcome)
			return nav, nil
		}
		if !claimed {
			nav.Outcome = OutcomeNonceReplayed
			i.telemetry.Warn(ctx, "nonce already consumed, keeping credential header", map[string]any{
				"host":  parsed.Host,
				"nonce": core.RedactSecret(nonce),
			})
			i.record(ctx, nav.Outcome)
			return nav, nil
		}
	}

	started := time.Now()
	value, outcome, err := i.issue(ctx, rawURL, username, nonce)
	i.telemetry.Observe(ctx, core.MetricRotationDuration, float64(time.Since(started).Milliseconds()),
		map[string]string{"outcome": string(outcome)})
	nav.Outcome = outcome
	if outcome != OutcomeRotated {
		fields := map[string]any{"host": parsed.Host, "outcome": string(outcome)}
		if err != nil {
			fields["error"] = err.Error()
		}
		i.telemetry.Warn(ctx, "credential header rotation failed, keeping stale header", fields)
		i.record(ctx, nav.Outcome)
		return nav, nil
	}

	headers[headerKey] = value
	nav.Rotated = true
	i.telemetry.Info(ctx, "new refresh token credential header attached", map[string]any{
		"host":   parsed.Host,
		"header": core.RedactSecret(value),
	})
	i.record(ctx, nav.Outcome)
	return nav, nil
}

// Handle intercepts the navigation and then issues it through navigator.
func (i *Interceptor) Handle(ctx context.Context, rawURL string, headers map[string]string, navigator Navigator) error {
	if navigator == nil {
		return core.NewInvalidParameterError(fmt.Errorf("navigation: navigator is required"))
	}
	nav, err := i.Intercept(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	return navigator.LoadURL(ctx, nav.URL, nav.Headers)
}

type issueResult struct {
	value string
	err   error
}

// issue calls the issuer under the rotation timeout. The wait ends at the
// deadline even when the issuer ignores ctx.
func (i *Interceptor) issue(ctx context.Context, rawURL, username, nonce string) (string, Outcome, error) {
	if i.issuer == nil {
		return "", OutcomeIssuerEmpty, nil
	}
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	done := make(chan issueResult, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- issueResult{err: fmt.Errorf("navigation: credential issuer panicked: %v", recovered)}
			}
		}()
		value, err := i.issuer.IssueBoundCredentialHeader(ctx, rawURL, username, nonce)
		done <- issueResult{value: value, err: err}
	}()

	select {
	case result := <-done:
		switch {
		case result.err != nil && errors.Is(result.err, context.DeadlineExceeded):
			return "", OutcomeIssuerTimeout, result.err
		case result.err != nil:
			return "", OutcomeIssuerFailed, result.err
		case strings.TrimSpace(result.value) == "":
			return "", OutcomeIssuerEmpty, nil
		default:
			return result.value, OutcomeRotated, nil
		}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", OutcomeIssuerTimeout, ctx.Err()
		}
		return "", OutcomeIssuerFailed, ctx.Err()
	}
}

func (i *Interceptor) record(ctx context.Context, outcome Outcome) {
	i.telemetry.Count(ctx, core.MetricRotationTotal, map[string]string{"outcome": string(outcome)})
}

// credentialHeader finds the refresh-token credential header, preferring the
// exact key and falling back to a case-insensitive match.
func credentialHeader(headers map[string]string) (string, string) {
	if value, ok := headers[core.RefreshTokenCredentialHeader]; ok {
		return core.RefreshTokenCredentialHeader, value
	}
	for key, value := range headers {
		if strings.EqualFold(key, core.RefreshTokenCredentialHeader) {
			return key, value
		}
	}
	return core.RefreshTokenCredentialHeader, ""
}
