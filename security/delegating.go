package security

import (
	"context"
	"sync"

	"github.com/goliatone/go-signin/core"
)

// DelegatingCredentialProvider forwards issuance to an installed issuer.
// While nothing is installed every request yields an absent header.
type DelegatingCredentialProvider struct {
	mu        sync.RWMutex
	delegate  core.RefreshTokenCredentialIssuer
	telemetry *core.Telemetry
}

func NewDelegatingCredentialProvider(telemetry *core.Telemetry) *DelegatingCredentialProvider {
	return &DelegatingCredentialProvider{telemetry: telemetry}
}

func (p *DelegatingCredentialProvider) Install(issuer core.RefreshTokenCredentialIssuer) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.delegate = issuer
	p.mu.Unlock()
}

func (p *DelegatingCredentialProvider) Uninstall() {
	p.Install(nil)
}

func (p *DelegatingCredentialProvider) Installed() bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.delegate != nil
}

func (p *DelegatingCredentialProvider) IssueBoundCredentialHeader(ctx context.Context, url, username, nonce string) (string, error) {
	if p == nil {
		return "", nil
	}
	p.mu.RLock()
	delegate := p.delegate
	p.mu.RUnlock()
	if delegate == nil {
		p.telemetry.Warn(ctx, "credential issuer not installed", map[string]any{
			"correlation_id": core.CorrelationIDFromContext(ctx),
		})
		return "", nil
	}
	return delegate.IssueBoundCredentialHeader(ctx, url, username, nonce)
}

var _ core.RefreshTokenCredentialIssuer = (*DelegatingCredentialProvider)(nil)
