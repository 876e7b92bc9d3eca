package security

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-signin/core"
)

const (
	ClaimRefreshToken = "refresh_token"
	ClaimRequestNonce = "request_nonce"
)

var (
	ErrNoSigningKey    = errors.New("security: no active signing key")
	ErrNoRefreshToken  = errors.New("security: no refresh token for account")
	ErrTokenSourceNil  = errors.New("security: refresh token source is required")
	ErrInvalidAudience = errors.New("security: navigation url has no scheme or host")
)

// RefreshTokenSource looks up the refresh token held for an account.
// An empty token with a nil error means the account has none.
type RefreshTokenSource interface {
	RefreshToken(ctx context.Context, username string) (string, error)
}

type RefreshTokenSourceFunc func(ctx context.Context, username string) (string, error)

func (f RefreshTokenSourceFunc) RefreshToken(ctx context.Context, username string) (string, error) {
	return f(ctx, username)
}

type JWSOption func(*JWSCredentialIssuer)

func WithClock(now func() time.Time) JWSOption {
	return func(issuer *JWSCredentialIssuer) {
		if now != nil {
			issuer.now = now
		}
	}
}

func WithSigningKeys(keys ...SigningKey) JWSOption {
	return func(issuer *JWSCredentialIssuer) {
		issuer.keys = append(issuer.keys, keys...)
	}
}

// JWSCredentialIssuer signs a refresh-token credential bound to the
// navigation nonce and the origin of the navigation URL.
type JWSCredentialIssuer struct {
	tokens RefreshTokenSource
	keys   []SigningKey
	now    func() time.Time
}

func NewJWSCredentialIssuer(tokens RefreshTokenSource, opts ...JWSOption) (*JWSCredentialIssuer, error) {
	if tokens == nil {
		return nil, ErrTokenSourceNil
	}
	issuer := &JWSCredentialIssuer{tokens: tokens, now: time.Now}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(issuer)
	}
	if len(issuer.keys) == 0 {
		return nil, ErrNoSigningKey
	}
	return issuer, nil
}

func (i *JWSCredentialIssuer) IssueBoundCredentialHeader(ctx context.Context, rawURL, username, nonce string) (string, error) {
	if i == nil || i.tokens == nil {
		return "", ErrTokenSourceNil
	}
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return "", fmt.Errorf("security: nonce is required")
	}
	audience, err := audienceOf(rawURL)
	if err != nil {
		return "", err
	}

	issuedAt := i.now().UTC()
	key, ok := activeKey(i.keys, issuedAt)
	if !ok {
		return "", ErrNoSigningKey
	}

	refreshToken, err := i.tokens.RefreshToken(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", fmt.Errorf("security: load refresh token: %w", err)
	}
	if strings.TrimSpace(refreshToken) == "" {
		return "", ErrNoRefreshToken
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimRefreshToken: refreshToken,
		ClaimRequestNonce: nonce,
		"aud":             audience,
		"iat":             issuedAt.Unix(),
	})
	if key.ID != "" {
		token.Header["kid"] = key.ID
	}
	signed, err := token.SignedString(key.Secret)
	if err != nil {
		return "", fmt.Errorf("security: sign credential: %w", err)
	}
	return signed, nil
}

func audienceOf(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAudience, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrInvalidAudience
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

var _ core.RefreshTokenCredentialIssuer = (*JWSCredentialIssuer)(nil)
