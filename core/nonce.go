package core

import (
	"crypto/rand"
	"fmt"
	"io"
)

const DefaultNonceBytes = 16

type NonceGenerator struct {
	codec  CredentialCodec
	size   int
	random io.Reader
}

func NewNonceGenerator(codec CredentialCodec, size int) *NonceGenerator {
	if codec == nil {
		codec = RawURLCodec{}
	}
	if size <= 0 {
		size = DefaultNonceBytes
	}
	return &NonceGenerator{codec: codec, size: size, random: rand.Reader}
}

func (g *NonceGenerator) Size() int {
	if g == nil {
		return DefaultNonceBytes
	}
	return g.size
}

// Generate returns size fresh random bytes encoded as a query-safe value.
func (g *NonceGenerator) Generate() (string, error) {
	if g == nil {
		return "", fmt.Errorf("core: nonce generator is not configured")
	}
	buf := make([]byte, g.size)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("core: generate nonce: %w", err)
	}
	return g.codec.EncodeToString(buf), nil
}
