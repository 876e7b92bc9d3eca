package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	CodecRawURL    = "raw_url"
	CodecPaddedURL = "padded_url"
)

// CredentialCodec turns opaque credential bytes (nonces, tokens) into
// transport-safe text: URL-safe alphabet, no padding, no line wrapping.
type CredentialCodec interface {
	Name() string
	EncodeToString(src []byte) string
	DecodeString(s string) ([]byte, error)
}

type RawURLCodec struct{}

func (RawURLCodec) Name() string { return CodecRawURL }

func (RawURLCodec) EncodeToString(src []byte) string {
	return base64.RawURLEncoding.EncodeToString(src)
}

func (RawURLCodec) DecodeString(s string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("core: decode url-safe credential: %w", err)
	}
	return decoded, nil
}

// PaddedURLCodec encodes with the padded URL alphabet and strips the padding,
// and accepts both padded and unpadded input when decoding.
type PaddedURLCodec struct{}

func (PaddedURLCodec) Name() string { return CodecPaddedURL }

func (PaddedURLCodec) EncodeToString(src []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(src), "=")
}

func (PaddedURLCodec) DecodeString(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	decoded, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("core: decode padded url credential: %w", err)
	}
	return decoded, nil
}

type CodecFactory func() (CredentialCodec, error)

// CodecRegistry is a static table of codec candidates. Resolve walks an
// explicit ordered fallback list and returns the first candidate that passes
// its self test.
type CodecRegistry struct {
	factories map[string]CodecFactory
}

func NewCodecRegistry() *CodecRegistry {
	return &CodecRegistry{factories: map[string]CodecFactory{
		CodecRawURL:    func() (CredentialCodec, error) { return RawURLCodec{}, nil },
		CodecPaddedURL: func() (CredentialCodec, error) { return PaddedURLCodec{}, nil },
	}}
}

func (r *CodecRegistry) Register(name string, factory CodecFactory) error {
	if r == nil {
		return fmt.Errorf("core: codec registry is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("core: codec name is required")
	}
	if factory == nil {
		return fmt.Errorf("core: codec factory is nil")
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("core: codec already registered: %s", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *CodecRegistry) Resolve(order []string) (CredentialCodec, error) {
	if r == nil {
		return nil, fmt.Errorf("core: codec registry is nil")
	}
	if len(order) == 0 {
		order = DefaultConfig().Codec.Order
	}
	failures := make([]string, 0, len(order))
	for _, name := range order {
		name = strings.TrimSpace(name)
		factory, ok := r.factories[name]
		if !ok {
			failures = append(failures, name+": not registered")
			continue
		}
		codec, err := factory()
		if err == nil {
			err = selfTestCodec(codec)
		}
		if err != nil {
			failures = append(failures, name+": "+err.Error())
			continue
		}
		return codec, nil
	}
	return nil, fmt.Errorf("core: no credential codec could be initialized (%s)", strings.Join(failures, "; "))
}

var codecProbe = []byte{0x00, 0xfb, 0xff, 0x3e, 0x3f, 0x7f, 0x80}

func selfTestCodec(codec CredentialCodec) error {
	if codec == nil {
		return fmt.Errorf("codec is nil")
	}
	encoded := codec.EncodeToString(codecProbe)
	if strings.ContainsAny(encoded, "+/=\r\n") {
		return fmt.Errorf("encoding is not url-safe")
	}
	decoded, err := codec.DecodeString(encoded)
	if err != nil {
		return err
	}
	if !bytes.Equal(decoded, codecProbe) {
		return fmt.Errorf("round trip mismatch")
	}
	return nil
}
