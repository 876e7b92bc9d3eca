package core

import (
	"fmt"
	"strings"
	"time"
)

type DispatcherConfig struct {
	MaxConcurrent int `koanf:"max_concurrent" mapstructure:"max_concurrent"`
}

type NonceConfig struct {
	ByteLength       int `koanf:"byte_length" mapstructure:"byte_length"`
	LedgerTTLSeconds int `koanf:"ledger_ttl_seconds" mapstructure:"ledger_ttl_seconds"`
}

type RotationConfig struct {
	TimeoutMS          int    `koanf:"timeout_ms" mapstructure:"timeout_ms"`
	NonceParameter     string `koanf:"nonce_parameter" mapstructure:"nonce_parameter"`
	LoginHintParameter string `koanf:"login_hint_parameter" mapstructure:"login_hint_parameter"`
}

type CodecConfig struct {
	Order []string `koanf:"order" mapstructure:"order"`
}

type ProvidersConfig struct {
	Enabled []string `koanf:"enabled" mapstructure:"enabled"`
}

type GoogleConfig struct {
	WebClientID      string `koanf:"web_client_id" mapstructure:"web_client_id"`
	VerifyNonceClaim bool   `koanf:"verify_nonce_claim" mapstructure:"verify_nonce_claim"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Dispatcher  DispatcherConfig `koanf:"dispatcher" mapstructure:"dispatcher"`
	Nonce       NonceConfig      `koanf:"nonce" mapstructure:"nonce"`
	Rotation    RotationConfig   `koanf:"rotation" mapstructure:"rotation"`
	Codec       CodecConfig      `koanf:"codec" mapstructure:"codec"`
	Providers   ProvidersConfig  `koanf:"providers" mapstructure:"providers"`
	Google      GoogleConfig     `koanf:"google" mapstructure:"google"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "signin",
		Dispatcher:  DispatcherConfig{MaxConcurrent: 16},
		Nonce: NonceConfig{
			ByteLength:       DefaultNonceBytes,
			LedgerTTLSeconds: int(defaultNonceLedgerTTL / time.Second),
		},
		Rotation: RotationConfig{
			TimeoutMS:          5000,
			NonceParameter:     DefaultNonceParameter,
			LoginHintParameter: DefaultLoginHintParameter,
		},
		Codec:     CodecConfig{Order: []string{CodecRawURL, CodecPaddedURL}},
		Providers: ProvidersConfig{Enabled: []string{string(ProviderGoogle)}},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Dispatcher.MaxConcurrent < 0 {
		return fmt.Errorf("core: dispatcher.max_concurrent must not be negative")
	}
	if c.Nonce.ByteLength < 0 || (c.Nonce.ByteLength > 0 && c.Nonce.ByteLength < 8) {
		return fmt.Errorf("core: nonce.byte_length must be at least 8")
	}
	if c.Rotation.TimeoutMS < 0 {
		return fmt.Errorf("core: rotation.timeout_ms must not be negative")
	}
	for _, raw := range c.Providers.Enabled {
		if _, err := ParseProviderName(raw); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) RotationTimeout() time.Duration {
	if c.Rotation.TimeoutMS <= 0 {
		return time.Duration(DefaultConfig().Rotation.TimeoutMS) * time.Millisecond
	}
	return time.Duration(c.Rotation.TimeoutMS) * time.Millisecond
}

func (c Config) NonceLedgerTTL() time.Duration {
	if c.Nonce.LedgerTTLSeconds <= 0 {
		return defaultNonceLedgerTTL
	}
	return time.Duration(c.Nonce.LedgerTTLSeconds) * time.Second
}

func (c Config) NonceParameter() string {
	if name := strings.TrimSpace(c.Rotation.NonceParameter); name != "" {
		return name
	}
	return DefaultNonceParameter
}

func (c Config) LoginHintParameter() string {
	if name := strings.TrimSpace(c.Rotation.LoginHintParameter); name != "" {
		return name
	}
	return DefaultLoginHintParameter
}

func (c Config) EnabledProviders() []ProviderName {
	out := make([]ProviderName, 0, len(c.Providers.Enabled))
	for _, raw := range c.Providers.Enabled {
		if name, err := ParseProviderName(raw); err == nil {
			out = append(out, name)
		}
	}
	return out
}
