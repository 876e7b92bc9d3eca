package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type runtimeBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	codecRegistry   *CodecRegistry
	nonceLedger     NonceLedger
	classifier      *Classifier
}

type Option func(*runtimeBuilder)

func WithLogger(logger Logger) Option {
	return func(b *runtimeBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *runtimeBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *runtimeBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *runtimeBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *runtimeBuilder) {
		b.optionsResolver = resolver
	}
}

// WithCodecRegistry replaces the registry used to pick the nonce codec.
func WithCodecRegistry(registry *CodecRegistry) Option {
	return func(b *runtimeBuilder) {
		b.codecRegistry = registry
	}
}

func WithNonceLedger(ledger NonceLedger) Option {
	return func(b *runtimeBuilder) {
		b.nonceLedger = ledger
	}
}

func WithClassifier(classifier *Classifier) Option {
	return func(b *runtimeBuilder) {
		b.classifier = classifier
	}
}

func defaultRuntimeBuilder(runtime Config) runtimeBuilder {
	loggerProvider, logger := glog.Resolve("signin", nil, nil)
	return runtimeBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		codecRegistry:   NewCodecRegistry(),
		classifier:      DefaultClassifier(),
	}
}

type StaticConfigLoader struct {
	Values map[string]any
}

func (l StaticConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap drops zero values unless includeZero is set, so higher
// layers only override what they actually configure.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.Dispatcher.MaxConcurrent > 0 {
		layer["dispatcher"] = map[string]any{
			"max_concurrent": cfg.Dispatcher.MaxConcurrent,
		}
	}

	nonce := map[string]any{}
	if includeZero || cfg.Nonce.ByteLength > 0 {
		nonce["byte_length"] = cfg.Nonce.ByteLength
	}
	if includeZero || cfg.Nonce.LedgerTTLSeconds > 0 {
		nonce["ledger_ttl_seconds"] = cfg.Nonce.LedgerTTLSeconds
	}
	if len(nonce) > 0 {
		layer["nonce"] = nonce
	}

	rotation := map[string]any{}
	if includeZero || cfg.Rotation.TimeoutMS > 0 {
		rotation["timeout_ms"] = cfg.Rotation.TimeoutMS
	}
	if includeZero || strings.TrimSpace(cfg.Rotation.NonceParameter) != "" {
		rotation["nonce_parameter"] = cfg.Rotation.NonceParameter
	}
	if includeZero || strings.TrimSpace(cfg.Rotation.LoginHintParameter) != "" {
		rotation["login_hint_parameter"] = cfg.Rotation.LoginHintParameter
	}
	if len(rotation) > 0 {
		layer["rotation"] = rotation
	}

	if includeZero || len(cfg.Codec.Order) > 0 {
		layer["codec"] = map[string]any{
			"order": append([]string(nil), cfg.Codec.Order...),
		}
	}
	if includeZero || len(cfg.Providers.Enabled) > 0 {
		layer["providers"] = map[string]any{
			"enabled": append([]string(nil), cfg.Providers.Enabled...),
		}
	}

	google := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Google.WebClientID) != "" {
		google["web_client_id"] = cfg.Google.WebClientID
	}
	if includeZero || cfg.Google.VerifyNonceClaim {
		google["verify_nonce_claim"] = cfg.Google.VerifyNonceClaim
	}
	if len(google) > 0 {
		layer["google"] = google
	}
	return layer
}
