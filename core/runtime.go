package core

import (
	"context"
	"fmt"

	glog "github.com/goliatone/go-logger/glog"
)

// Runtime holds the resolved configuration and the shared collaborators built
// from it. One runtime backs one SDK client.
type Runtime struct {
	config         Config
	logger         Logger
	loggerProvider LoggerProvider
	telemetry      *Telemetry
	codec          CredentialCodec
	nonces         *NonceGenerator
	ledger         NonceLedger
	classifier     *Classifier
}

func NewRuntime(cfg Config, opts ...Option) (*Runtime, error) {
	builder := defaultRuntimeBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("signin", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("signin"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.codecRegistry == nil {
		builder.codecRegistry = NewCodecRegistry()
	}
	if builder.classifier == nil {
		builder.classifier = DefaultClassifier()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, NewInvalidParameterError(fmt.Errorf("core: load config: %w", err))
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, NewInvalidParameterError(fmt.Errorf("core: resolve config: %w", err))
	}

	codec, err := builder.codecRegistry.Resolve(finalConfig.Codec.Order)
	if err != nil {
		return nil, err
	}
	if builder.nonceLedger == nil {
		builder.nonceLedger = NewMemoryNonceLedger(finalConfig.NonceLedgerTTL())
	}

	runtime := &Runtime{
		config:         finalConfig,
		logger:         logger,
		loggerProvider: provider,
		telemetry:      NewTelemetry(logger, builder.metricsRecorder),
		codec:          codec,
		nonces:         NewNonceGenerator(codec, finalConfig.Nonce.ByteLength),
		ledger:         builder.nonceLedger,
		classifier:     builder.classifier,
	}
	logger.Debug("signin runtime initialized",
		"service", finalConfig.ServiceName,
		"codec", codec.Name(),
		"providers", finalConfig.Providers.Enabled,
	)
	return runtime, nil
}

func (r *Runtime) Config() Config {
	if r == nil {
		return DefaultConfig()
	}
	return r.config
}

func (r *Runtime) Logger() Logger {
	if r == nil {
		return glog.Nop()
	}
	return r.logger
}

// NamedLogger returns a component logger from the configured provider, falling
// back to the runtime logger.
func (r *Runtime) NamedLogger(name string) Logger {
	if r == nil {
		return glog.Nop()
	}
	if r.loggerProvider != nil {
		if named := r.loggerProvider.GetLogger(name); named != nil {
			return glog.Ensure(named)
		}
	}
	return r.logger
}

func (r *Runtime) Telemetry() *Telemetry {
	if r == nil {
		return NewTelemetry(nil, nil)
	}
	return r.telemetry
}

func (r *Runtime) Codec() CredentialCodec {
	if r == nil {
		return RawURLCodec{}
	}
	return r.codec
}

func (r *Runtime) Nonces() *NonceGenerator {
	if r == nil {
		return NewNonceGenerator(RawURLCodec{}, DefaultNonceBytes)
	}
	return r.nonces
}

func (r *Runtime) NonceLedger() NonceLedger {
	if r == nil {
		return nil
	}
	return r.ledger
}

func (r *Runtime) Classifier() *Classifier {
	if r == nil || r.classifier == nil {
		return DefaultClassifier()
	}
	return r.classifier
}
