package core

import (
	"context"
	"sort"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

// Telemetry bundles the logger and metrics recorder shared by the dispatcher,
// providers and the navigation interceptor. Emit is serialized so that
// records of concurrent commands never interleave on a shared sink.
type Telemetry struct {
	mu      sync.Mutex
	logger  Logger
	metrics MetricsRecorder
}

func NewTelemetry(logger Logger, metrics MetricsRecorder) *Telemetry {
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	return &Telemetry{logger: glog.Ensure(logger), metrics: metrics}
}

func (t *Telemetry) Logger() Logger {
	if t == nil {
		return glog.Nop()
	}
	return t.logger
}

func (t *Telemetry) Info(ctx context.Context, message string, fields map[string]any) {
	t.emit(ctx, "info", message, fields)
}

func (t *Telemetry) Warn(ctx context.Context, message string, fields map[string]any) {
	t.emit(ctx, "warn", message, fields)
}

func (t *Telemetry) Error(ctx context.Context, message string, fields map[string]any) {
	t.emit(ctx, "error", message, fields)
}

func (t *Telemetry) Debug(ctx context.Context, message string, fields map[string]any) {
	t.emit(ctx, "debug", message, fields)
}

func (t *Telemetry) Count(ctx context.Context, name string, tags map[string]string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.IncCounter(ctx, strings.TrimSpace(name), 1, cloneTags(tags))
}

func (t *Telemetry) Observe(ctx context.Context, name string, value float64, tags map[string]string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (t *Telemetry) emit(ctx context.Context, level string, message string, fields map[string]any) {
	if t == nil || t.logger == nil {
		return
	}
	logger := t.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	var args []any
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(copyAnyMap(fields))
	} else {
		args = flattenFields(fields)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch level {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func NormalizeMetricSegment(segment string) string {
	segment = strings.TrimSpace(strings.ToLower(segment))
	segment = strings.ReplaceAll(segment, " ", "_")
	segment = strings.ReplaceAll(segment, "-", "_")
	return segment
}

// RedactSecret renders a short fingerprint of a secret for log fields.
func RedactSecret(value string) string {
	return redactSecret(value)
}
