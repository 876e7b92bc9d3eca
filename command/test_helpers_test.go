package command

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-signin/core"
)

type stubController struct {
	signInStartFn func(ctx context.Context, params core.SignInStartParameters) core.Result
	signInFn      func(ctx context.Context, params core.SignInParameters) core.Result
	signOutFn     func(ctx context.Context, params core.SignInParameters) core.Result
	calls         atomic.Int32
}

func (s *stubController) SignInStart(ctx context.Context, params core.SignInStartParameters) core.Result {
	s.calls.Add(1)
	if s.signInStartFn != nil {
		return s.signInStartFn(ctx, params)
	}
	return core.Success(core.CorrelationIDFromContext(ctx), nil)
}

func (s *stubController) FederatedSignIn(ctx context.Context, params core.SignInParameters) core.Result {
	s.calls.Add(1)
	if s.signInFn != nil {
		return s.signInFn(ctx, params)
	}
	return core.Success(core.CorrelationIDFromContext(ctx), core.NewFederatedCredential(params.ProviderName, "abc123"))
}

func (s *stubController) FederatedSignOut(ctx context.Context, params core.SignInParameters) core.Result {
	s.calls.Add(1)
	if s.signOutFn != nil {
		return s.signOutFn(ctx, params)
	}
	return core.Success(core.CorrelationIDFromContext(ctx), nil)
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu      *sync.Mutex
	records *[]capturedLog
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) core.Logger { return l }

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := map[string]any{}
	for index := 0; index+1 < len(args); index += 2 {
		if key, ok := args[index].(string); ok {
			fields[key] = args[index+1]
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]capturedLog, len(*l.records))
	copy(out, *l.records)
	return out
}

type captureMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (m *captureMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = map[string]int64{}
	}
	m.counters[name+"|"+tags["result"]] += value
}

func (m *captureMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (m *captureMetrics) count(name, result string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name+"|"+result]
}
