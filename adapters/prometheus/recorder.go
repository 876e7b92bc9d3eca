// Package prometheus records sign-in telemetry into Prometheus collectors.
package prometheus

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-signin/core"
	"github.com/prometheus/client_golang/prometheus"
)

// DurationBuckets are tuned for millisecond observations of sign-in commands
// and credential rotations.
var DurationBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Recorder creates one CounterVec or HistogramVec per metric name on first use.
// The label set of a metric is fixed by the tags of its first observation;
// later observations with different tag keys are dropped.
type Recorder struct {
	mu         sync.Mutex
	registerer prometheus.Registerer
	namespace  string
	counters   map[string]*vec[*prometheus.CounterVec]
	histograms map[string]*vec[*prometheus.HistogramVec]
}

type vec[T any] struct {
	collector T
	labels    []string
}

func NewRecorder(registerer prometheus.Registerer, namespace string) *Recorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Recorder{
		registerer: registerer,
		namespace:  sanitize(namespace),
		counters:   map[string]*vec[*prometheus.CounterVec]{},
		histograms: map[string]*vec[*prometheus.HistogramVec]{},
	}
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	metricName := sanitize(strings.TrimSuffix(name, ".total")) + "_total"
	r.mu.Lock()
	entry, ok := r.counters[metricName]
	if !ok {
		labels := labelNames(tags)
		collector := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      metricName,
			Help:      "Count of " + name,
		}, labels)
		collector = registerOrExisting(r.registerer, collector)
		entry = &vec[*prometheus.CounterVec]{collector: collector, labels: labels}
		r.counters[metricName] = entry
	}
	r.mu.Unlock()

	values, ok := labelValues(entry.labels, tags)
	if !ok {
		return
	}
	entry.collector.WithLabelValues(values...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	metricName := sanitize(name)
	r.mu.Lock()
	entry, ok := r.histograms[metricName]
	if !ok {
		labels := labelNames(tags)
		collector := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      metricName,
			Help:      "Distribution of " + name,
			Buckets:   DurationBuckets,
		}, labels)
		collector = registerOrExisting(r.registerer, collector)
		entry = &vec[*prometheus.HistogramVec]{collector: collector, labels: labels}
		r.histograms[metricName] = entry
	}
	r.mu.Unlock()

	values, ok := labelValues(entry.labels, tags)
	if !ok {
		return
	}
	entry.collector.WithLabelValues(values...).Observe(value)
}

func registerOrExisting[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return collector
}

func labelNames(tags map[string]string) []string {
	labels := make([]string, 0, len(tags))
	for key := range tags {
		if label := sanitize(key); label != "" {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

func labelValues(labels []string, tags map[string]string) ([]string, bool) {
	normalized := make(map[string]string, len(tags))
	for key, value := range tags {
		normalized[sanitize(key)] = value
	}
	if len(normalized) != len(labels) {
		return nil, false
	}
	values := make([]string, 0, len(labels))
	for _, label := range labels {
		value, ok := normalized[label]
		if !ok {
			return nil, false
		}
		values = append(values, value)
	}
	return values, true
}

func sanitize(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

var _ core.MetricsRecorder = (*Recorder)(nil)
