package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Type is a Prometheus metric type.
type Type string

const (
	TypeCounter   Type = "counter"
	TypeGauge     Type = "gauge"
	TypeHistogram Type = "histogram"
)

// Sample is one exposition line.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Metric is implemented by every registered metric.
type Metric interface {
	Name() string
	Help() string
	Type() Type
	Collect() []Sample
}

// atomicFloat64 stores float64 bits in a uint64 for lock-free updates.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// series holds one value per label combination.
type series[V any] struct {
	labelNames []string
	mu         sync.RWMutex
	values     map[string]*V
	labels     map[string]map[string]string
	newValue   func() *V
}

func newSeries[V any](labelNames []string, newValue func() *V) *series[V] {
	return &series[V]{
		labelNames: labelNames,
		values:     make(map[string]*V),
		labels:     make(map[string]map[string]string),
		newValue:   newValue,
	}
}

// get returns the value for labelValues, creating it on first use. Missing
// values are filled with ""; extra ones are ignored.
func (s *series[V]) get(labelValues []string) *V {
	values := make([]string, len(s.labelNames))
	copy(values, labelValues)
	key := strings.Join(values, "\x00")

	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	labels := make(map[string]string, len(s.labelNames))
	for i, name := range s.labelNames {
		labels[name] = values[i]
	}
	v = s.newValue()
	s.values[key] = v
	s.labels[key] = labels
	return v
}

func (s *series[V]) each(fn func(labels map[string]string, v *V)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(s.labels[k], s.values[k])
	}
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name, help string
	series     *series[atomicFloat64]
}

// CounterChild is a counter bound to one label combination.
type CounterChild struct {
	v *atomicFloat64
}

// WithLabels binds label values in declaration order.
func (c *Counter) WithLabels(values ...string) CounterChild {
	return CounterChild{v: c.series.get(values)}
}

// Inc adds one.
func (c CounterChild) Inc() { c.v.Add(1) }

// Add adds delta; negative values are ignored.
func (c CounterChild) Add(delta float64) {
	if delta > 0 {
		c.v.Add(delta)
	}
}

func (c *Counter) Name() string { return c.name }
func (c *Counter) Help() string { return c.help }
func (c *Counter) Type() Type   { return TypeCounter }

func (c *Counter) Collect() []Sample {
	var out []Sample
	c.series.each(func(labels map[string]string, v *atomicFloat64) {
		out = append(out, Sample{Name: c.name, Labels: labels, Value: v.Load()})
	})
	return out
}

// DefaultBuckets are request duration buckets in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Histogram tracks the distribution of observed values.
type Histogram struct {
	name, help string
	buckets    []float64
	series     *series[histogramValue]
}

type histogramValue struct {
	counts []atomic.Uint64 // per bucket, non-cumulative; last is +Inf
	sum    atomicFloat64
	count  atomic.Uint64
}

// HistogramChild is a histogram bound to one label combination.
type HistogramChild struct {
	buckets []float64
	v       *histogramValue
}

// WithLabels binds label values in declaration order.
func (h *Histogram) WithLabels(values ...string) HistogramChild {
	return HistogramChild{buckets: h.buckets, v: h.series.get(values)}
}

// Observe records value.
func (h HistogramChild) Observe(value float64) {
	i := sort.SearchFloat64s(h.buckets, value)
	h.v.counts[i].Add(1)
	h.v.sum.Add(value)
	h.v.count.Add(1)
}

func (h *Histogram) Name() string { return h.name }
func (h *Histogram) Help() string { return h.help }
func (h *Histogram) Type() Type   { return TypeHistogram }

func (h *Histogram) Collect() []Sample {
	var out []Sample
	h.series.each(func(labels map[string]string, v *histogramValue) {
		var cumulative uint64
		for i := range v.counts {
			cumulative += v.counts[i].Load()
			le := "+Inf"
			if i < len(h.buckets) {
				le = formatFloat(h.buckets[i])
			}
			out = append(out, Sample{Name: h.name + "_bucket", Labels: withLabel(labels, "le", le), Value: float64(cumulative)})
		}
		out = append(out,
			Sample{Name: h.name + "_sum", Labels: labels, Value: v.sum.Load()},
			Sample{Name: h.name + "_count", Labels: labels, Value: float64(v.count.Load())},
		)
	})
	return out
}

// GaugeFunc reports the value returned by fn at scrape time.
type GaugeFunc struct {
	name, help string
	typ        Type
	fn         func() float64
}

func (g *GaugeFunc) Name() string { return g.name }
func (g *GaugeFunc) Help() string { return g.help }
func (g *GaugeFunc) Type() Type   { return g.typ }

func (g *GaugeFunc) Collect() []Sample {
	return []Sample{{Name: g.name, Value: g.fn()}}
}

// Registry holds registered metrics in registration order.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter creates and registers a counter.
func (r *Registry) NewCounter(name, help string, labelNames ...string) *Counter {
	c := &Counter{
		name:   name,
		help:   help,
		series: newSeries(labelNames, func() *atomicFloat64 { return new(atomicFloat64) }),
	}
	r.register(c)
	return c
}

// NewHistogram creates and registers a histogram. A nil buckets slice uses
// DefaultBuckets.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labelNames ...string) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	h := &Histogram{name: name, help: help, buckets: sorted}
	h.series = newSeries(labelNames, func() *histogramValue {
		return &histogramValue{counts: make([]atomic.Uint64, len(sorted)+1)}
	})
	r.register(h)
	return h
}

// NewGaugeFunc registers a gauge read from fn.
func (r *Registry) NewGaugeFunc(name, help string, fn func() float64) *GaugeFunc {
	g := &GaugeFunc{name: name, help: help, typ: TypeGauge, fn: fn}
	r.register(g)
	return g
}

// NewCounterFunc registers a counter read from fn. fn must never decrease.
func (r *Registry) NewCounterFunc(name, help string, fn func() float64) *GaugeFunc {
	g := &GaugeFunc{name: name, help: help, typ: TypeCounter, fn: fn}
	r.register(g)
	return g
}

// register panics on a duplicate name, which would produce invalid output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("metrics: duplicate metric name %s", m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = r.Expose(w)
	})
}

// Expose writes every metric with at least one sample.
func (r *Registry) Expose(w io.Writer) error {
	r.mu.RLock()
	metrics := append([]Metric(nil), r.metrics...)
	r.mu.RUnlock()

	for _, m := range metrics {
		samples := m.Collect()
		if len(samples) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", m.Name(), escapeHelp(m.Help()), m.Name(), m.Type()); err != nil {
			return err
		}
		for _, s := range samples {
			if _, err := io.WriteString(w, formatSample(s)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatSample(s Sample) string {
	if len(s.Labels) == 0 {
		return s.Name + " " + formatFloat(s.Value) + "\n"
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + escapeLabelValue(s.Labels[k]) + `"`
	}
	return s.Name + "{" + strings.Join(parts, ",") + "} " + formatFloat(s.Value) + "\n"
}

func withLabel(labels map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		out[k] = v
	}
	out[key] = value
	return out
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
)

func escapeHelp(s string) string       { return helpEscaper.Replace(s) }
func escapeLabelValue(s string) string { return labelEscaper.Replace(s) }
