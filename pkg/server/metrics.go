package server

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics lives in its own registry so several servers can coexist in one process
type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	latency    prometheus.Histogram
	candidates prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordoracle_requests_total",
				Help: "Requests handled, by action",
			},
			[]string{"action"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordoracle_errors_total",
				Help: "Error frames sent, by code",
			},
			[]string{"code"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordoracle_cache_hits_total",
			Help: "Suggest requests answered from the response cache",
		}),
		cacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordoracle_cache_misses_total",
			Help: "Suggest requests resolved against the index",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wordoracle_suggest_seconds",
			Help:    "Time spent resolving suggest requests",
			Buckets: prometheus.ExponentialBuckets(0.00005, 1.5, 25),
		}),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordoracle_candidates",
			Help: "Distinct suggestions in the index",
		}),
	}
	m.registry.MustRegister(m.requests, m.errors, m.cacheHits, m.cacheMiss, m.latency, m.candidates)
	return m
}

// snapshot flattens the registry into name{labels} -> value.
// Histograms report their _count and _sum.
func (m *metrics) snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			pairs := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				pairs = append(pairs, lp.GetName()+"=\""+lp.GetValue()+"\"")
			}
			sort.Strings(pairs)
			name := mf.GetName()
			if len(pairs) > 0 {
				name += "{" + strings.Join(pairs, ",") + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				out[name] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[name] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				out[name+"_count"] = float64(metric.GetHistogram().GetSampleCount())
				out[name+"_sum"] = metric.GetHistogram().GetSampleSum()
			}
		}
	}
	return out, nil
}
