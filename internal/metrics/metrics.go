// Package metrics exports decode counters and latencies to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ib-77/vrcdecode/pkg/vrc"
)

const namespace = "vrcdecode"

// Collector implements vrc.Observer.
type Collector struct {
	decodes     *prometheus.CounterVec
	provenance  *prometheus.CounterVec
	invalidText prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewCollector registers the decode metrics on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		decodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "decodes_total",
				Help:      "Decodes by outcome and failure kind",
			},
			[]string{"outcome", "kind"},
		),
		provenance: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "recovered_total",
				Help:      "Successful decodes by text provenance",
			},
			[]string{"provenance"},
		),
		invalidText: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "invalid_text_total",
				Help:      "Successful decodes that replaced invalid code units",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "decode_duration_seconds",
				Help:      "Pipeline duration in seconds",
				Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"outcome"},
		),
	}

	for _, col := range []prometheus.Collector{c.decodes, c.provenance, c.invalidText, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveDecode(d vrc.Decoded, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	c.decodes.WithLabelValues(outcome, string(vrc.KindOf(err))).Inc()
	c.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err == nil {
		c.provenance.WithLabelValues(string(d.Provenance)).Inc()
		if d.InvalidText {
			c.invalidText.Inc()
		}
	}
}
