// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trustake/staker/log"
)

const namespace = "staker_metrics"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics sets the Prometheus service as the default
// metrics implementation. It cannot be reset.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	counters    sync.Map
	counterVecs sync.Map
	gauges      sync.Map
	histograms  sync.Map
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	if meter, ok := o.counters.Load(name); ok {
		return meter.(CountMeter)
	}
	meter, err := o.newCountMeter(name)
	if err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
		return &noopMeter{}
	}
	o.counters.Store(name, meter)
	return meter
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	if meter, ok := o.counterVecs.Load(name); ok {
		return meter.(CountVecMeter)
	}
	meter, err := o.newCountVecMeter(name, labels)
	if err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
		return &noopMeter{}
	}
	o.counterVecs.Store(name, meter)
	return meter
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	if meter, ok := o.gauges.Load(name); ok {
		return meter.(GaugeMeter)
	}
	meter, err := o.newGaugeMeter(name)
	if err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
		return &noopMeter{}
	}
	o.gauges.Store(name, meter)
	return meter
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	if meter, ok := o.histograms.Load(name); ok {
		return meter.(HistogramMeter)
	}
	meter, err := o.newHistogramMeter(name, buckets)
	if err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
		return &noopMeter{}
	}
	o.histograms.Store(name, meter)
	return meter
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func (o *prometheusMetrics) newCountMeter(name string) (CountMeter, error) {
	meter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	})
	if err := prometheus.Register(meter); err != nil {
		return nil, err
	}
	return &promCounter{counter: meter}, nil
}

func (o *prometheusMetrics) newCountVecMeter(name string, labels []string) (CountVecMeter, error) {
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	}, labels)
	if err := prometheus.Register(meter); err != nil {
		return nil, err
	}
	return &promCounterVec{counter: meter}, nil
}

func (o *prometheusMetrics) newGaugeMeter(name string) (GaugeMeter, error) {
	meter := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
	})
	if err := prometheus.Register(meter); err != nil {
		return nil, err
	}
	return &promGauge{gauge: meter}, nil
}

func (o *prometheusMetrics) newHistogramMeter(name string, buckets []int64) (HistogramMeter, error) {
	floats := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		floats = append(floats, float64(b))
	}
	meter := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floats,
	})
	if err := prometheus.Register(meter); err != nil {
		return nil, err
	}
	return &promHistogram{histogram: meter}, nil
}

type promCounter struct {
	counter prometheus.Counter
}

func (c *promCounter) Add(i int64) { c.counter.Add(float64(i)) }

type promCounterVec struct {
	counter *prometheus.CounterVec
}

func (c *promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (g *promGauge) Set(i int64) { g.gauge.Set(float64(i)) }
func (g *promGauge) Add(i int64) { g.gauge.Add(float64(i)) }

type promHistogram struct {
	histogram prometheus.Histogram
}

func (h *promHistogram) Observe(i int64) { h.histogram.Observe(float64(i)) }
