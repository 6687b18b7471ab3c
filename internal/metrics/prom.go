package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exports run progress to Prometheus. Each recorder owns its
// registry.
type Recorder struct {
	registry *prometheus.Registry

	steps        *prometheus.CounterVec
	records      prometheus.Counter
	sinkRetries  prometheus.Counter
	totalEnergy  prometheus.Gauge
	energyDrift  prometheus.Gauge
	stepDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mdsim_steps_total",
			Help: "Integration steps taken, by integrator",
		}, []string{"integrator"}),
		records: factory.NewCounter(prometheus.CounterOpts{
			Name: "mdsim_records_total",
			Help: "Energy records written to the sink",
		}),
		sinkRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "mdsim_sink_retries_total",
			Help: "Sink writes that failed once and were retried",
		}),
		totalEnergy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mdsim_total_energy",
			Help: "Total energy summed over all particles at the last report",
		}),
		energyDrift: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mdsim_energy_drift",
			Help: "Largest relative total-energy drift observed so far",
		}),
		stepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mdsim_report_interval_seconds",
			Help:    "Wall time spent between consecutive reports",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Steps(integrator string, n int) {
	r.steps.WithLabelValues(integrator).Add(float64(n))
}

func (r *Recorder) Record(total, drift float64) {
	r.records.Inc()
	r.totalEnergy.Set(total)
	r.energyDrift.Set(drift)
}

func (r *Recorder) SinkRetry() { r.sinkRetries.Inc() }

func (r *Recorder) ReportInterval(seconds float64) { r.stepDuration.Observe(seconds) }
