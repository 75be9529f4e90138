// Package metrics instruments one forecasting run with a small set of
// Prometheus collectors, trimmed from the teacher's much larger
// PrometheusExporter (reconciliation/SLA/GitOps/Pareto counters) down to
// the handful a batch CLI run can actually emit, using a custom
// non-default registry written to a file instead of served over HTTP
// (this CLI has no network server to expose it on).
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder holds one run's collectors.
type Recorder struct {
	registry *prometheus.Registry

	RegionDuration   *prometheus.HistogramVec
	RegionFailures   *prometheus.CounterVec
	ModelFitDuration *prometheus.HistogramVec
	CalibrationValue *prometheus.GaugeVec
}

// NewRecorder builds a fresh, isolated metrics registry for one run.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()

	regionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "region_duration_seconds",
		Help:    "Wall-clock time spent forecasting one region.",
		Buckets: prometheus.DefBuckets,
	}, []string{"region"})

	regionFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "region_failures_total",
		Help: "Count of region runs that aborted, by error kind.",
	}, []string{"region", "kind"})

	modelFitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "model_fit_duration_seconds",
		Help:    "Wall-clock time spent fitting one model family.",
		Buckets: prometheus.DefBuckets,
	}, []string{"region", "model"})

	calibrationValue := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "calibration_misfit",
		Help: "Final misfit objective value reached by the calibrator.",
	}, []string{"region"})

	reg.MustRegister(regionDuration, regionFailures, modelFitDuration, calibrationValue)

	return &Recorder{
		registry:         reg,
		RegionDuration:   regionDuration,
		RegionFailures:   regionFailures,
		ModelFitDuration: modelFitDuration,
		CalibrationValue: calibrationValue,
	}
}

// WriteTo serializes the current metric values in the Prometheus text
// exposition format, for an optional -metrics-out file instead of an
// HTTP /metrics endpoint.
func (r *Recorder) WriteTo(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
