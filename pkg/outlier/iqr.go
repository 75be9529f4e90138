package outlier

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// IQRDetector flags residuals outside [Q1 - k*IQR, Q3 + k*IQR], robust to
// the residual distribution's exact shape.
type IQRDetector struct {
	Multiplier float64
	MinSamples int
}

// NewIQRDetector returns a detector with the package defaults.
func NewIQRDetector() *IQRDetector {
	return &IQRDetector{Multiplier: 1.5, MinSamples: 10}
}

// NewIQRDetectorWithConfig builds a detector from Config.
func NewIQRDetectorWithConfig(cfg *Config) *IQRDetector {
	return &IQRDetector{Multiplier: cfg.IQRMultiplier, MinSamples: cfg.MinSamples}
}

func (d *IQRDetector) Name() Method { return MethodIQR }

func (d *IQRDetector) Detect(residuals []float64) *Result {
	return d.DetectWithTimestamps(residuals, nil)
}

func (d *IQRDetector) DetectWithTimestamps(residuals []float64, timestamps []time.Time) *Result {
	result := &Result{Method: MethodIQR, Threshold: d.Multiplier, SampleCount: len(residuals)}
	if len(residuals) < d.MinSamples {
		return result
	}

	sorted := make([]float64, len(residuals))
	copy(sorted, residuals)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1

	result.Q1, result.Q3, result.IQR, result.Median = q1, q3, iqr, median
	result.Mean = stat.Mean(residuals, nil)
	result.StdDev = stat.StdDev(residuals, nil)

	if iqr == 0 {
		return result
	}

	lower := q1 - d.Multiplier*iqr
	upper := q3 + d.Multiplier*iqr

	for i, v := range residuals {
		if v >= lower && v <= upper {
			continue
		}
		var ts time.Time
		if i < len(timestamps) {
			ts = timestamps[i]
		}
		var deviation float64
		if v < lower {
			deviation = (q1 - v) / iqr
		} else {
			deviation = (v - q3) / iqr
		}
		typ := TypePositiveResidual
		if v < median {
			typ = TypeNegativeResidual
		}
		result.Outliers = append(result.Outliers, Outlier{
			Timestamp: ts, Type: typ, Severity: determineSeverityFromIQR(deviation),
			DetectedBy: MethodIQR, Value: v, ExpectedLower: lower, ExpectedUpper: upper,
			Deviation: deviation, Index: i,
			Message: fmt.Sprintf("value %.2f outside IQR bounds [%.2f, %.2f] (Q1=%.2f, Q3=%.2f, IQR=%.2f)", v, lower, upper, q1, q3, iqr),
		})
	}
	return result
}

func determineSeverityFromIQR(deviation float64) Severity {
	abs := deviation
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 3.0:
		return SeverityCritical
	case abs >= 2.0:
		return SeverityHigh
	case abs >= 1.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
