package outlier

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ZScoreDetector flags residuals more than Threshold standard deviations
// from the residual mean.
type ZScoreDetector struct {
	Threshold  float64
	MinSamples int
}

// NewZScoreDetector returns a detector with the package defaults.
func NewZScoreDetector() *ZScoreDetector {
	return &ZScoreDetector{Threshold: 3.0, MinSamples: 10}
}

// NewZScoreDetectorWithConfig builds a detector from Config.
func NewZScoreDetectorWithConfig(cfg *Config) *ZScoreDetector {
	return &ZScoreDetector{Threshold: cfg.ZScoreThreshold, MinSamples: cfg.MinSamples}
}

func (d *ZScoreDetector) Name() Method { return MethodZScore }

func (d *ZScoreDetector) Detect(residuals []float64) *Result {
	return d.DetectWithTimestamps(residuals, nil)
}

func (d *ZScoreDetector) DetectWithTimestamps(residuals []float64, timestamps []time.Time) *Result {
	result := &Result{Method: MethodZScore, Threshold: d.Threshold, SampleCount: len(residuals)}
	if len(residuals) < d.MinSamples {
		return result
	}

	mean := stat.Mean(residuals, nil)
	sd := stat.StdDev(residuals, nil)
	result.Mean = mean
	result.StdDev = sd
	if sd == 0 {
		return result
	}

	lower := mean - d.Threshold*sd
	upper := mean + d.Threshold*sd

	for i, v := range residuals {
		z := (v - mean) / sd
		if math.Abs(z) <= d.Threshold {
			continue
		}
		var ts time.Time
		if i < len(timestamps) {
			ts = timestamps[i]
		}
		typ := TypePositiveResidual
		if v < mean {
			typ = TypeNegativeResidual
		}
		result.Outliers = append(result.Outliers, Outlier{
			Timestamp: ts, Type: typ, Severity: determineSeverity(z),
			DetectedBy: MethodZScore, Value: v, ExpectedLower: lower, ExpectedUpper: upper,
			Deviation: z, Index: i,
			Message: fmt.Sprintf("z-score %.2f exceeds threshold %.2f (value=%.2f, mean=%.2f, stddev=%.2f)", z, d.Threshold, v, mean, sd),
		})
	}
	return result
}
