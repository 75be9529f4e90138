package outlier

import "testing"

func withOneSpike(n int, spikeIdx int, spikeVal float64) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 0.1 * float64(i%3-1)
	}
	data[spikeIdx] = spikeVal
	return data
}

func TestZScoreFlagsInjectedSpike(t *testing.T) {
	data := withOneSpike(30, 15, 50)
	result := NewZScoreDetector().Detect(data)
	if !result.HasOutliers() {
		t.Fatal("expected at least one outlier")
	}
	found := false
	for _, o := range result.Outliers {
		if o.Index == 15 {
			found = true
		}
	}
	if !found {
		t.Errorf("spike at index 15 not flagged: %+v", result.Outliers)
	}
}

func TestIQRFlagsInjectedSpike(t *testing.T) {
	data := withOneSpike(30, 10, 80)
	result := NewIQRDetector().Detect(data)
	if !result.HasOutliers() {
		t.Fatal("expected at least one outlier")
	}
}

func TestConsensusRequiresAgreement(t *testing.T) {
	data := withOneSpike(30, 20, 60)
	result := NewConsensusDetector().Detect(data)
	if !result.HasOutliers() {
		t.Fatal("expected consensus outlier")
	}
	for _, o := range result.Outliers {
		if o.DetectedBy != MethodConsensus {
			t.Errorf("outlier DetectedBy = %v, want consensus", o.DetectedBy)
		}
	}
}

func TestBelowMinSamplesReturnsEmpty(t *testing.T) {
	data := []float64{1, 2, 3}
	result := NewZScoreDetector().Detect(data)
	if result.HasOutliers() {
		t.Error("expected no outliers below MinSamples")
	}
}
