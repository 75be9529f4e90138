package outlier

import "time"

// ConsensusDetector combines Z-Score and IQR tests and reports only the
// residuals both methods flag, reducing false-positive intervention
// dummies in the SARIMAX fit (§4.7).
type ConsensusDetector struct {
	Detectors    []Detector
	MinAgreement int
	Config       *Config
}

// NewConsensusDetector builds a consensus detector with package defaults.
func NewConsensusDetector() *ConsensusDetector {
	return NewConsensusDetectorWithConfig(DefaultConfig())
}

// NewConsensusDetectorWithConfig builds a consensus detector from Config.
func NewConsensusDetectorWithConfig(cfg *Config) *ConsensusDetector {
	return &ConsensusDetector{
		Detectors: []Detector{
			NewZScoreDetectorWithConfig(cfg),
			NewIQRDetectorWithConfig(cfg),
		},
		MinAgreement: cfg.ConsensusThreshold,
		Config:       cfg,
	}
}

func (d *ConsensusDetector) Name() Method { return MethodConsensus }

func (d *ConsensusDetector) Detect(residuals []float64) *Result {
	return d.DetectWithTimestamps(residuals, nil)
}

func (d *ConsensusDetector) DetectWithTimestamps(residuals []float64, timestamps []time.Time) *Result {
	result := &Result{Method: MethodConsensus, Threshold: float64(d.MinAgreement), SampleCount: len(residuals)}
	if len(residuals) < d.Config.MinSamples {
		return result
	}

	all := make([]*Result, len(d.Detectors))
	for i, det := range d.Detectors {
		all[i] = det.DetectWithTimestamps(residuals, timestamps)
	}
	for _, r := range all {
		if r.Mean != 0 || r.StdDev != 0 {
			result.Mean, result.StdDev = r.Mean, r.StdDev
			result.Q1, result.Q3, result.IQR, result.Median = r.Q1, r.Q3, r.IQR, r.Median
			break
		}
	}

	votes := make(map[int][]Outlier)
	for _, r := range all {
		for _, o := range r.Outliers {
			votes[o.Index] = append(votes[o.Index], o)
		}
	}

	for index, group := range votes {
		if len(group) < d.MinAgreement {
			continue
		}
		result.Outliers = append(result.Outliers, mergeVotes(index, group, residuals[index], len(d.Detectors), timestamps))
	}
	insertionSortByIndex(result.Outliers)
	return result
}

func mergeVotes(index int, group []Outlier, value float64, nDetectors int, timestamps []time.Time) Outlier {
	highest := SeverityLow
	var lowerSum, upperSum, devSum float64
	for _, o := range group {
		if severityRank(o.Severity) > severityRank(highest) {
			highest = o.Severity
		}
		lowerSum += o.ExpectedLower
		upperSum += o.ExpectedUpper
		devSum += o.Deviation
	}
	var ts time.Time
	if index < len(timestamps) {
		ts = timestamps[index]
	}
	return Outlier{
		Timestamp: ts, Type: group[0].Type, Severity: highest, DetectedBy: MethodConsensus,
		Value: value, ExpectedLower: lowerSum / float64(len(group)), ExpectedUpper: upperSum / float64(len(group)),
		Deviation: devSum / float64(len(group)), Index: index,
	}
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func insertionSortByIndex(outliers []Outlier) {
	for i := 1; i < len(outliers); i++ {
		key := outliers[i]
		j := i - 1
		for j >= 0 && outliers[j].Index > key.Index {
			outliers[j+1] = outliers[j]
			j--
		}
		outliers[j+1] = key
	}
}
