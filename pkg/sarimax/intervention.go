package sarimax

import "dengue-forecast/pkg/outlier"

// InterventionDummies runs consensus residual outlier detection over the
// log-transformed training series and returns one 0/1 dummy column per
// week, flagging additive-outlier weeks so a future OLS fit can absorb
// them as an explicit regressor instead of letting them bias the AR fit.
func InterventionDummies(cases []float64) []float64 {
	logged := logTransform(cases)
	result := outlier.NewConsensusDetector().Detect(logged)
	dummies := make([]float64, len(logged))
	for _, o := range result.Outliers {
		if o.Index >= 0 && o.Index < len(dummies) {
			dummies[o.Index] = 1
		}
	}
	return dummies
}
