// Package assemble turns each model family's raw output into the
// contract's common ForecastRecord shape: rounding to integer case
// counts, clipping at zero, and a final output-contract ordering
// self-check (§4.9). The percentile-pair bound computation generalizes
// the teacher's Q1/Q3 interquartile calculation from the fixed 25th/75th
// percentiles to the contract's four percentile pairs; ensemble bounds use
// gonum's empirical quantile (an order statistic, no interpolation).
package assemble

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"dengue-forecast/pkg/arp"
	"dengue-forecast/pkg/denguedata"
	"dengue-forecast/pkg/ferrors"
	"dengue-forecast/pkg/sarimax"
)

// percentiles used for the nested 50/80/90/95% prediction intervals.
var bandPercentiles = []float64{0.025, 0.05, 0.10, 0.25, 0.75, 0.90, 0.95, 0.975}

// clipRound rounds to the nearest integer, clips negatives to zero, and
// remaps an exact zero to 1 (§4.9, §8 scenario 3: a rounded-to-zero bound
// is reported as 1, never 0).
func clipRound(v float64) int {
	r := int(v + 0.5)
	if v < 0 {
		r = int(v - 0.5)
	}
	if r < 0 {
		r = 0
	}
	if r == 0 {
		r = 1
	}
	return r
}

// FromCliDengoEnsemble builds ForecastRecords from a CLiDENGO Monte-Carlo
// ensemble ([realization][week] new-case trajectories). Per the contract's
// explicit, intentional non-unification: CLiDENGO's reported Pred is the
// ensemble MEAN at each week, not the percentile-50 used by the other two
// model families.
func FromCliDengoEnsemble(dates []time.Time, ensemble [][]float64) ([]denguedata.ForecastRecord, error) {
	if len(ensemble) == 0 {
		return nil, ferrors.New("", "assemble.FromCliDengoEnsemble", ferrors.InvalidInput, nil)
	}
	horizon := len(ensemble[0])
	records := make([]denguedata.ForecastRecord, horizon)

	column := make([]float64, len(ensemble))
	for w := 0; w < horizon; w++ {
		sum := 0.0
		for r, traj := range ensemble {
			column[r] = traj[w]
			sum += traj[w]
		}
		mean := sum / float64(len(ensemble))

		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)
		bands := quantileBands(sorted)

		records[w] = denguedata.ForecastRecord{
			Date:    dateAt(dates, w),
			Lower95: clipRound(bands[0]), Lower90: clipRound(bands[1]),
			Lower80: clipRound(bands[2]), Lower50: clipRound(bands[3]),
			Pred:    clipRound(mean),
			Upper50: clipRound(bands[4]), Upper80: clipRound(bands[5]),
			Upper90: clipRound(bands[6]), Upper95: clipRound(bands[7]),
		}
	}
	return selfCheck(records)
}

// FromSarimax builds ForecastRecords from a SARIMAX forecast; Pred is
// already the model's percentile-50.
func FromSarimax(dates []time.Time, weeks []sarimax.WeekForecast) ([]denguedata.ForecastRecord, error) {
	records := make([]denguedata.ForecastRecord, len(weeks))
	for i, w := range weeks {
		records[i] = denguedata.ForecastRecord{
			Date:    dateAt(dates, i),
			Lower95: clipRound(w.Lower95), Lower90: clipRound(w.Lower90),
			Lower80: clipRound(w.Lower80), Lower50: clipRound(w.Lower50),
			Pred:    clipRound(w.Pred),
			Upper50: clipRound(w.Upper50), Upper80: clipRound(w.Upper80),
			Upper90: clipRound(w.Upper90), Upper95: clipRound(w.Upper95),
		}
	}
	return selfCheck(records)
}

// FromArp builds ForecastRecords from an ARp quantile forecast; Pred is
// the model's percentile-50 (median).
func FromArp(dates []time.Time, weeks []arp.WeekQuantiles) ([]denguedata.ForecastRecord, error) {
	records := make([]denguedata.ForecastRecord, len(weeks))
	for i, w := range weeks {
		records[i] = denguedata.ForecastRecord{
			Date:    dateAt(dates, i),
			Lower95: clipRound(w.Lower95), Lower90: clipRound(w.Lower90),
			Lower80: clipRound(w.Lower80), Lower50: clipRound(w.Lower50),
			Pred:    clipRound(w.Median),
			Upper50: clipRound(w.Upper50), Upper80: clipRound(w.Upper80),
			Upper90: clipRound(w.Upper90), Upper95: clipRound(w.Upper95),
		}
	}
	return selfCheck(records)
}

func quantileBands(sorted []float64) [8]float64 {
	var out [8]float64
	for i, p := range bandPercentiles {
		out[i] = stat.Quantile(p, stat.Empirical, sorted, nil)
	}
	return out
}

func dateAt(dates []time.Time, i int) time.Time {
	if i < len(dates) {
		return dates[i]
	}
	return time.Time{}
}

// OrderingError reports that an assembled record failed the output
// contract's monotonic quantile ordering invariant, the same bound-check
// idea the teacher's control chart uses to flag samples outside the
// computed UCL/LCL.
type OrderingError struct {
	Index int
}

func (e *OrderingError) Error() string {
	return "assemble: forecast record failed ordering self-check"
}

func selfCheck(records []denguedata.ForecastRecord) ([]denguedata.ForecastRecord, error) {
	for i, r := range records {
		if !r.CheckOrdering() {
			return records, &OrderingError{Index: i}
		}
	}
	return records, nil
}
