// Package denguedata holds the immutable data-model types shared by every
// forecasting component: weekly observations, seasons, training spans, and
// forecast output records (spec §3).
package denguedata

import (
	"fmt"
	"time"

	"dengue-forecast/pkg/epiweek"
)

// Climate is the nine-value weekly climate tuple plus the two optional
// derived fields. All values are bounded reals; missing values are
// replaced by the ingester with the smallest positive finite value
// present divided by two before reaching this package.
type Climate struct {
	TempMin, TempMed, TempMax       float64
	PrecipMin, PrecipMed, PrecipMax float64
	HumMin, HumMed, HumMax          float64

	ThermalRange float64
	RainyDays    float64
}

// Observation is a single per-region, per-epiweek weekly record.
type Observation struct {
	Week    epiweek.Epiweek
	Cases   int
	Climate Climate
}

// Season is an ordered sequence of exactly 52 weekly observations spanning
// EW41(Y)..EW40(Y+1).
type Season struct {
	StartYear    int
	Observations [52]Observation
}

// NewSeason validates that obs is aligned to the EW41(startYear)..EW40(startYear+1)
// window and wraps it as a Season.
func NewSeason(startYear int, obs [52]Observation) (Season, error) {
	window := epiweek.SeasonWindow(startYear)
	for i, w := range window {
		if obs[i].Week != w {
			return Season{}, &MisalignedSeasonError{
				Index: i, Want: w, Got: obs[i].Week,
			}
		}
	}
	return Season{StartYear: startYear, Observations: obs}, nil
}

// MisalignedSeasonError reports an observation whose epiweek does not match
// the expected position in the 52-week season window.
type MisalignedSeasonError struct {
	Index     int
	Want, Got epiweek.Epiweek
}

func (e *MisalignedSeasonError) Error() string {
	return fmt.Sprintf("denguedata: season observation %s at index %d does not match expected %s",
		e.Got, e.Index, e.Want)
}

// EW41Cases returns the observed case count at EW41 of the season — the
// empirical population CLiDENGO resamples initial conditions from (§4.5).
func (s Season) EW41Cases() int {
	return s.Observations[0].Cases
}

// CumulativeCases returns the running cumulative case total across the
// 52 weeks of the season, used to build the training cumulative-cases
// matrix D for the calibrator (§4.6).
func (s Season) CumulativeCases() [52]float64 {
	var out [52]float64
	total := 0.0
	for i, o := range s.Observations {
		total += float64(o.Cases)
		out[i] = total
	}
	return out
}

// TrainingSpan is the concatenation of K consecutive seasons plus a partial
// prefix used for parameter identification, all strictly earlier than the
// forecast origin.
type TrainingSpan struct {
	Region  string
	Seasons []Season
	// Prefix holds any partial-season observations preceding Seasons,
	// ordered oldest first, used for AR/SARIMAX identification but not
	// folded into a full Season.
	Prefix []Observation
}

// FlatSeries concatenates Prefix then every Season's observations in
// chronological order, the shape most components consume directly.
func (t TrainingSpan) FlatSeries() []Observation {
	out := make([]Observation, 0, len(t.Prefix)+52*len(t.Seasons))
	out = append(out, t.Prefix...)
	for _, s := range t.Seasons {
		out = append(out, s.Observations[:]...)
	}
	return out
}

// SeasonCount reports how many complete seasons are available, used by the
// InsufficientData checks in §7 (SARIMAX needs >=3, CLiDENGO needs >=2).
func (t TrainingSpan) SeasonCount() int {
	return len(t.Seasons)
}

// ForecastRecord is one output row: (date, four lower/upper pairs, pred).
// All numeric fields are non-negative integers after the zero->1 remap.
type ForecastRecord struct {
	Date time.Time

	Lower95, Lower90, Lower80, Lower50 int
	Pred                               int
	Upper50, Upper80, Upper90, Upper95 int
}

// CheckOrdering verifies the monotonicity invariant from spec §3/§8:
// lower_95 <= lower_90 <= lower_80 <= lower_50 <= pred <= upper_50 <=
// upper_80 <= upper_90 <= upper_95.
func (r ForecastRecord) CheckOrdering() bool {
	vals := []int{r.Lower95, r.Lower90, r.Lower80, r.Lower50, r.Pred, r.Upper50, r.Upper80, r.Upper90, r.Upper95}
	for i := 1; i < len(vals); i++ {
		if vals[i-1] > vals[i] {
			return false
		}
	}
	return true
}
