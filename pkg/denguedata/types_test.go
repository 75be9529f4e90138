package denguedata

import (
	"testing"

	"dengue-forecast/pkg/epiweek"
)

func makeSeason(t *testing.T, startYear int, cases [52]int) Season {
	t.Helper()
	window := epiweek.SeasonWindow(startYear)
	var obs [52]Observation
	for i, w := range window {
		obs[i] = Observation{Week: w, Cases: cases[i]}
	}
	s, err := NewSeason(startYear, obs)
	if err != nil {
		t.Fatalf("NewSeason: %v", err)
	}
	return s
}

func TestNewSeasonRejectsMisalignment(t *testing.T) {
	window := epiweek.SeasonWindow(2020)
	var obs [52]Observation
	for i, w := range window {
		obs[i] = Observation{Week: w}
	}
	// Shuffle one entry out of place.
	obs[3], obs[4] = obs[4], obs[3]

	if _, err := NewSeason(2020, obs); err == nil {
		t.Fatal("expected misalignment error")
	}
}

func TestCumulativeCasesIsMonotonic(t *testing.T) {
	var cases [52]int
	for i := range cases {
		cases[i] = i + 1
	}
	s := makeSeason(t, 2021, cases)
	cum := s.CumulativeCases()

	for i := 1; i < len(cum); i++ {
		if cum[i] < cum[i-1] {
			t.Fatalf("cumulative cases not monotonic at %d", i)
		}
	}
	if cum[51] != 52*53/2 {
		t.Errorf("total = %v, want %v", cum[51], 52*53/2)
	}
}

func TestForecastRecordCheckOrdering(t *testing.T) {
	ok := ForecastRecord{
		Lower95: 1, Lower90: 2, Lower80: 3, Lower50: 4,
		Pred: 5,
		Upper50: 6, Upper80: 7, Upper90: 8, Upper95: 9,
	}
	if !ok.CheckOrdering() {
		t.Error("expected ordering to hold")
	}

	bad := ok
	bad.Lower90 = 100
	if bad.CheckOrdering() {
		t.Error("expected ordering violation to be detected")
	}
}

func TestTrainingSpanFlatSeries(t *testing.T) {
	var cases1, cases2 [52]int
	for i := range cases1 {
		cases1[i] = 1
		cases2[i] = 2
	}
	span := TrainingSpan{
		Region:  "SP",
		Seasons: []Season{makeSeason(t, 2020, cases1), makeSeason(t, 2021, cases2)},
	}
	flat := span.FlatSeries()
	if len(flat) != 104 {
		t.Fatalf("len(flat) = %d, want 104", len(flat))
	}
	if span.SeasonCount() != 2 {
		t.Errorf("SeasonCount() = %d, want 2", span.SeasonCount())
	}
}
