package main

import (
	"testing"

	"dengue-forecast/pkg/denguedata"
	"dengue-forecast/pkg/epiweek"
	"dengue-forecast/pkg/ioformat"
)

func obsAt(year, week, cases int) denguedata.Observation {
	w, err := epiweek.New(year, week)
	if err != nil {
		panic(err)
	}
	return denguedata.Observation{Week: w, Cases: cases}
}

func TestBuildTrainingSpanChunksFullSeasonsFromEW41(t *testing.T) {
	var obs []denguedata.Observation
	for _, w := range epiweek.SeasonWindow(2020) {
		obs = append(obs, obsAt(w.Year, w.Week, 1))
	}
	for _, w := range epiweek.SeasonWindow(2021) {
		obs = append(obs, obsAt(w.Year, w.Week, 2))
	}

	span, err := buildTrainingSpan(ioformat.RegionObservations{Region: "SP", Observations: obs})
	if err != nil {
		t.Fatalf("buildTrainingSpan: %v", err)
	}
	if len(span.Prefix) != 0 {
		t.Errorf("expected no prefix, got %d observations", len(span.Prefix))
	}
	if len(span.Seasons) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(span.Seasons))
	}
	if span.Seasons[0].StartYear != 2020 || span.Seasons[1].StartYear != 2021 {
		t.Errorf("unexpected season start years: %d, %d", span.Seasons[0].StartYear, span.Seasons[1].StartYear)
	}
}

func TestBuildTrainingSpanCarriesLeadingPartialSeasonAsPrefix(t *testing.T) {
	var obs []denguedata.Observation
	// Partial leading run before the first EW41: weeks 39 and 40 of 2019.
	obs = append(obs, obsAt(2019, 39, 3), obsAt(2019, 40, 4))

	span, err := buildTrainingSpan(ioformat.RegionObservations{Region: "RJ", Observations: obs})
	if err != nil {
		t.Fatalf("buildTrainingSpan: %v", err)
	}
	if len(span.Seasons) != 0 {
		t.Errorf("expected no complete season, got %d", len(span.Seasons))
	}
	if len(span.Prefix) == 0 {
		t.Error("expected leading partial run to be carried as prefix")
	}
}

func TestBuildTrainingSpanRejectsEmptyRegion(t *testing.T) {
	if _, err := buildTrainingSpan(ioformat.RegionObservations{Region: "XX"}); err == nil {
		t.Error("expected error for region with no observations")
	}
}

func TestBuildTrainingSpanSortsUnorderedInput(t *testing.T) {
	window := epiweek.SeasonWindow(2022)
	var obs []denguedata.Observation
	for i := len(window) - 1; i >= 0; i-- {
		obs = append(obs, obsAt(window[i].Year, window[i].Week, i))
	}

	span, err := buildTrainingSpan(ioformat.RegionObservations{Region: "MG", Observations: obs})
	if err != nil {
		t.Fatalf("buildTrainingSpan: %v", err)
	}
	if len(span.Seasons) != 1 {
		t.Fatalf("expected 1 season after sorting, got %d", len(span.Seasons))
	}
	if span.Seasons[0].Observations[0].Week != window[0] {
		t.Errorf("season not correctly aligned after sort: got %v, want %v", span.Seasons[0].Observations[0].Week, window[0])
	}
}
