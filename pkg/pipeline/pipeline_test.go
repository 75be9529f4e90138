package pipeline

import (
	"testing"

	"dengue-forecast/pkg/epiweek"
)

func TestNextWeekAdvancesWithinYear(t *testing.T) {
	w, err := epiweek.New(2023, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := nextWeek(w)
	if err != nil {
		t.Fatalf("nextWeek: %v", err)
	}
	want := epiweek.Epiweek{Year: 2023, Week: 11}
	if got != want {
		t.Errorf("nextWeek(%v) = %v, want %v", w, got, want)
	}
}

func TestNextWeekWrapsYearBoundary(t *testing.T) {
	w, err := epiweek.New(2023, 52)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := nextWeek(w)
	if err != nil {
		t.Fatalf("nextWeek: %v", err)
	}
	want := epiweek.Epiweek{Year: 2024, Week: 1}
	if got != want {
		t.Errorf("nextWeek(%v) = %v, want %v", w, got, want)
	}
}

func TestForecastDatesProducesHorizonConsecutiveWeeks(t *testing.T) {
	last, err := epiweek.New(2023, 40)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dates, err := forecastDates(last, 52)
	if err != nil {
		t.Fatalf("forecastDates: %v", err)
	}
	if len(dates) != 52 {
		t.Fatalf("got %d dates, want 52", len(dates))
	}
	for i := 1; i < len(dates); i++ {
		diff := dates[i].Sub(dates[i-1])
		if diff.Hours() != 24*7 {
			t.Errorf("dates[%d]-dates[%d] = %v, want 168h", i, i-1, diff)
		}
	}
}
