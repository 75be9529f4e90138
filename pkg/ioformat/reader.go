// Package ioformat reads the CSV training data and writes the CSV
// forecast output, adapted from the teacher's pkg/storage I/O boundary
// (there, an in-memory JSON-shaped map; here, a CSV stream) since the
// contract's interchange format is flat CSV rather than the cluster
// telemetry JSON the teacher's storage layer shaped itself around.
package ioformat

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dengue-forecast/pkg/denguedata"
	"dengue-forecast/pkg/epiweek"
	"dengue-forecast/pkg/ferrors"
)

// expected input columns, case-insensitive and order-independent, per the
// documented external interface (§6): one aggregated-per-region CSV, no
// region column (the file itself is scoped to a single region). pressure_*
// is accepted for schema compatibility with upstream aggregation exports
// but is not part of the model's climate tuple, so its values are parsed
// and then discarded.
var inputColumns = []string{
	"epiweek", "cases",
	"temp_min", "temp_med", "temp_max",
	"precip_min", "precip_med", "precip_max",
	"pressure_min", "pressure_med", "pressure_max",
	"rel_humid_min", "rel_humid_med", "rel_humid_max",
	"thermal_range", "rainy_days",
}

// climate columns actually substituted via floor and folded into
// denguedata.Climate; pressure_* is intentionally excluded.
var climateColumns = []string{
	"temp_min", "temp_med", "temp_max",
	"precip_min", "precip_med", "precip_max",
	"rel_humid_min", "rel_humid_med", "rel_humid_max",
	"thermal_range", "rainy_days",
}

// RegionObservations groups parsed rows by region, preserving file order.
type RegionObservations struct {
	Region       string
	Observations []denguedata.Observation
}

// ReadTrainingCSV parses the contract's input schema: arbitrary column
// order, case-insensitive headers, one row per epiweek, all rows scoped to
// a single region. Missing numeric fields are floor-substituted with half
// the smallest positive finite value observed in that column across the
// whole file. region names the file's region for the returned group; if
// the header additionally carries an optional "region" column (a
// convenience this reader accepts beyond the documented contract, for
// multi-region files), rows are grouped by that column instead.
func ReadTrainingCSV(r io.Reader, region string) ([]RegionObservations, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ferrors.New("", "ioformat.ReadTrainingCSV", ferrors.InvalidInput, err)
	}
	colIndex, err := indexColumns(header)
	if err != nil {
		return nil, err
	}
	regionCol, hasRegionCol := colIndex["region"]

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ferrors.New("", "ioformat.ReadTrainingCSV", ferrors.InvalidInput, err)
		}
		rows = append(rows, row)
	}

	floors := computeColumnFloors(rows, colIndex)

	byRegion := make(map[string]*RegionObservations)
	var order []string
	seen := make(map[string]map[epiweek.Epiweek]bool)

	for _, row := range rows {
		rowRegion := region
		if hasRegionCol {
			rowRegion = row[regionCol]
		}
		weekStr := row[colIndex["epiweek"]]
		week, err := epiweek.ParseYYYYWW(weekStr)
		if err != nil {
			return nil, ferrors.New(rowRegion, "ioformat.ReadTrainingCSV", ferrors.InvalidInput, err)
		}

		if seen[rowRegion] == nil {
			seen[rowRegion] = make(map[epiweek.Epiweek]bool)
		}
		if seen[rowRegion][week] {
			return nil, ferrors.New(rowRegion, "ioformat.ReadTrainingCSV", ferrors.InvalidInput,
				fmt.Errorf("duplicate epiweek %s", week))
		}
		seen[rowRegion][week] = true

		cases, err := strconv.Atoi(strings.TrimSpace(row[colIndex["cases"]]))
		if err != nil {
			return nil, ferrors.New(rowRegion, "ioformat.ReadTrainingCSV", ferrors.InvalidInput, err)
		}

		climate := Climate(row, colIndex, floors)

		if byRegion[rowRegion] == nil {
			byRegion[rowRegion] = &RegionObservations{Region: rowRegion}
			order = append(order, rowRegion)
		}
		byRegion[rowRegion].Observations = append(byRegion[rowRegion].Observations, denguedata.Observation{
			Week: week, Cases: cases, Climate: climate,
		})
	}

	out := make([]RegionObservations, 0, len(order))
	for _, r := range order {
		out = append(out, *byRegion[r])
	}
	return out, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range inputColumns {
		if _, ok := idx[want]; !ok {
			return nil, ferrors.New("", "ioformat.indexColumns", ferrors.InvalidInput,
				fmt.Errorf("missing required column %q", want))
		}
	}
	return idx, nil
}

// computeColumnFloors finds, per climate column, half the smallest
// positive finite value present, the substitute for missing entries.
func computeColumnFloors(rows [][]string, colIndex map[string]int) map[string]float64 {
	floors := make(map[string]float64, len(climateColumns))
	for _, col := range climateColumns {
		min := 0.0
		found := false
		for _, row := range rows {
			raw := strings.TrimSpace(row[colIndex[col]])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v <= 0 {
				continue
			}
			if !found || v < min {
				min, found = v, true
			}
		}
		if !found {
			min = 0
		}
		floors[col] = min / 2
	}
	return floors
}

// Climate parses the nine climate columns (plus two derived), substituting
// the precomputed floor for any blank cell.
func Climate(row []string, colIndex map[string]int, floors map[string]float64) denguedata.Climate {
	get := func(col string) float64 {
		raw := strings.TrimSpace(row[colIndex[col]])
		if raw == "" {
			return floors[col]
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return floors[col]
		}
		return v
	}
	return denguedata.Climate{
		TempMin: get("temp_min"), TempMed: get("temp_med"), TempMax: get("temp_max"),
		PrecipMin: get("precip_min"), PrecipMed: get("precip_med"), PrecipMax: get("precip_max"),
		HumMin: get("rel_humid_min"), HumMed: get("rel_humid_med"), HumMax: get("rel_humid_max"),
		ThermalRange: get("thermal_range"), RainyDays: get("rainy_days"),
	}
}
