// Package pipeline orchestrates one region's forecast: ingest, calibrate,
// forecast, assemble, write. Adapted from the teacher's controller
// Reconciler, whose shape (one entry point composing many collaborators,
// continuing past a single failure to the next unit of work rather than
// halting the whole run) generalizes directly from per-namespace
// reconciliation to per-region forecasting.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dengue-forecast/pkg/arp"
	"dengue-forecast/pkg/assemble"
	"dengue-forecast/pkg/calibrate"
	"dengue-forecast/pkg/clidengo"
	"dengue-forecast/pkg/denguedata"
	"dengue-forecast/pkg/epiweek"
	"dengue-forecast/pkg/ferrors"
	"dengue-forecast/pkg/ioformat"
	"dengue-forecast/pkg/metrics"
	"dengue-forecast/pkg/obslog"
	"dengue-forecast/pkg/regionconfig"
	"dengue-forecast/pkg/sarimax"
)

// Pipeline holds the collaborators shared across every region run.
type Pipeline struct {
	resolver *regionconfig.Resolver
	log      *obslog.Logger
	rec      *metrics.Recorder
	outDir   string
}

// New builds a Pipeline writing output CSVs under outDir.
func New(resolver *regionconfig.Resolver, log *obslog.Logger, rec *metrics.Recorder, outDir string) *Pipeline {
	return &Pipeline{resolver: resolver, log: log, rec: rec, outDir: outDir}
}

// RunAll runs every region's pipeline, logging and counting failures but
// never letting one region's failure stop the others (§7's
// abort-and-continue-next-region policy).
func (p *Pipeline) RunAll(ctx context.Context, spans []denguedata.TrainingSpan, window regionconfig.ValidationWindow, seed int64) int {
	failures := 0
	for _, span := range spans {
		start := time.Now()
		if err := p.RunRegion(ctx, span, window, seed); err != nil {
			failures++
			kind := "unknown"
			if fe, ok := err.(*ferrors.Error); ok {
				kind = string(fe.Kind)
			}
			p.rec.RegionFailures.WithLabelValues(span.Region, kind).Inc()
			p.log.WithRegion(span.Region).WithError(err).Error("region forecast aborted")
			continue
		}
		p.rec.RegionDuration.WithLabelValues(span.Region).Observe(time.Since(start).Seconds())
	}
	return failures
}

// RunRegion runs CLiDENGO, SARIMAX, and ARp for one region and writes
// three output CSVs (one per model family) under outDir/<region>/.
func (p *Pipeline) RunRegion(ctx context.Context, span denguedata.TrainingSpan, window regionconfig.ValidationWindow, seed int64) error {
	cfg := p.resolver.Resolve(span.Region, window, seed)
	series := span.FlatSeries()
	if len(series) == 0 {
		return ferrors.New(span.Region, "pipeline.RunRegion", ferrors.InsufficientData, nil)
	}

	lastWeek := series[len(series)-1].Week
	dates, err := forecastDates(lastWeek, cfg.ForecastHorizon)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.RunRegion", ferrors.InvalidInput, err)
	}

	regionDir := filepath.Join(p.outDir, span.Region)
	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		return ferrors.New(span.Region, "pipeline.RunRegion", ferrors.OutputContract, err)
	}

	if err := p.runSarimax(span, series, cfg, dates, regionDir); err != nil {
		return err
	}
	if err := p.runArp(span, series, cfg, dates, regionDir); err != nil {
		return err
	}
	if err := p.runCliDengo(ctx, span, series, cfg, dates, regionDir); err != nil {
		return err
	}
	return nil
}

func forecastDates(last epiweek.Epiweek, horizon int) ([]time.Time, error) {
	dates := make([]time.Time, horizon)
	week := last
	for i := 0; i < horizon; i++ {
		var err error
		week, err = nextWeek(week)
		if err != nil {
			return nil, err
		}
		d, err := week.Date()
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}

func nextWeek(w epiweek.Epiweek) (epiweek.Epiweek, error) {
	if w.Week >= 52 {
		return epiweek.New(w.Year+1, 1)
	}
	return epiweek.New(w.Year, w.Week+1)
}

func (p *Pipeline) runSarimax(span denguedata.TrainingSpan, series []denguedata.Observation, cfg regionconfig.ModelConfig, dates []time.Time, regionDir string) error {
	if span.SeasonCount() < 3 {
		return ferrors.New(span.Region, "pipeline.runSarimax", ferrors.InsufficientData, nil)
	}

	cases := make([]float64, len(series))
	temp := make([]float64, len(series))
	precip := make([]float64, len(series))
	sum := 0.0
	for i, o := range series {
		cases[i] = float64(o.Cases)
		temp[i] = o.Climate.TempMed
		// Trailing 52-week mean of precip_med (fewer weeks at the start).
		sum += o.Climate.PrecipMed
		n := i + 1
		if i >= 52 {
			sum -= series[i-52].Climate.PrecipMed
			n = 52
		}
		precip[i] = sum / float64(n)
	}

	model, err := sarimax.Fit(span.Region, sarimax.FitInput{
		Cases: cases,
		Exog:  sarimax.Exogenous{TempMed: temp, RollingPrecip: precip},
		Order: cfg.SarimaxOrder,
	})
	if err != nil {
		return err
	}

	replayLen := 52
	if replayLen > len(temp) {
		replayLen = len(temp)
	}
	// §4.7: run the full horizon-67 forecast from the EW25 origin, then
	// slice out the 52-week EW41..EW40 reporting season.
	futureExog := sarimax.SeasonalReplay(temp[len(temp)-replayLen:], precip[len(precip)-replayLen:], cfg.SarimaxHorizon)
	forecast := model.Forecast(cfg.SarimaxHorizon, futureExog)
	reported := sarimax.ReportingSlice(forecast)

	// The reported weeks are forecast weeks 16..67, so their dates start 15
	// weeks after the first forecast week.
	fullDates, err := forecastDates(series[len(series)-1].Week, cfg.SarimaxHorizon)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runSarimax", ferrors.InvalidInput, err)
	}
	records, err := assemble.FromSarimax(fullDates[15:15+len(reported)], reported)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runSarimax", ferrors.OutputContract, err)
	}
	return writeRecords(regionDir, "sarimax.csv", records)
}

func (p *Pipeline) runArp(span denguedata.TrainingSpan, series []denguedata.Observation, cfg regionconfig.ModelConfig, dates []time.Time, regionDir string) error {
	cases := make([]float64, len(series))
	for i, o := range series {
		cases[i] = float64(o.Cases)
	}

	model, err := arp.Fit(span.Region, cases, cfg.ArOrder)
	if err != nil {
		return err
	}

	// §4.8: simulate the full 79-week horizon from the EW25 origin, then
	// crop out the 15-week burn-in and the 52-week EW41..EW40 season.
	trajectories, err := model.Simulate(context.Background(), cfg.ArpSimHorizon, arp.DefaultNReal, cfg.Seed, 0)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runArp", ferrors.NumericalFailure, err)
	}
	quantiles := arp.QuantilesPerWeek(trajectories)
	smoothed := arp.SmoothQuantiles(quantiles, 20, 5)
	reported := arp.Crop(smoothed, 15, cfg.ForecastHorizon)

	// Dates of the cropped weeks start 15 weeks after the first simulated week.
	fullDates, err := forecastDates(series[len(series)-1].Week, cfg.ArpSimHorizon)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runArp", ferrors.InvalidInput, err)
	}
	records, err := assemble.FromArp(fullDates[15:15+len(reported)], reported)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runArp", ferrors.OutputContract, err)
	}
	return writeRecords(regionDir, "arp.csv", records)
}

func (p *Pipeline) runCliDengo(ctx context.Context, span denguedata.TrainingSpan, series []denguedata.Observation, cfg regionconfig.ModelConfig, dates []time.Time, regionDir string) error {
	if span.SeasonCount() < 2 {
		return ferrors.New(span.Region, "pipeline.runCliDengo", ferrors.InsufficientData, nil)
	}

	c0Pool := make([]float64, 0, len(span.Seasons))
	for _, s := range span.Seasons {
		c0Pool = append(c0Pool, float64(s.EW41Cases()))
	}

	odeCfg := clidengo.Config{
		NReal: cfg.NRealForecast, NWeeks: cfg.ForecastHorizon,
		Mode: cfg.ClimateMode, TempBand: [2]float64{10, 35}, PrecipBand: [2]float64{0, 400},
	}
	ranges := clidengo.ParamRanges{
		R0: [2]float64{0.05, 0.6}, K: [2]float64{100, 1e7},
		Q: [2]float64{0.5, 1.5}, Alpha: [2]float64{0.5, 2}, P: [2]float64{0.5, 2},
	}

	temp := make([][]float64, cfg.NRealForecast)
	precip := make([][]float64, cfg.NRealForecast)
	for j := range temp {
		row := make([]float64, cfg.ForecastHorizon)
		prow := make([]float64, cfg.ForecastHorizon)
		for w := range row {
			idx := w % len(series)
			row[w] = series[idx].Climate.TempMed
			prow[w] = series[idx].Climate.PrecipMed
		}
		temp[j] = row
		precip[j] = prow
	}

	in := clidengo.Input{Temp: temp, Precip: precip, C0Pool: c0Pool, LagMax: cfg.Lags}

	calibrated, err := p.calibrateCliDengo(odeCfg, ranges, in, series, cfg)
	if err != nil {
		return err
	}
	p.rec.CalibrationValue.WithLabelValues(span.Region).Set(calibrated.Value)

	// Forecast replay: the full ensemble runs at the calibrated point.
	x := calibrated.Params
	fitted := clidengo.ParamRanges{
		R0: [2]float64{x[0], x[0]}, K: [2]float64{x[1], x[1]},
		Q: [2]float64{x[2], x[2]}, Alpha: [2]float64{x[3], x[3]}, P: [2]float64{x[4], x[4]},
	}
	results, err := clidengo.Run(ctx, odeCfg, fitted, in, cfg.Seed, 0)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runCliDengo", ferrors.NumericalFailure, err)
	}

	ensemble := make([][]float64, len(results))
	for i, r := range results {
		ensemble[i] = r.NewCases
	}

	records, err := assemble.FromCliDengoEnsemble(dates, ensemble)
	if err != nil {
		return ferrors.New(span.Region, "pipeline.runCliDengo", ferrors.OutputContract, err)
	}
	return writeRecords(regionDir, "clidengo.csv", records)
}

// calibrateCliDengo runs the box-constrained Nelder-Mead search described
// in §4.6 over the beta-logistic free parameters, using a small-ensemble
// SimFunc adapter around clidengo.Run, and returns the calibrated point.
func (p *Pipeline) calibrateCliDengo(odeCfg clidengo.Config, ranges clidengo.ParamRanges, in clidengo.Input, observed []denguedata.Observation, cfg regionconfig.ModelConfig) (calibrate.Result, error) {
	obsCases := make([]float64, len(observed))
	for i, o := range observed {
		obsCases[i] = float64(o.Cases)
	}

	sim := func(params []float64, nReal int, seed int64) (mean, variance []float64, err error) {
		small := odeCfg
		small.NReal = nReal
		fixed := clidengo.ParamRanges{
			R0:    [2]float64{params[0], params[0]},
			K:     [2]float64{params[1], params[1]},
			Q:     [2]float64{params[2], params[2]},
			Alpha: [2]float64{params[3], params[3]},
			P:     [2]float64{params[4], params[4]},
		}
		results, err := clidengo.Run(context.Background(), small, fixed, in, seed, 0)
		if err != nil {
			return nil, nil, err
		}
		horizon := small.NWeeks
		mean = make([]float64, horizon)
		variance = make([]float64, horizon)
		for w := 0; w < horizon; w++ {
			sum := 0.0
			for _, r := range results {
				sum += r.NewCases[w]
			}
			m := sum / float64(len(results))
			mean[w] = m
			sq := 0.0
			for _, r := range results {
				d := r.NewCases[w] - m
				sq += d * d
			}
			variance[w] = sq / float64(len(results))
		}
		return mean, variance, nil
	}

	initial := []float64{0.2, float64(len(observed)) * 10, 1, 1, 1}
	bounds := calibrate.Bounds{
		Lo: []float64{ranges.R0[0], ranges.K[0], ranges.Q[0], ranges.Alpha[0], ranges.P[0]},
		Hi: []float64{ranges.R0[1], ranges.K[1], ranges.Q[1], ranges.Alpha[1], ranges.P[1]},
	}

	horizon := len(obsCases)
	if horizon > odeCfg.NWeeks {
		horizon = odeCfg.NWeeks
	}

	result, err := calibrate.Run(bounds, sim, calibrate.MSEMisfit, obsCases[:horizon], initial, cfg.Seed, calibrate.DefaultConfig())
	if err != nil {
		return calibrate.Result{}, err
	}
	return result, nil
}

func writeRecords(regionDir, filename string, records []denguedata.ForecastRecord) error {
	path := filepath.Join(regionDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: creating %s: %w", path, err)
	}
	defer f.Close()
	return ioformat.WriteForecastCSV(f, records)
}
