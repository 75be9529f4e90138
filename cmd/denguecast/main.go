// Command denguecast runs the CLiDENGO, SARIMAX, and ARp forecasters over
// one CSV of regional weekly dengue case counts and climate covariates,
// writing one 52-week quantile forecast CSV per model family per region.
//
// Adapted from the teacher's cmd/optctl: a single stdlib flag-based entry
// point, generalized from a Kubernetes CLI's online, cluster-connected
// subcommands to an offline, file-driven batch run with no cluster client
// to build.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dengue-forecast/pkg/denguedata"
	"dengue-forecast/pkg/ioformat"
	"dengue-forecast/pkg/metrics"
	"dengue-forecast/pkg/obslog"
	"dengue-forecast/pkg/pipeline"
	"dengue-forecast/pkg/regionconfig"
)

func main() {
	var (
		inputPath string
		outputDir string
		logLevel  string
		seed      int64
		window    string
		metricsOut string
	)
	flag.StringVar(&inputPath, "input", "", "Path to the training CSV (required)")
	flag.StringVar(&outputDir, "output-dir", "./forecasts", "Directory to write per-region forecast CSVs")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Int64Var(&seed, "seed", 30081984, "Process-wide random seed")
	flag.StringVar(&window, "window", string(regionconfig.T1), "Validation window: T1, T2, or T3")
	flag.StringVar(&metricsOut, "metrics-out", "", "Optional path to write Prometheus text-format metrics")
	flag.Parse()

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "denguecast: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	log, err := obslog.New(logLevel, logLevel == "debug")
	if err != nil {
		fmt.Fprintf(os.Stderr, "denguecast: building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(inputPath, outputDir, window, seed, metricsOut, log); err != nil {
		log.WithError(err).Error("run failed")
		os.Exit(1)
	}
}

func run(inputPath, outputDir, window string, seed int64, metricsOut string, log *obslog.Logger) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer f.Close()

	// §6's documented input schema is a single region per CSV with no
	// region column; the file name stands in for the region unless the
	// header carries the optional multi-region convenience column.
	defaultRegion := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	groups, err := ioformat.ReadTrainingCSV(f, defaultRegion)
	if err != nil {
		return fmt.Errorf("parsing training CSV: %w", err)
	}

	spans := make([]denguedata.TrainingSpan, 0, len(groups))
	for _, g := range groups {
		span, err := buildTrainingSpan(g)
		if err != nil {
			log.WithRegion(g.Region).WithError(err).Warn("skipping region: could not build training span")
			continue
		}
		spans = append(spans, span)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	resolver := regionconfig.NewResolver(nil)
	rec := metrics.NewRecorder("denguecast")
	p := pipeline.New(resolver, log, rec, outputDir)

	failures := p.RunAll(context.Background(), spans, regionconfig.ValidationWindow(window), seed)

	if metricsOut != "" {
		mf, err := os.Create(metricsOut)
		if err != nil {
			return fmt.Errorf("creating metrics output: %w", err)
		}
		defer mf.Close()
		if err := rec.WriteTo(mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	log.Infof("completed %d/%d regions", len(spans)-failures, len(spans))
	if failures > 0 {
		return fmt.Errorf("%d of %d regions failed to forecast", failures, len(spans))
	}
	return nil
}

// buildTrainingSpan sorts a region's observations chronologically and
// chunks them into consecutive 52-week seasons aligned on EW41, carrying
// any leading partial season as Prefix.
func buildTrainingSpan(g ioformat.RegionObservations) (denguedata.TrainingSpan, error) {
	obs := append([]denguedata.Observation(nil), g.Observations...)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Week.YYYYWW() < obs[j].Week.YYYYWW() })

	startIdx := 0
	for startIdx < len(obs) && obs[startIdx].Week.Week != 41 {
		startIdx++
	}

	span := denguedata.TrainingSpan{Region: g.Region, Prefix: obs[:startIdx]}

	for i := startIdx; i+52 <= len(obs); i += 52 {
		var block [52]denguedata.Observation
		copy(block[:], obs[i:i+52])
		season, err := denguedata.NewSeason(block[0].Week.Year, block)
		if err != nil {
			return denguedata.TrainingSpan{}, err
		}
		span.Seasons = append(span.Seasons, season)
	}

	remainder := startIdx + 52*len(span.Seasons)
	span.Prefix = append(span.Prefix, obs[remainder:]...)

	if len(span.Seasons) == 0 && len(span.Prefix) == 0 {
		return denguedata.TrainingSpan{}, fmt.Errorf("region %s has no usable observations", g.Region)
	}
	return span, nil
}
