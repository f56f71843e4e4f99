// n1report runs a one-shot N-1 contingency sweep against a network
// snapshot on disk and writes the summary as CSV.
//
// Usage:
//
//	n1report [-out n1_contingency_summary.csv] [-transformers] [-top 10]
//
// Reference tables, topology paths, load shaping, and baseline atmospheric
// conditions come from the same environment variables as ratingd.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/line-rating-service/internal/adapter/catalogcsv"
	"github.com/couchcryptid/line-rating-service/internal/adapter/csvexport"
	"github.com/couchcryptid/line-rating-service/internal/adapter/gridcsv"
	"github.com/couchcryptid/line-rating-service/internal/config"
	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
	"github.com/couchcryptid/line-rating-service/internal/pipeline"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
	"github.com/couchcryptid/line-rating-service/internal/sweep"
)

func main() {
	out := flag.String("out", "n1_contingency_summary.csv", "output CSV path")
	transformers := flag.Bool("transformers", false, "also outage transformers")
	top := flag.Int("top", 10, "worst contingencies to print")
	flag.Parse()

	if err := run(*out, *transformers, *top); err != nil {
		slog.Error("n1report failed", "error", err)
		os.Exit(1)
	}
}

func run(out string, transformers bool, top int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel, "text")
	metrics := observability.NewMetrics()

	catalog, err := catalogcsv.LoadFiles(cfg.ConductorLibraryCSV, cfg.ConductorRatingsCSV)
	if err != nil {
		return err
	}
	network, err := gridcsv.LoadDir(cfg.NetworkDir)
	if err != nil {
		return err
	}
	shape, err := domain.NewLoadShape(cfg.MinLoadHour, cfg.MaxLoadHour, cfg.LoadVariance)
	if err != nil {
		return err
	}
	cond, err := cfg.BaseConditions.Resolve()
	if err != nil {
		return err
	}

	kinds := []domain.ComponentType{domain.ComponentLine}
	if transformers {
		kinds = append(kinds, domain.ComponentTransformer)
	}

	evaluator := pipeline.New(catalog, powerflow.DCSolver{}, shape, logger, metrics)
	engine := sweep.NewContingency(evaluator, logger, metrics, cfg.SweepWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := engine.Run(ctx, network, cond, kinds)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()
	if err := csvexport.WriteSummary(f, report); err != nil {
		return err
	}

	summary := report.Summarize()
	fmt.Printf("analyzed %d components: %d with issues, %d overloads, %d at risk, %d solve failures\n",
		summary.ComponentsAnalyzed, summary.ComponentsWithIssues,
		summary.Overloads, summary.AtRisk, summary.SolveFailures)
	for i, rec := range report.WorstN(top) {
		fmt.Printf("%2d. loss of %-30s -> %-30s %5.1f%%\n",
			i+1, rec.OutagedComponent, rec.AffectedLine, rec.LoadPercent*100)
	}
	fmt.Printf("summary written to %s\n", out)
	return nil
}
