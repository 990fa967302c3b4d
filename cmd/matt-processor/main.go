// matt-processor enriches one MATT sales extract from the command line:
// load, join against the hub and plan reference tables, derive the
// report columns and write the result as CSV.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mtorres1190/MATT-Report/internal/config"
	"github.com/mtorres1190/MATT-Report/internal/dataprocessing"
	"github.com/mtorres1190/MATT-Report/internal/exporter"
	"github.com/mtorres1190/MATT-Report/internal/infrastructure"
)

func main() {
	mattFile := flag.String("matt", "", "path to the MATT sales extract (.csv, .xlsx)")
	hubFile := flag.String("hub", "", "path to the hub reference table (defaults to the configured location)")
	planFile := flag.String("plan", "", "path to the plan reference table (defaults to the configured location)")
	outFile := flag.String("out", "", "output CSV path (defaults to the reports directory)")
	investorsFile := flag.String("investors", "", "optional investor allowlist file, one exact name per line")
	flag.Parse()

	if *mattFile == "" {
		fmt.Fprintln(os.Stderr, "usage: matt-processor -matt <extract> [-hub <file>] [-plan <file>] [-out <file>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		logger.Error("failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to ensure directories", "error", err)
		os.Exit(1)
	}

	if *hubFile == "" {
		*hubFile = paths.HubFile
	}
	if *planFile == "" {
		*planFile = paths.PlanFile
	}
	if *outFile == "" {
		base := filepath.Base(*mattFile)
		name := base[:len(base)-len(filepath.Ext(base))]
		*outFile = paths.ReportPath(fmt.Sprintf("%s_enriched.csv", name))
	}
	investorsPath := *investorsFile
	if investorsPath == "" {
		investorsPath = cfg.Investors.File
	}

	if err := run(logger, paths, *mattFile, *hubFile, *planFile, *outFile, investorsPath); err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, paths *config.Paths, mattFile, hubFile, planFile, outFile, investorsFile string) error {
	start := time.Now()

	sales, err := dataprocessing.LoadFile(mattFile)
	if err != nil {
		return fmt.Errorf("failed to load sales extract: %w", err)
	}
	hub, err := dataprocessing.LoadFile(hubFile)
	if err != nil {
		return fmt.Errorf("failed to load hub table: %w", err)
	}
	plan, err := dataprocessing.LoadFile(planFile)
	if err != nil {
		return fmt.Errorf("failed to load plan table: %w", err)
	}

	logger.Info("inputs loaded",
		slog.Int("sales_rows", sales.NumRows()),
		slog.Int("hub_rows", hub.NumRows()),
		slog.Int("plan_rows", plan.NumRows()))

	var investors []string
	if investorsFile != "" {
		investors, err = config.LoadInvestorNames(investorsFile)
		if err != nil {
			return err
		}
	}

	enricher := dataprocessing.NewEnricher(logger, dataprocessing.EnricherConfig{InvestorNames: investors})
	enriched, err := enricher.Enrich(sales, hub, plan)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(paths, logger)
	if err := writer.WriteTable(outFile, enriched); err != nil {
		return err
	}

	logger.Info("enriched report written",
		slog.String("path", outFile),
		slog.Int("rows", enriched.NumRows()),
		slog.Duration("duration", time.Since(start)))
	return nil
}
