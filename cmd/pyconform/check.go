package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pyconform/internal/analyzer"
	"pyconform/internal/config"
	"pyconform/internal/logutil"
	"pyconform/internal/report"
	"pyconform/internal/storage"
	"pyconform/internal/version"
)

var (
	checkFormat  string
	checkWorkers int
	checkExclude []string
	checkNoCache bool
	checkArchive string
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check a Python project for convention violations",
	Long: `Check a Python project against the configured convention rules.

Configuration is read from <root>/.pyconform/config.json; defaults apply
when no file exists. An optional .pyconform/lexicons.yaml extends the verb
and generic-name lexicons.

Exit codes:
  0  no error-severity violations
  1  at least one error-severity violation
  2  fatal run failure (unreadable root, bad configuration)

Examples:
  # Check the current directory, human-readable output
  pyconform check

  # Machine-readable output for CI
  pyconform check --output=json ./service

  # Skip generated code, keep a compressed report artifact
  pyconform check --exclude='gen_*.py' --archive=report.json.zst`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "output", "o", "human", "Output format: human, json, sarif")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Analysis workers (0 = available parallelism)")
	checkCmd.Flags().StringArrayVar(&checkExclude, "exclude", nil, "Additional path globs to exclude")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "Bypass the per-file result cache")
	checkCmd.Flags().StringVar(&checkArchive, "archive", "", "Also write the JSON report zstd-compressed to this path")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	start := time.Now()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if checkWorkers > 0 {
		cfg.Analysis.Workers = checkWorkers
	}
	if checkNoCache {
		cfg.Analysis.Cache = false
	}
	cfg.ExcludePaths = append(cfg.ExcludePaths, checkExclude...)

	logger := logutil.New(cfg.Logging.Format, cfg.Logging.Level)

	a := analyzer.New(root, cfg, logger, version.Version)
	if err := cfg.Validate(a.Registry().AllIDs()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	var db *storage.DB
	if cfg.Analysis.Cache {
		db, err = storage.Open(root, logger)
		if err != nil {
			// The cache is an optimization; a broken one must not fail the run.
			logger.Warn("result cache unavailable", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			a.SetCache(storage.NewCache(db))
		}
	}

	rep, err := a.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if db != nil {
		if _, rerr := db.RecordRun(storage.RunRecord{
			StartedAt: start,
			Duration:  time.Since(start),
			Files:     rep.Files,
			Errors:    rep.Summary.Errors,
			Warnings:  rep.Summary.Warnings,
		}); rerr != nil {
			logger.Warn("failed to record run", "error", rerr)
		}
	}

	switch checkFormat {
	case "json":
		err = report.RenderJSON(os.Stdout, rep)
	case "sarif":
		var out string
		out, err = FormatReportAsSARIF(rep, version.Version)
		if err == nil {
			fmt.Println(out)
		}
	default:
		err = report.RenderHuman(os.Stdout, rep)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to render report: %v\n", err)
		os.Exit(2)
	}

	if checkArchive != "" {
		if err := report.WriteArchive(checkArchive, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}

	os.Exit(rep.Summary.ExitCode)
}
