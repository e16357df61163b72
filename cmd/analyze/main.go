package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/exfilwatch/file-analysis/internal/analysis"
	"github.com/exfilwatch/file-analysis/internal/config"
	"github.com/exfilwatch/file-analysis/internal/log"
	"github.com/exfilwatch/file-analysis/internal/resultstore"
	"github.com/exfilwatch/file-analysis/internal/risk"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

var (
	filePath   = flag.String("file", "", "path of the file to analyze")
	dirPath    = flag.String("dir", "", "analyze every regular file under this directory")
	configPath = flag.String("config", "", "path of a YAML config file overriding engine defaults")
	upload     = flag.String("upload", "", "bucket URL for uploading results (file://, gs://, s3://)")
	minLevel   = flag.String("min-level", "", "only print results at or above this risk level (LOW, MEDIUM, HIGH, CRITICAL)")
	jsonOut    = flag.Bool("json", false, "print full results as JSON instead of one-line summaries")
	help       = flag.Bool("help", false, "print help on available options")
	depth      = forensic.DepthStandard
	logLevel   log.Level
)

var levelRank = map[forensic.RiskLevel]int{
	forensic.RiskLow:      0,
	forensic.RiskMedium:   1,
	forensic.RiskHigh:     2,
	forensic.RiskCritical: 3,
}

func loadConfig(ctx context.Context) *config.Config {
	if *configPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func collectTargets(ctx context.Context) []string {
	if *filePath != "" {
		return []string{*filePath}
	}

	var targets []string
	err := filepath.WalkDir(*dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.Type().IsRegular() {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Directory walk failed", "error", err)
		os.Exit(1)
	}
	return targets
}

func printResult(result *forensic.AnalysisResult, threshold int) {
	if levelRank[result.RiskLevel] < threshold {
		return
	}
	if *jsonOut {
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			slog.Error("Failed to marshal result", "error", err)
			return
		}
		fmt.Println(string(b))
		return
	}
	fmt.Printf("%-60s %s\n", result.Path, risk.Summary(result))
}

func main() {
	flag.TextVar(&depth, "depth", forensic.DepthStandard,
		fmt.Sprintf("analysis depth. Can be %s", forensic.AllDepths))
	flag.TextVar(&logLevel, "log-level", logLevel,
		"minimum logging level (debug, info, warn, error)")
	flag.Parse()

	log.Initialize(os.Getenv("LOGGER_ENV"), logLevel)

	if *help {
		flag.Usage()
		return
	}
	if (*filePath == "") == (*dirPath == "") {
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	threshold := 0
	if *minLevel != "" {
		rank, ok := levelRank[forensic.RiskLevel(*minLevel)]
		if !ok {
			slog.ErrorContext(ctx, "Unknown risk level", "level", *minLevel)
			os.Exit(1)
		}
		threshold = rank
	}

	var store *resultstore.ResultStore
	if *upload != "" {
		store = resultstore.New(*upload, resultstore.ConstructPath())
	}

	engine := analysis.NewEngine(loadConfig(ctx))
	targets := collectTargets(ctx)
	slog.InfoContext(ctx, "Starting analysis", "files", len(targets), "depth", depth)

	var results []*forensic.AnalysisResult
	exitCode := 0
	for _, target := range targets {
		result := engine.Analyze(ctx, target, depth)
		results = append(results, result)
		printResult(result, threshold)

		if result.Error != "" {
			exitCode = 1
		}
		if store != nil {
			if err := store.Save(ctx, result); err != nil {
				slog.ErrorContext(ctx, "Upload error", "path", target, "error", err)
				exitCode = 1
			}
		}
	}

	if store != nil && len(results) > 1 {
		if err := store.SaveBatchSummary(ctx, results); err != nil {
			slog.ErrorContext(ctx, "Batch summary upload error", "error", err)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}
