// Package main is the entry point for the synthgen dataset generator.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/internal/logger"
	"github.com/artefactlab/synthgen/internal/pipeline"
)

// previewImages is how many scenes -preview renders.
const previewImages = 5

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n%s\n", err, config.Usage())
		os.Exit(1)
	}

	runType := "generate"
	if config.PreviewMode() {
		runType = "preview"
	}
	runDir, err := logger.CreateRunDir(cfg.OutputDir, runType, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitRun(cfg.Logging.Level, runDir, runType); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	eng, err := engine.New()
	if err != nil {
		logger.Error("engine unavailable", zap.Error(err))
		os.Exit(1)
	}

	gen := pipeline.New(eng, cfg)
	logger.Info("synthgen starting",
		zap.String("run_id", gen.RunID()),
		zap.String("mode", runType),
		zap.String("models", cfg.ModelDir),
		zap.String("output", cfg.OutputDir))

	if config.PreviewMode() {
		if err := gen.Preview(previewImages); err != nil {
			logger.Error("preview failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	summary, err := gen.Run()
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		os.Exit(1)
	}
	if summary.Failed > 0 {
		logger.Warn("run finished with skipped images",
			zap.Int("failed", summary.Failed))
	}
	if summary.HasEmptySplit() {
		logger.Error("a dataset split produced no images")
		os.Exit(1)
	}
}
