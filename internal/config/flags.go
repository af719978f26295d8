package config

import (
	"flag"
	"fmt"
)

var (
	flagConfig       = flag.String("config", "", "Path to YAML config file")
	flagModels       = flag.String("models", "", "Directory containing 3D models organized by class")
	flagOutput       = flag.String("output", "", "Output directory for the generated dataset")
	flagNumImages    = flag.Int("num-images", 0, "Total number of images to generate")
	flagCameraAngles = flag.Int("camera-angles", 0, "Number of camera orbit positions")
	flagMaxObjects   = flag.Int("max-objects", 0, "Maximum objects per scene")
	flagWidth        = flag.Int("width", 0, "Render width in pixels")
	flagHeight       = flag.Int("height", 0, "Render height in pixels")
	flagSeed         = flag.Int64("seed", -1, "Random seed for reproducibility (-1 = none)")
	flagNoPhysics    = flag.Bool("no-physics", false, "Disable physics simulation")
	flagEngine       = flag.String("engine", "", "Rendering engine (CYCLES or EEVEE)")
	flagSamples      = flag.Int("samples", 0, "Number of render samples")
	flagVisualize    = flag.Bool("visualize", false, "Create annotated visualization images after generation")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagPreview      = flag.Bool("preview", false, "Generate a small preview set instead of a full dataset")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// PreviewMode reports whether -preview was requested.
func PreviewMode() bool {
	return *flagPreview
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagModels != "" {
		cfg.ModelDir = *flagModels
	}
	if *flagOutput != "" {
		cfg.OutputDir = *flagOutput
	}
	if *flagNumImages > 0 {
		cfg.NumImages = *flagNumImages
	}
	if *flagCameraAngles > 0 {
		cfg.Camera.OrbitAngles = *flagCameraAngles
	}
	if *flagMaxObjects > 0 {
		cfg.Models.MaxPerScene = *flagMaxObjects
	}
	if *flagWidth > 0 {
		cfg.Camera.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Camera.Height = *flagHeight
	}
	if *flagSeed >= 0 {
		seed := *flagSeed
		cfg.RandomSeed = &seed
	}
	if *flagNoPhysics {
		cfg.Physics.Enabled = false
	}
	if *flagEngine != "" {
		cfg.Rendering.Engine = *flagEngine
	}
	if *flagSamples > 0 {
		cfg.Rendering.Samples = *flagSamples
	}
	if *flagVisualize {
		cfg.CreateVisualizations = true
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
}

// Usage returns a short usage string for the CLI.
func Usage() string {
	return fmt.Sprintf("usage: %s -models DIR -output DIR [options]", flag.CommandLine.Name())
}
