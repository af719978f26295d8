package config

import (
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrConfiguration marks fatal configuration problems. Validation failures
// abort the run before any generation starts; nothing else is allowed to.
var ErrConfiguration = errors.New("invalid configuration")

// splitTolerance allows for floating point error when checking that the
// dataset split ratios sum to 1.0.
const splitTolerance = 0.01

// Validate checks the configuration and returns an error wrapping
// ErrConfiguration on the first violation found.
func (c *Config) Validate() error {
	if c.ModelDir == "" {
		return fmt.Errorf("%w: model_dir is required", ErrConfiguration)
	}
	info, err := os.Stat(c.ModelDir)
	if err != nil {
		return fmt.Errorf("%w: model directory does not exist: %s", ErrConfiguration, c.ModelDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: model path is not a directory: %s", ErrConfiguration, c.ModelDir)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrConfiguration)
	}
	if c.NumImages < 1 {
		return fmt.Errorf("%w: num_images must be >= 1, got %d", ErrConfiguration, c.NumImages)
	}

	if c.Camera.OrbitAngles < 1 {
		return fmt.Errorf("%w: camera.orbit_angles must be >= 1, got %d", ErrConfiguration, c.Camera.OrbitAngles)
	}
	if c.Camera.Width < 1 || c.Camera.Height < 1 {
		return fmt.Errorf("%w: camera resolution must be positive, got %dx%d", ErrConfiguration, c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FocalLength <= 0 {
		return fmt.Errorf("%w: camera.focal_length must be > 0, got %g", ErrConfiguration, c.Camera.FocalLength)
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"camera.nadir_angle_range", c.Camera.NadirAngleRange},
		{"camera.distance_range", c.Camera.DistanceRange},
		{"lighting.intensity_range", c.Lighting.IntensityRange},
		{"lighting.color_temp_range", c.Lighting.ColorTempRange},
	}
	for _, rr := range ranges {
		if rr.r.Min >= rr.r.Max {
			return fmt.Errorf("%w: %s minimum must be less than maximum (%g >= %g)",
				ErrConfiguration, rr.name, rr.r.Min, rr.r.Max)
		}
	}

	// min == max is the no-scaling sentinel (1.0, 1.0), so only an inverted
	// range is rejected here.
	if c.Models.ScaleRange.Min <= 0 {
		return fmt.Errorf("%w: models.scale_range minimum must be > 0, got %g",
			ErrConfiguration, c.Models.ScaleRange.Min)
	}
	if c.Models.ScaleRange.Min > c.Models.ScaleRange.Max {
		return fmt.Errorf("%w: models.scale_range minimum must be <= maximum (%g > %g)",
			ErrConfiguration, c.Models.ScaleRange.Min, c.Models.ScaleRange.Max)
	}

	if c.Lighting.NumLights.Min < 0 || c.Lighting.NumLights.Min > c.Lighting.NumLights.Max {
		return fmt.Errorf("%w: lighting.num_lights range (%d, %d) is invalid",
			ErrConfiguration, c.Lighting.NumLights.Min, c.Lighting.NumLights.Max)
	}

	if c.Models.MinPerScene < 1 {
		return fmt.Errorf("%w: models.min_per_scene must be >= 1, got %d", ErrConfiguration, c.Models.MinPerScene)
	}
	if c.Models.MinPerScene > c.Models.MaxPerScene {
		return fmt.Errorf("%w: models.min_per_scene (%d) must be <= max_per_scene (%d)",
			ErrConfiguration, c.Models.MinPerScene, c.Models.MaxPerScene)
	}

	if c.Physics.DropHeight < 0 {
		return fmt.Errorf("%w: physics.drop_height must be >= 0, got %g", ErrConfiguration, c.Physics.DropHeight)
	}
	for name, v := range map[string]float64{
		"physics.friction":    c.Physics.Friction,
		"physics.restitution": c.Physics.Restitution,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrConfiguration, name, v)
		}
	}

	if c.Rendering.Engine != "CYCLES" && c.Rendering.Engine != "EEVEE" {
		return fmt.Errorf("%w: rendering.engine must be CYCLES or EEVEE, got %q", ErrConfiguration, c.Rendering.Engine)
	}
	if c.Rendering.Samples < 1 {
		return fmt.Errorf("%w: rendering.samples must be >= 1, got %d", ErrConfiguration, c.Rendering.Samples)
	}

	total := c.Dataset.TrainSplit + c.Dataset.ValSplit + c.Dataset.TestSplit
	if math.Abs(total-1.0) > splitTolerance {
		return fmt.Errorf("%w: dataset splits must sum to 1.0, got %.3f", ErrConfiguration, total)
	}
	for name, v := range map[string]float64{
		"dataset.train_split": c.Dataset.TrainSplit,
		"dataset.val_split":   c.Dataset.ValSplit,
		"dataset.test_split":  c.Dataset.TestSplit,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrConfiguration, name, v)
		}
	}

	return nil
}
