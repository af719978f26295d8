// Package config handles generation configuration loading and validation.
package config

// Range is a numeric sampling interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntRange is an inclusive integer sampling interval.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Config holds all generation settings.
type Config struct {
	// Required paths.
	ModelDir  string `yaml:"model_dir"`
	OutputDir string `yaml:"output_dir"`

	// Generation parameters.
	NumImages            int    `yaml:"num_images"`
	RandomSeed           *int64 `yaml:"random_seed"`
	CreateVisualizations bool   `yaml:"create_visualizations"`

	Camera     CameraConfig     `yaml:"camera"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Lighting   LightingConfig   `yaml:"lighting"`
	Background BackgroundConfig `yaml:"background"`
	Rendering  RenderConfig     `yaml:"rendering"`
	Models     ModelConfig      `yaml:"models"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CameraConfig controls nadir/near-nadir orbit photography.
type CameraConfig struct {
	// NadirAngleRange bounds the camera tilt from vertical, in degrees.
	// 0 = pure nadir (straight down).
	NadirAngleRange Range `yaml:"nadir_angle_range"`
	// OrbitAngles is the number of camera positions around the scene.
	OrbitAngles int `yaml:"orbit_angles"`
	// DistanceRange is the camera distance from scene center, in meters.
	DistanceRange Range   `yaml:"distance_range"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	FocalLength   float64 `yaml:"focal_length"` // millimeters
}

// PhysicsConfig controls the settling simulation.
type PhysicsConfig struct {
	Enabled     bool    `yaml:"enabled"`
	DropHeight  float64 `yaml:"drop_height"` // meters
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// LightingConfig controls light rig randomization.
type LightingConfig struct {
	// NumLights bounds the secondary light count; a key light is always added.
	NumLights      IntRange `yaml:"num_lights"`
	IntensityRange Range    `yaml:"intensity_range"`  // Watts
	ColorTempRange Range    `yaml:"color_temp_range"` // Kelvin
}

// BackgroundConfig controls the drawer surface appearance.
type BackgroundConfig struct {
	RandomizeColor bool       `yaml:"randomize_color"`
	ColorVariation float64    `yaml:"color_variation"`
	BaseColor      [3]float64 `yaml:"base_color"`
}

// RenderConfig controls render engine and quality.
type RenderConfig struct {
	Engine       string `yaml:"engine"` // CYCLES or EEVEE
	Samples      int    `yaml:"samples"`
	MaxBounces   int    `yaml:"max_bounces"`
	UseDenoising bool   `yaml:"use_denoising"`
	// UseGPU prefers GPU rendering; the run falls back to CPU when no
	// device is available.
	UseGPU bool `yaml:"use_gpu"`
}

// ModelConfig controls per-scene object sampling.
type ModelConfig struct {
	MinPerScene       int   `yaml:"min_per_scene"`
	MaxPerScene       int   `yaml:"max_per_scene"`
	ScaleRange        Range `yaml:"scale_range"`
	RandomizeRotation bool  `yaml:"randomize_rotation"`
}

// DatasetConfig controls train/val/test split ratios. The ratios must sum
// to 1.0 within a small tolerance.
type DatasetConfig struct {
	TrainSplit float64 `yaml:"train_split"`
	ValSplit   float64 `yaml:"val_split"`
	TestSplit  float64 `yaml:"test_split"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		NumImages: 100,
		Camera: CameraConfig{
			NadirAngleRange: Range{Min: 0, Max: 15},
			OrbitAngles:     8,
			DistanceRange:   Range{Min: 0.8, Max: 1.5},
			Width:           1920,
			Height:          1080,
			FocalLength:     50.0,
		},
		Physics: PhysicsConfig{
			Enabled:     true,
			DropHeight:  0.3,
			Friction:    0.5,
			Restitution: 0.3,
		},
		Lighting: LightingConfig{
			NumLights:      IntRange{Min: 2, Max: 4},
			IntensityRange: Range{Min: 30, Max: 100},
			ColorTempRange: Range{Min: 3000, Max: 6500},
		},
		Background: BackgroundConfig{
			RandomizeColor: true,
			ColorVariation: 0.2,
			BaseColor:      [3]float64{0.5, 0.48, 0.45},
		},
		Rendering: RenderConfig{
			Engine:       "CYCLES",
			Samples:      128,
			MaxBounces:   4,
			UseDenoising: true,
			UseGPU:       true,
		},
		Models: ModelConfig{
			MinPerScene:       1,
			MaxPerScene:       5,
			ScaleRange:        Range{Min: 0.8, Max: 1.2},
			RandomizeRotation: true,
		},
		Dataset: DatasetConfig{
			TrainSplit: 0.7,
			ValSplit:   0.15,
			TestSplit:  0.15,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
