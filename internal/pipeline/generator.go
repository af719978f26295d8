// Package pipeline orchestrates dataset generation: scene composition,
// physics settling, rendering, annotation and split bookkeeping.
package pipeline

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/annotate"
	"github.com/artefactlab/synthgen/internal/camera"
	"github.com/artefactlab/synthgen/internal/catalog"
	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/internal/lighting"
	"github.com/artefactlab/synthgen/internal/logger"
	"github.com/artefactlab/synthgen/internal/placement"
	"github.com/artefactlab/synthgen/internal/scene"
	"github.com/artefactlab/synthgen/pkg/geom"
)

// maxAttempts bounds the retries for a single image before it is skipped.
const maxAttempts = 5

// deepCleanInterval is how many persisted images pass between deep engine
// cleanups.
const deepCleanInterval = 10

const jpegQuality = 95

// sceneCenter is where lights and cameras aim, slightly above the surface.
var sceneCenter = geom.Vec3{Z: 0.05}

// errNothingVisible marks an attempt whose render produced no usable
// annotations.
var errNothingVisible = errors.New("no visible objects in render")

// Generator runs the full dataset generation loop against an engine.
type Generator struct {
	eng engine.Engine
	cfg *config.Config
	rng *rand.Rand

	scene   *scene.Manager
	catalog *catalog.Catalog
	camera  *camera.Orbit
	lights  *lighting.Randomizer
	stage   *placement.Stage

	runID string
}

// New wires a generator. The run is seeded from cfg.RandomSeed when set,
// otherwise from the clock.
func New(eng engine.Engine, cfg *config.Config) *Generator {
	seed := time.Now().UnixNano()
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}
	rng := rand.New(rand.NewSource(seed))

	return &Generator{
		eng:     eng,
		cfg:     cfg,
		rng:     rng,
		scene:   scene.NewManager(eng, cfg, rng),
		catalog: catalog.New(eng, cfg.ModelDir, cfg.Models, rng),
		camera:  camera.New(eng, cfg.Camera, rng),
		lights:  lighting.New(eng, cfg.Lighting, rng),
		stage:   placement.New(eng, cfg.Physics, cfg.Models, rng),
		runID:   uuid.NewString(),
	}
}

// RunID identifies this generation run in metadata and logs.
func (g *Generator) RunID() string { return g.runID }

// Run generates the configured number of images and writes the dataset,
// class list, config snapshot and run summary under cfg.OutputDir.
func (g *Generator) Run() (*Summary, error) {
	started := time.Now()

	if err := g.startup(); err != nil {
		return nil, err
	}
	if err := EnsureDirs(g.cfg.OutputDir); err != nil {
		return nil, err
	}
	index, err := NewDatasetIndex(g.cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	plan := PlanSplits(g.cfg.NumImages, g.cfg.Dataset)
	logger.Info("starting generation run",
		zap.String("run_id", g.runID),
		zap.Int("images", g.cfg.NumImages),
		zap.Int("train", plan.Train),
		zap.Int("val", plan.Val),
		zap.Int("test", plan.Test))

	summary := &Summary{
		Requested: g.cfg.NumImages,
		Planned: map[string]int{
			SplitTrain: plan.Train,
			SplitVal:   plan.Val,
			SplitTest:  plan.Test,
		},
		PerSplit: make(map[string]int),
		Classes:  g.catalog.ClassNames(),
	}

	for i := 0; i < g.cfg.NumImages; i++ {
		split := plan.SplitFor(i)
		base := BaseName(split, index.Claim(split))

		attempts, err := g.generateOne(split, base)
		summary.Attempts += attempts
		if err != nil {
			summary.Failed++
			logger.Error("image skipped after repeated failures",
				zap.String("image", base),
				zap.Int("attempts", attempts),
				zap.Error(err))
			continue
		}
		summary.Generated++
		summary.PerSplit[split]++

		if summary.Generated%deepCleanInterval == 0 {
			g.scene.DeepClean()
		}

		logger.Info("image generated",
			zap.String("image", base),
			zap.Int("done", summary.Generated),
			zap.Int("total", g.cfg.NumImages))
	}

	if err := g.finishRun(summary, started); err != nil {
		return summary, err
	}
	return summary, nil
}

func (g *Generator) startup() error {
	if err := g.scene.Startup(); err != nil {
		return err
	}
	if err := g.catalog.Discover(); err != nil {
		return err
	}
	g.camera.SetupIntrinsics()
	return nil
}

// generateOne retries scene composition and rendering until an image with
// at least one annotation is persisted, or attempts run out.
func (g *Generator) generateOne(split, base string) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, records, err := g.composeAndRender()
		if err != nil {
			lastErr = err
			logger.Warn("scene attempt failed",
				zap.String("image", base),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		err = g.persist(split, base, res, records)
		res.Release()
		if err != nil {
			return attempt, err
		}
		return attempt, nil
	}
	return maxAttempts, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}

// composeAndRender builds one scene end to end and returns the render plus
// its annotations. The caller releases the result.
func (g *Generator) composeAndRender() (*engine.RenderResult, []annotate.Record, error) {
	g.scene.Clear()
	g.catalog.ResetInstanceCounter()

	surface, err := g.scene.CreateSurface()
	if err != nil {
		return nil, nil, err
	}

	objects, err := g.catalog.SampleScene(0)
	if err != nil {
		return nil, nil, err
	}
	if len(objects) == 0 {
		return nil, nil, errors.New("no objects loaded into scene")
	}

	// Instance ids are assigned from scene contents at render time, so
	// segmentation goes live only after the objects exist.
	g.eng.EnableSegmentation()

	if err := g.stage.Settle(objects, surface, placement.DefaultSpawnRegion); err != nil {
		return nil, nil, err
	}
	objects = g.pruneInvalid(objects)
	if len(objects) == 0 {
		return nil, nil, errors.New("no objects settled in a valid position")
	}

	ids := make([]engine.ObjectID, len(objects))
	for i, obj := range objects {
		ids[i] = obj.ID
	}
	measured, radius := camera.SceneBounds(g.eng, ids)
	logger.Debug("scene composed",
		zap.Int("objects", len(objects)),
		zap.Float32("centroid_z", measured.Z),
		zap.Float32("radius", radius))

	g.lights.Clear()
	if err := g.lights.Generate(sceneCenter); err != nil {
		return nil, nil, err
	}

	g.camera.GenerateOrbit(sceneCenter)
	g.camera.PickRandomPose()

	res, err := g.eng.Render()
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}

	records := annotate.FromSegmentation(res, objects, g.cfg.Camera.Width, g.cfg.Camera.Height)
	if len(records) == 0 {
		res.Release()
		return nil, nil, errNothingVisible
	}
	return res, records, nil
}

// pruneInvalid deletes objects that fell off the surface or sank below it.
// An object is kept when it rests above the surface within one meter of the
// scene center on both horizontal axes.
func (g *Generator) pruneInvalid(objects []*catalog.SceneObject) []*catalog.SceneObject {
	valid := objects[:0]
	for _, obj := range objects {
		loc := g.eng.Location(obj.ID)
		if loc.Z > 0 && loc.X > -1 && loc.X < 1 && loc.Y > -1 && loc.Y < 1 {
			valid = append(valid, obj)
			continue
		}
		logger.Debug("object settled out of bounds, removing",
			zap.String("class", obj.ClassName),
			zap.Float32("x", loc.X),
			zap.Float32("y", loc.Y),
			zap.Float32("z", loc.Z))
		g.eng.Delete(obj.ID)
	}
	return valid
}

func (g *Generator) persist(split, base string, res *engine.RenderResult, records []annotate.Record) error {
	imgPath := filepath.Join(g.cfg.OutputDir, split, "images", base+".jpg")
	if err := imgio.Save(imgPath, res.Color.ToRGBA(), imgio.JPEGEncoder(jpegQuality)); err != nil {
		return fmt.Errorf("save image: %w", err)
	}

	labelPath := filepath.Join(g.cfg.OutputDir, split, "labels", base+".txt")
	if err := annotate.Save(records, labelPath); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	return nil
}

func (g *Generator) finishRun(summary *Summary, started time.Time) error {
	if err := g.catalog.SaveClassNames(filepath.Join(g.cfg.OutputDir, "classes.txt")); err != nil {
		return fmt.Errorf("save class names: %w", err)
	}
	if err := g.cfg.SaveTo(filepath.Join(g.cfg.OutputDir, "config.yaml")); err != nil {
		return fmt.Errorf("save config snapshot: %w", err)
	}

	if g.cfg.CreateVisualizations {
		if err := g.writeVisualizations(); err != nil {
			logger.Error("visualization pass failed", zap.Error(err))
		}
	}

	summary.ElapsedSecs = time.Since(started).Seconds()
	meta := &RunMetadata{
		RunID:     g.runID,
		StartedAt: formatTimestamp(started),
		Seed:      g.cfg.RandomSeed,
		Device:    g.scene.DeviceName(),
		GPU:       g.scene.HasGPU(),
		Engine:    g.cfg.Rendering.Engine,
	}
	if err := WriteSummary(g.cfg.OutputDir, summary, meta); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}

	logger.Info("generation run finished",
		zap.Int("generated", summary.Generated),
		zap.Int("failed", summary.Failed),
		zap.Float64("elapsed_s", summary.ElapsedSecs))
	return nil
}

// writeVisualizations draws annotated copies of every generated image into
// outputDir/visualizations/{split}.
func (g *Generator) writeVisualizations() error {
	classNames := g.catalog.ClassNames()

	for _, split := range splitNames {
		vizDir := filepath.Join(g.cfg.OutputDir, "visualizations", split)
		if err := os.MkdirAll(vizDir, 0o755); err != nil {
			return err
		}
		imgDir := filepath.Join(g.cfg.OutputDir, split, "images")
		entries, err := os.ReadDir(imgDir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			base := e.Name()[:len(e.Name())-len(filepath.Ext(e.Name()))]
			labelPath := filepath.Join(g.cfg.OutputDir, split, "labels", base+".txt")
			if _, err := os.Stat(labelPath); err != nil {
				continue
			}
			outPath := filepath.Join(vizDir, base+"_annotated.jpg")
			if err := annotate.VisualizeFile(filepath.Join(imgDir, e.Name()), labelPath, outPath, classNames); err != nil {
				logger.Warn("failed to visualize image",
					zap.String("image", e.Name()), zap.Error(err))
			}
		}
	}
	return nil
}
