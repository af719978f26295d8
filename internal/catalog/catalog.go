// Package catalog discovers 3D model files grouped by class and samples
// random object sets for each scene.
package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/internal/logger"
	"github.com/artefactlab/synthgen/pkg/geom"
)

// Instance id 1 is reserved for the background surface; real objects start
// at firstObjectInstance.
const firstObjectInstance = 2

// modelExtensions are the recognized 3D model file suffixes.
var modelExtensions = map[string]bool{
	".obj":  true,
	".glb":  true,
	".gltf": true,
	".ply":  true,
	".stl":  true,
	".fbx":  true,
}

// SceneObject is one placed instance of a 3D model in the current scene.
type SceneObject struct {
	ID        engine.ObjectID
	ClassName string
	ClassID   int
	// CategoryID is ClassID+1; 0 is reserved for the background surface.
	CategoryID int
	// InstanceID is assigned sequentially per scene in load order,
	// starting at 2.
	InstanceID int
}

// Catalog discovers models under a directory tree (one subdirectory per
// class) and loads random subsets into the scene.
type Catalog struct {
	eng      engine.Engine
	modelDir string
	cfg      config.ModelConfig
	rng      *rand.Rand

	classModels map[string][]string
	classNames  []string

	instanceCounter int
}

// New creates a catalog over modelDir. Call Discover before sampling.
func New(eng engine.Engine, modelDir string, cfg config.ModelConfig, rng *rand.Rand) *Catalog {
	return &Catalog{
		eng:             eng,
		modelDir:        modelDir,
		cfg:             cfg,
		rng:             rng,
		instanceCounter: firstObjectInstance,
	}
}

// Discover scans the immediate subdirectories of the model directory. Each
// subdirectory name becomes a class label; model files inside are collected
// and sorted for determinism.
func (c *Catalog) Discover() error {
	entries, err := os.ReadDir(c.modelDir)
	if err != nil {
		return fmt.Errorf("%w: reading model directory %s: %v", config.ErrConfiguration, c.modelDir, err)
	}

	classModels := make(map[string][]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		classDir := filepath.Join(c.modelDir, entry.Name())
		files, err := os.ReadDir(classDir)
		if err != nil {
			return fmt.Errorf("%w: reading class directory %s: %v", config.ErrConfiguration, classDir, err)
		}

		var models []string
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if modelExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				models = append(models, filepath.Join(classDir, f.Name()))
			}
		}
		if len(models) > 0 {
			sort.Strings(models)
			classModels[entry.Name()] = models
		}
	}

	if len(classModels) == 0 {
		return fmt.Errorf("%w: no model classes found in %s", config.ErrConfiguration, c.modelDir)
	}

	names := make([]string, 0, len(classModels))
	for name := range classModels {
		names = append(names, name)
	}
	sort.Strings(names)

	c.classModels = classModels
	c.classNames = names
	return nil
}

// ClassNames returns the sorted class names; index equals class id.
func (c *Catalog) ClassNames() []string {
	return c.classNames
}

// NumClasses returns the number of discovered classes.
func (c *Catalog) NumClasses() int {
	return len(c.classNames)
}

// ResetInstanceCounter restarts per-scene instance assignment. Must be
// called after scene teardown, before the next SampleScene.
func (c *Catalog) ResetInstanceCounter() {
	c.instanceCounter = firstObjectInstance
}

// SampleScene loads count random models into the scene. When count <= 0 the
// count is drawn uniformly from [MinPerScene, MaxPerScene]. Failures loading
// an individual file are logged and that draw is skipped.
func (c *Catalog) SampleScene(count int) ([]*SceneObject, error) {
	if len(c.classModels) == 0 {
		if err := c.Discover(); err != nil {
			return nil, err
		}
	}

	if count <= 0 {
		count = c.cfg.MinPerScene + c.rng.Intn(c.cfg.MaxPerScene-c.cfg.MinPerScene+1)
	}

	var objects []*SceneObject
	for i := 0; i < count; i++ {
		className := c.classNames[c.rng.Intn(len(c.classNames))]
		classID := sort.SearchStrings(c.classNames, className)

		models := c.classModels[className]
		path := models[c.rng.Intn(len(models))]

		ids, err := c.eng.LoadModel(path)
		if err != nil {
			logger.Warn("failed to load model, skipping draw",
				zap.String("path", path), zap.Error(err))
			continue
		}

		for _, id := range ids {
			obj := &SceneObject{
				ID:         id,
				ClassName:  className,
				ClassID:    classID,
				CategoryID: classID + 1,
				InstanceID: c.instanceCounter,
			}
			c.instanceCounter++

			c.eng.SetCategory(id, obj.CategoryID)

			if c.cfg.ScaleRange.Min != 1.0 || c.cfg.ScaleRange.Max != 1.0 {
				s := float32(c.cfg.ScaleRange.Min + c.rng.Float64()*(c.cfg.ScaleRange.Max-c.cfg.ScaleRange.Min))
				c.eng.SetScale(id, geom.Vec3{X: s, Y: s, Z: s})
			}

			objects = append(objects, obj)
		}
	}

	return objects, nil
}

// SaveClassNames writes one class name per line, ordered by class id.
func (c *Catalog) SaveClassNames(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(c.classNames, "\n")), 0644)
}
