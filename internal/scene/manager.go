// Package scene manages engine lifecycle and per-frame scene teardown.
package scene

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/internal/logger"
	"github.com/artefactlab/synthgen/pkg/geom"
)

const (
	surfaceName = "drawer_surface"
	// The surface sits slightly below the origin so objects resting at
	// z=0 never z-fight with it.
	surfaceZ     = -0.01
	surfaceScale = 3.0
)

// Manager owns engine startup and keeps the scene clean between frames.
type Manager struct {
	eng    engine.Engine
	cfg    *config.Config
	rng    *rand.Rand
	device engine.DeviceInfo
}

// NewManager wraps an engine. Call Startup before anything else.
func NewManager(eng engine.Engine, cfg *config.Config, rng *rand.Rand) *Manager {
	return &Manager{eng: eng, cfg: cfg, rng: rng}
}

// Startup initializes the engine and applies render settings. A missing GPU
// downgrades the run to CPU rendering instead of failing.
func (m *Manager) Startup() error {
	device, err := m.eng.Init(m.cfg.Rendering.UseGPU)
	if err != nil {
		return fmt.Errorf("engine init: %w", err)
	}
	m.device = device

	if m.cfg.Rendering.UseGPU && !device.HasGPU {
		logger.Warn("no GPU device available, rendering on CPU")
	} else {
		logger.Info("render device selected",
			zap.String("device", device.Name),
			zap.Bool("gpu", device.HasGPU))
	}

	settings := engine.RenderSettings{
		Engine:     m.cfg.Rendering.Engine,
		Samples:    m.cfg.Rendering.Samples,
		MaxBounces: m.cfg.Rendering.MaxBounces,
		Denoise:    m.cfg.Rendering.UseDenoising,
		UseOnlyCPU: !device.HasGPU,
	}
	if err := m.eng.ConfigureRenderer(settings); err != nil {
		return fmt.Errorf("configure renderer: %w", err)
	}
	return nil
}

// HasGPU reports whether the run renders on a GPU device.
func (m *Manager) HasGPU() bool { return m.device.HasGPU }

// DeviceName reports the selected render device.
func (m *Manager) DeviceName() string { return m.device.Name }

// Clear deletes every mesh object and purges the data blocks the deletions
// leave behind. Long runs leak engine memory without the purge.
func (m *Manager) Clear() {
	for _, id := range m.eng.MeshObjects() {
		m.eng.Delete(id)
	}
	if purged := m.eng.PurgeOrphanData(); purged > 0 {
		logger.Debug("purged orphan data blocks", zap.Int("count", purged))
	}
}

// DeepClean runs the orphan purge repeatedly until nothing is freed.
// Purging can orphan further blocks (a mesh purge orphans its material),
// so one pass is not always enough.
func (m *Manager) DeepClean() int {
	total := 0
	for i := 0; i < 4; i++ {
		purged := m.eng.PurgeOrphanData()
		total += purged
		if purged == 0 {
			break
		}
	}
	if total > 0 {
		logger.Debug("deep cleanup freed data blocks", zap.Int("count", total))
	}
	return total
}

// CreateSurface builds the ground plane the objects land on. The plane is
// tagged category 0 so the segmentation output treats it as background.
func (m *Manager) CreateSurface() (engine.ObjectID, error) {
	id, err := m.eng.CreatePlane(geom.Vec3{X: surfaceScale, Y: surfaceScale, Z: 1})
	if err != nil {
		return 0, fmt.Errorf("create surface: %w", err)
	}
	m.eng.SetName(id, surfaceName)
	m.eng.SetLocation(id, geom.Vec3{Z: surfaceZ})
	m.eng.SetCategory(id, 0)
	m.eng.SetBaseColor(id, m.surfaceColor())
	return id, nil
}

// surfaceColor jitters the configured base color per scene so the dataset
// does not learn a fixed background tone.
func (m *Manager) surfaceColor() [3]float32 {
	base := m.cfg.Background.BaseColor
	if !m.cfg.Background.RandomizeColor {
		return [3]float32{float32(base[0]), float32(base[1]), float32(base[2])}
	}
	v := m.cfg.Background.ColorVariation
	var rgb [3]float32
	for i, c := range base {
		jittered := c + (m.rng.Float64()*2-1)*v
		if jittered < 0 {
			jittered = 0
		}
		if jittered > 1 {
			jittered = 1
		}
		rgb[i] = float32(jittered)
	}
	return rgb
}
