// Package placement positions objects above the surface and settles them,
// either through the engine's physics solver or with a deterministic flat
// placement when physics is disabled.
package placement

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/catalog"
	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/internal/logger"
	"github.com/artefactlab/synthgen/pkg/geom"
)

// Simulation window tuned empirically: long enough for pathological stacks
// to settle, bounded so a jittering object cannot stall the run.
const (
	minSimTime    = 6 * time.Second
	maxSimTime    = 10 * time.Second
	checkInterval = 500 * time.Millisecond
)

// Objects resting at or below sinkEpsilon after simulation started below the
// surface or tunneled through it; they are clamped to restHeight.
const (
	sinkEpsilon = 0.015
	restHeight  = 0.02
)

// surfaceMargin keeps fast objects from tunneling through the plane.
const surfaceMargin = 0.001

// rigidDamping is the fixed angular/linear damping applied to dropped objects.
const rigidDamping = 0.1

// Region bounds the horizontal spawn area.
type Region struct {
	XMin, XMax float32
	YMin, YMax float32
}

// DefaultSpawnRegion keeps spawns well inside the surface bounds.
var DefaultSpawnRegion = Region{XMin: -0.4, XMax: 0.4, YMin: -0.4, YMax: 0.4}

// Stage drops or places objects onto the surface.
type Stage struct {
	eng     engine.Engine
	physics config.PhysicsConfig
	models  config.ModelConfig
	rng     *rand.Rand
}

// New creates a placement stage.
func New(eng engine.Engine, physics config.PhysicsConfig, models config.ModelConfig, rng *rand.Rand) *Stage {
	return &Stage{eng: eng, physics: physics, models: models, rng: rng}
}

// Settle places the objects within region on the surface. With physics
// enabled the objects are dropped and simulated until stable; otherwise they
// are laid flat at random positions.
func (s *Stage) Settle(objects []*catalog.SceneObject, surface engine.ObjectID, region Region) error {
	if !s.physics.Enabled {
		s.placeFlat(objects, region)
		return nil
	}
	return s.drop(objects, surface, region)
}

// placeFlat puts each object at a random (x, y) with its lowest vertex
// exactly on the surface plane, rotated around z only.
func (s *Stage) placeFlat(objects []*catalog.SceneObject, region Region) {
	for _, obj := range objects {
		x := s.uniform(region.XMin, region.XMax)
		y := s.uniform(region.YMin, region.YMax)
		yaw := float32(s.rng.Float64()) * 2 * math32.Pi

		s.eng.SetRotation(obj.ID, geom.Vec3{Z: yaw})
		s.eng.SetLocation(obj.ID, geom.Vec3{X: x, Y: y})

		min, _ := s.eng.BoundBox(obj.ID)
		s.eng.SetLocation(obj.ID, geom.Vec3{X: x, Y: y, Z: -min.Z})
	}
}

// drop spawns objects above the surface with random orientation, enables
// rigid bodies and runs the bounded settling simulation.
func (s *Stage) drop(objects []*catalog.SceneObject, surface engine.ObjectID, region Region) error {
	if err := s.eng.EnableRigidBody(surface, engine.RigidBodyParams{
		Active:          false,
		CollisionShape:  engine.CollisionMesh,
		CollisionMargin: surfaceMargin,
	}); err != nil {
		return fmt.Errorf("enabling surface collider: %w", err)
	}

	for _, obj := range objects {
		s.eng.SetLocation(obj.ID, geom.Vec3{
			X: s.uniform(region.XMin, region.XMax),
			Y: s.uniform(region.YMin, region.YMax),
			Z: float32(s.physics.DropHeight),
		})

		rot := geom.Vec3{Z: float32(s.rng.Float64()) * 2 * math32.Pi}
		if s.models.RandomizeRotation {
			rot.X = float32(s.rng.Float64()) * 2 * math32.Pi
			rot.Y = float32(s.rng.Float64()) * 2 * math32.Pi
		}
		s.eng.SetRotation(obj.ID, rot)

		if err := s.eng.EnableRigidBody(obj.ID, engine.RigidBodyParams{
			Active:         true,
			CollisionShape: engine.CollisionConvexHull,
			Friction:       float32(s.physics.Friction),
			Restitution:    float32(s.physics.Restitution),
			LinearDamping:  rigidDamping,
			AngularDamping: rigidDamping,
		}); err != nil {
			return fmt.Errorf("enabling rigidbody for %s: %w", obj.ClassName, err)
		}
	}

	if err := s.eng.SimulatePhysics(engine.SimulateOptions{
		MinTime:       minSimTime,
		MaxTime:       maxSimTime,
		CheckInterval: checkInterval,
	}); err != nil {
		return fmt.Errorf("physics simulation: %w", err)
	}

	// Pragmatic clamp, not a physical correction: anything resting at or
	// below the surface sank through and gets lifted to a fixed height.
	for _, obj := range objects {
		loc := s.eng.Location(obj.ID)
		if loc.Z < sinkEpsilon {
			s.eng.SetLocation(obj.ID, geom.Vec3{X: loc.X, Y: loc.Y, Z: restHeight})
			logger.Debug("raised sunken object to rest height",
				zap.String("class", obj.ClassName),
				zap.Float32("z", loc.Z))
		}
	}

	return nil
}

func (s *Stage) uniform(min, max float32) float32 {
	return min + float32(s.rng.Float64())*(max-min)
}
