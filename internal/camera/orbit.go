// Package camera plans orbit poses for nadir/near-nadir overhead photography.
package camera

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/pkg/geom"
)

// Orbit generates batches of camera poses circling a target point and
// applies one at random per image.
type Orbit struct {
	eng engine.Engine
	cfg config.CameraConfig
	rng *rand.Rand

	poses []geom.Mat4
}

// New creates an orbit planner.
func New(eng engine.Engine, cfg config.CameraConfig, rng *rand.Rand) *Orbit {
	return &Orbit{eng: eng, cfg: cfg, rng: rng}
}

// SetupIntrinsics applies resolution and focal length to the engine camera.
// One-time device configuration.
func (o *Orbit) SetupIntrinsics() {
	o.eng.SetCameraIntrinsics(o.cfg.Width, o.cfg.Height, float32(o.cfg.FocalLength))
}

// GenerateOrbit computes OrbitAngles camera poses around center. Azimuths
// are evenly spaced; the nadir angle (tilt from vertical) and distance are
// drawn uniformly per pose. Poses are regenerated every scene since the
// target point shifts with where objects settle.
func (o *Orbit) GenerateOrbit(center geom.Vec3) []geom.Mat4 {
	n := o.cfg.OrbitAngles
	poses := make([]geom.Mat4, 0, n)

	for i := 0; i < n; i++ {
		azimuth := 2 * math32.Pi * float32(i) / float32(n)
		distance := o.uniform(o.cfg.DistanceRange)
		nadir := o.uniform(o.cfg.NadirAngleRange) * math32.Pi / 180

		pos := center.Add(geom.Vec3{
			X: distance * math32.Sin(nadir) * math32.Cos(azimuth),
			Y: distance * math32.Sin(nadir) * math32.Sin(azimuth),
			Z: distance * math32.Cos(nadir),
		})

		poses = append(poses, geom.LookAtPose(pos, center, geom.Vec3{Y: 1}))
	}

	o.poses = poses
	return poses
}

// PickRandomPose selects one generated pose uniformly at random and applies
// it to the engine. GenerateOrbit must have been called for this scene.
func (o *Orbit) PickRandomPose() geom.Mat4 {
	pose := o.poses[o.rng.Intn(len(o.poses))]
	o.eng.SetCameraPose(pose)
	return pose
}

func (o *Orbit) uniform(r config.Range) float32 {
	return float32(r.Min + o.rng.Float64()*(r.Max-r.Min))
}

// SceneBounds returns the center and bounding radius of the given objects,
// from their world-space bound boxes. With no objects it falls back to a
// nominal point just above the surface.
func SceneBounds(eng engine.Engine, objects []engine.ObjectID) (geom.Vec3, float32) {
	if len(objects) == 0 {
		return geom.Vec3{Z: 0.15}, 0.5
	}

	var sum geom.Vec3
	corners := make([]geom.Vec3, 0, len(objects)*2)
	for _, id := range objects {
		min, max := eng.BoundBox(id)
		corners = append(corners, min, max)
		sum = sum.Add(min).Add(max)
	}

	center := sum.Scale(1 / float32(len(corners)))
	var radius float32
	for _, c := range corners {
		if d := c.Distance(center); d > radius {
			radius = d
		}
	}
	return center, radius
}
