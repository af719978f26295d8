// Package engine defines the boundary to the external 3D content-creation
// and physics engine. The pipeline drives the engine exclusively through the
// Engine interface; everything behind it (scene graph, rigid-body solver,
// renderer, device enumeration) is an opaque collaborator.
package engine

import (
	"time"

	"github.com/artefactlab/synthgen/pkg/geom"
)

// ObjectID identifies an object (mesh or light) in the engine's scene graph.
// IDs are only meaningful within the current scene; teardown invalidates them.
type ObjectID int

// DeviceInfo describes the render device selected at initialization.
type DeviceInfo struct {
	HasGPU bool
	Name   string
}

// LightType selects the engine light kind.
type LightType string

// Supported light types.
const (
	LightPoint LightType = "POINT"
	LightArea  LightType = "AREA"
	LightSun   LightType = "SUN"
)

// LightSpec fully describes a light to create.
type LightSpec struct {
	Type     LightType
	Location geom.Vec3
	Rotation geom.Vec3 // Euler angles, radians
	Energy   float32
	Color    [3]float32
}

// Collision shapes for rigid bodies.
const (
	CollisionMesh       = "MESH"
	CollisionConvexHull = "CONVEX_HULL"
)

// RigidBodyParams configures an object for physics simulation.
// Active=false marks a static collider (the surface); active bodies fall
// under gravity and collide.
type RigidBodyParams struct {
	Active          bool
	CollisionShape  string
	CollisionMargin float32
	Friction        float32
	Restitution     float32
	LinearDamping   float32
	AngularDamping  float32
}

// SimulateOptions bounds the physics settling window. The solver runs at
// least MinTime, checks object velocities every CheckInterval and stops as
// soon as everything is stable, or at MaxTime regardless.
type SimulateOptions struct {
	MinTime       time.Duration
	MaxTime       time.Duration
	CheckInterval time.Duration
}

// RenderSettings configures the engine renderer once at startup.
type RenderSettings struct {
	Engine     string // "CYCLES" or "EEVEE"
	Samples    int
	MaxBounces int
	Denoise    bool
	UseOnlyCPU bool
}

// Engine is the contract the pipeline depends on. Implementations are not
// safe for concurrent use; the generation loop is strictly sequential.
type Engine interface {
	// Init brings the engine up and selects a render device. A missing GPU
	// must not fail: implementations fall back to CPU and report it.
	Init(preferGPU bool) (DeviceInfo, error)

	// ConfigureRenderer applies render quality settings.
	ConfigureRenderer(RenderSettings) error

	// LoadModel imports a model file and returns the created mesh objects.
	LoadModel(path string) ([]ObjectID, error)

	// CreatePlane creates a primitive plane scaled by scale.
	CreatePlane(scale geom.Vec3) (ObjectID, error)

	SetName(id ObjectID, name string)
	SetLocation(id ObjectID, loc geom.Vec3)
	Location(id ObjectID) geom.Vec3
	SetRotation(id ObjectID, euler geom.Vec3)
	SetScale(id ObjectID, scale geom.Vec3)

	// SetCategory tags an object with a category id carried through to the
	// segmentation output (0 marks background/surface).
	SetCategory(id ObjectID, category int)

	// SetBaseColor sets the diffuse base color of the object's material.
	SetBaseColor(id ObjectID, rgb [3]float32)

	// BoundBox returns the object's world-space axis-aligned bounds under
	// its current transform.
	BoundBox(id ObjectID) (min, max geom.Vec3)

	// Delete removes an object from the scene.
	Delete(id ObjectID)

	// MeshObjects lists all live mesh objects.
	MeshObjects() []ObjectID

	EnableRigidBody(id ObjectID, params RigidBodyParams) error
	SimulatePhysics(opts SimulateOptions) error

	SetCameraIntrinsics(width, height int, focalLengthMM float32)
	SetCameraPose(pose geom.Mat4)

	CreateLight(spec LightSpec) (ObjectID, error)

	// EnableSegmentation turns on instance segmentation output. Must be
	// called after the scene's objects exist: instance ids are assigned
	// from scene contents at render time.
	EnableSegmentation()

	// Render produces the color image plus auxiliary maps for the current
	// camera pose.
	Render() (*RenderResult, error)

	// PurgeOrphanData releases engine-internal data blocks left orphaned by
	// deletions and returns how many were freed. Deleting objects alone
	// does not release their mesh/material/texture data, so the scene
	// manager calls this between frames to keep long runs bounded.
	PurgeOrphanData() int
}
