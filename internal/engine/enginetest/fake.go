// Package enginetest provides an in-memory Engine implementation for tests.
// It keeps a plain object table instead of a scene graph and renders each
// live mesh as a small rectangle in the segmentation map, assigning instance
// ids sequentially in creation order the way the real engine does.
package enginetest

import (
	"fmt"
	"sort"

	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/pkg/geom"
)

type fakeObject struct {
	id       engine.ObjectID
	order    int
	name     string
	loc      geom.Vec3
	rot      geom.Vec3
	scale    geom.Vec3
	category int
	color    [3]float32
	isLight  bool
	rigid    *engine.RigidBodyParams
	boxMin   geom.Vec3
	boxMax   geom.Vec3
}

// Fake implements engine.Engine for testing.
type Fake struct {
	objects   map[engine.ObjectID]*fakeObject
	nextID    engine.ObjectID
	nextOrder int

	width, height int
	pose          geom.Mat4
	segEnabled    bool

	// Failure and behavior knobs.
	HasGPU       bool
	InitErr      error
	LoadErrs     map[string]error // model path -> load error
	RenderErr    error
	RenderEmpty  bool    // every render yields an all-background segmentation
	EmptyRenders int     // number of initial renders yielding empty segmentation
	SettleZ      float32 // height applied to active rigid bodies by SimulatePhysics
	ScatterX     float32 // if non-zero, SimulatePhysics pushes bodies to this x

	// Call counters.
	InitCalls     int
	RenderCalls   int
	SimulateCalls int
	PurgeCalls    int
	LoadCalls     int
}

var _ engine.Engine = (*Fake)(nil)

// New creates a fake engine with settling behavior that keeps objects valid.
func New() *Fake {
	return &Fake{
		objects:  make(map[engine.ObjectID]*fakeObject),
		nextID:   1,
		LoadErrs: make(map[string]error),
		SettleZ:  0.05,
		width:    64,
		height:   48,
	}
}

func (f *Fake) Init(preferGPU bool) (engine.DeviceInfo, error) {
	f.InitCalls++
	if f.InitErr != nil {
		return engine.DeviceInfo{}, f.InitErr
	}
	if preferGPU && f.HasGPU {
		return engine.DeviceInfo{HasGPU: true, Name: "FakeGPU"}, nil
	}
	return engine.DeviceInfo{HasGPU: false, Name: "CPU"}, nil
}

func (f *Fake) ConfigureRenderer(engine.RenderSettings) error { return nil }

func (f *Fake) LoadModel(path string) ([]engine.ObjectID, error) {
	f.LoadCalls++
	if err, ok := f.LoadErrs[path]; ok {
		return nil, err
	}
	obj := f.newObject(fmt.Sprintf("mesh_%s", path), false)
	return []engine.ObjectID{obj.id}, nil
}

func (f *Fake) CreatePlane(scale geom.Vec3) (engine.ObjectID, error) {
	obj := f.newObject("plane", false)
	obj.scale = scale
	obj.boxMin = geom.Vec3{X: -scale.X, Y: -scale.Y}
	obj.boxMax = geom.Vec3{X: scale.X, Y: scale.Y}
	return obj.id, nil
}

func (f *Fake) newObject(name string, isLight bool) *fakeObject {
	obj := &fakeObject{
		id:      f.nextID,
		order:   f.nextOrder,
		name:    name,
		scale:   geom.Vec3{X: 1, Y: 1, Z: 1},
		isLight: isLight,
		boxMin:  geom.Vec3{X: -0.03, Y: -0.03, Z: -0.03},
		boxMax:  geom.Vec3{X: 0.03, Y: 0.03, Z: 0.03},
	}
	f.nextID++
	f.nextOrder++
	f.objects[obj.id] = obj
	return obj
}

func (f *Fake) SetName(id engine.ObjectID, name string) {
	if o := f.objects[id]; o != nil {
		o.name = name
	}
}

func (f *Fake) SetLocation(id engine.ObjectID, loc geom.Vec3) {
	if o := f.objects[id]; o != nil {
		o.loc = loc
	}
}

// Name reports the object's current name.
func (f *Fake) Name(id engine.ObjectID) string {
	if o := f.objects[id]; o != nil {
		return o.name
	}
	return ""
}

func (f *Fake) Location(id engine.ObjectID) geom.Vec3 {
	if o := f.objects[id]; o != nil {
		return o.loc
	}
	return geom.Vec3{}
}

func (f *Fake) SetRotation(id engine.ObjectID, euler geom.Vec3) {
	if o := f.objects[id]; o != nil {
		o.rot = euler
	}
}

func (f *Fake) SetScale(id engine.ObjectID, scale geom.Vec3) {
	if o := f.objects[id]; o != nil {
		o.scale = scale
	}
}

func (f *Fake) SetCategory(id engine.ObjectID, category int) {
	if o := f.objects[id]; o != nil {
		o.category = category
	}
}

func (f *Fake) SetBaseColor(id engine.ObjectID, rgb [3]float32) {
	if o := f.objects[id]; o != nil {
		o.color = rgb
	}
}

// BaseColor reports the material color last set on the object.
func (f *Fake) BaseColor(id engine.ObjectID) [3]float32 {
	if o := f.objects[id]; o != nil {
		return o.color
	}
	return [3]float32{}
}

func (f *Fake) BoundBox(id engine.ObjectID) (geom.Vec3, geom.Vec3) {
	o := f.objects[id]
	if o == nil {
		return geom.Vec3{}, geom.Vec3{}
	}
	min := o.loc.Add(geom.Vec3{X: o.boxMin.X * o.scale.X, Y: o.boxMin.Y * o.scale.Y, Z: o.boxMin.Z * o.scale.Z})
	max := o.loc.Add(geom.Vec3{X: o.boxMax.X * o.scale.X, Y: o.boxMax.Y * o.scale.Y, Z: o.boxMax.Z * o.scale.Z})
	return min, max
}

func (f *Fake) Delete(id engine.ObjectID) {
	delete(f.objects, id)
}

func (f *Fake) MeshObjects() []engine.ObjectID {
	return f.liveMeshIDs()
}

func (f *Fake) liveMeshIDs() []engine.ObjectID {
	meshes := make([]*fakeObject, 0, len(f.objects))
	for _, o := range f.objects {
		if !o.isLight {
			meshes = append(meshes, o)
		}
	}
	sort.Slice(meshes, func(i, j int) bool { return meshes[i].order < meshes[j].order })
	ids := make([]engine.ObjectID, len(meshes))
	for i, o := range meshes {
		ids[i] = o.id
	}
	return ids
}

func (f *Fake) EnableRigidBody(id engine.ObjectID, params engine.RigidBodyParams) error {
	o := f.objects[id]
	if o == nil {
		return fmt.Errorf("enable rigidbody: unknown object %d", id)
	}
	p := params
	o.rigid = &p
	return nil
}

// SimulatePhysics settles every active rigid body at SettleZ, keeping its
// horizontal position unless ScatterX pushes it out of bounds.
func (f *Fake) SimulatePhysics(engine.SimulateOptions) error {
	f.SimulateCalls++
	for _, o := range f.objects {
		if o.rigid == nil || !o.rigid.Active {
			continue
		}
		o.loc.Z = f.SettleZ
		if f.ScatterX != 0 {
			o.loc.X = f.ScatterX
		}
	}
	return nil
}

func (f *Fake) SetCameraIntrinsics(width, height int, _ float32) {
	f.width, f.height = width, height
}

func (f *Fake) SetCameraPose(pose geom.Mat4) {
	f.pose = pose
}

func (f *Fake) CreateLight(spec engine.LightSpec) (engine.ObjectID, error) {
	obj := f.newObject(string(spec.Type)+"_light", true)
	obj.loc = spec.Location
	obj.rot = spec.Rotation
	return obj.id, nil
}

func (f *Fake) EnableSegmentation() {
	f.segEnabled = true
}

// Render draws each live mesh as a small rectangle. Instance ids follow
// creation order starting at 1, matching the sequential assignment the
// annotator's index+2 convention depends on.
func (f *Fake) Render() (*engine.RenderResult, error) {
	f.RenderCalls++
	if f.RenderErr != nil {
		return nil, f.RenderErr
	}

	color := engine.NewColorBuffer(f.width, f.height)
	color.Fill(0.5, 0.48, 0.45)

	res := &engine.RenderResult{Color: color}
	if !f.segEnabled {
		return res, nil
	}

	seg := engine.NewSegmentationMap(f.width, f.height)
	cats := make(map[int32]int)

	empty := f.RenderEmpty
	if !empty && f.EmptyRenders > 0 {
		f.EmptyRenders--
		empty = true
	}

	if !empty {
		for idx, id := range f.liveMeshIDs() {
			o := f.objects[id]
			inst := int32(idx + 1)
			cats[inst] = o.category
			if o.category == 0 {
				// The surface covers whatever the objects don't.
				for i := range seg.Pix {
					if seg.Pix[i] == 0 {
						seg.Pix[i] = inst
					}
				}
				continue
			}
			x0 := 4 + idx*12
			y0 := 4 + idx*8
			for y := y0; y < y0+6 && y < f.height; y++ {
				for x := x0; x < x0+8 && x < f.width; x++ {
					seg.Set(x, y, inst)
					color.SetRGB(x, y, float32(inst)*0.11, 0.3, 0.7)
				}
			}
		}
	}

	res.Instances = seg
	res.InstanceCategories = cats
	return res, nil
}

func (f *Fake) PurgeOrphanData() int {
	f.PurgeCalls++
	return 0
}
