package annotate

import (
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artefactlab/synthgen/internal/catalog"
	"github.com/artefactlab/synthgen/internal/engine"
)

func segWithBlock(w, h int, id int32, x0, y0, x1, y1 int) *engine.SegmentationMap {
	seg := engine.NewSegmentationMap(w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			seg.Set(x, y, id)
		}
	}
	return seg
}

func TestMaskToBBoxTight(t *testing.T) {
	seg := segWithBlock(64, 48, 2, 10, 5, 29, 19)
	box, ok := MaskToBBox(seg.Mask(2))
	require.True(t, ok)
	assert.Equal(t, BBox{XMin: 10, YMin: 5, XMax: 29, YMax: 19}, box)
}

func TestMaskToBBoxEmptyAndDegenerate(t *testing.T) {
	seg := engine.NewSegmentationMap(16, 16)
	_, ok := MaskToBBox(seg.Mask(2))
	assert.False(t, ok, "empty mask")

	// Single-pixel mask collapses to a zero-area box.
	seg.Set(4, 4, 2)
	_, ok = MaskToBBox(seg.Mask(2))
	assert.False(t, ok, "degenerate mask")
}

func TestRecordRoundTripWithinHalfPixel(t *testing.T) {
	const w, h = 1920, 1080
	orig := BBox{XMin: 113, YMin: 407, XMax: 764, YMax: 951}

	rec := NewRecord(orig, 3, w, h)
	got := rec.Denormalize(w, h)

	assert.InDelta(t, orig.XMin, got.XMin, 1)
	assert.InDelta(t, orig.YMin, got.YMin, 1)
	assert.InDelta(t, orig.XMax, got.XMax, 1)
	assert.InDelta(t, orig.YMax, got.YMax, 1)
}

func TestRecordStringParse(t *testing.T) {
	rec := Record{ClassID: 2, XCenter: 0.5, YCenter: 0.25, Width: 0.125, Height: 0.0625}
	parsed, err := ParseRecord(rec.String())
	require.NoError(t, err)
	assert.Equal(t, rec.ClassID, parsed.ClassID)
	assert.InDelta(t, rec.XCenter, parsed.XCenter, 1e-6)
	assert.InDelta(t, rec.Width, parsed.Width, 1e-6)

	_, err = ParseRecord("1 0.5 0.5")
	assert.Error(t, err)
	_, err = ParseRecord("x 0.5 0.5 0.5 0.5")
	assert.Error(t, err)
}

func TestRecordNormalizedBounds(t *testing.T) {
	rec := NewRecord(BBox{XMin: 0, YMin: 0, XMax: 63, YMax: 47}, 0, 64, 48)
	for _, v := range []float64{rec.XCenter, rec.YCenter, rec.Width, rec.Height} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.InDelta(t, 63.0/64.0, rec.Width, 1e-9)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000001.txt")
	records := []Record{
		{ClassID: 0, XCenter: 0.5, YCenter: 0.5, Width: 0.2, Height: 0.1},
		{ClassID: 4, XCenter: 0.25, YCenter: 0.75, Width: 0.05, Height: 0.05},
	}
	require.NoError(t, Save(records, path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[1].ClassID)
	assert.InDelta(t, 0.75, got[1].YCenter, 1e-6)
}

func TestFromSegmentationMatchesByPosition(t *testing.T) {
	seg := segWithBlock(64, 48, 2, 4, 4, 11, 9)
	for y := 20; y <= 27; y++ {
		for x := 30; x <= 41; x++ {
			seg.Set(x, y, 3)
		}
	}
	res := &engine.RenderResult{
		Instances:          seg,
		InstanceCategories: map[int32]int{2: 1, 3: 2},
	}
	objects := []*catalog.SceneObject{
		{ClassName: "awl", ClassID: 0, CategoryID: 1, InstanceID: 2},
		{ClassName: "blade", ClassID: 1, CategoryID: 2, InstanceID: 3},
	}

	records := FromSegmentation(res, objects, 64, 48)
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].ClassID)
	assert.Equal(t, 1, records[1].ClassID)

	wantXC := (4.0 + 7.0/2) / 64.0
	assert.InDelta(t, wantXC, records[0].XCenter, 1e-9)
}

func TestFromSegmentationSkipsHiddenObjects(t *testing.T) {
	// Only instance 2 is present; the second object is fully occluded.
	seg := segWithBlock(64, 48, 2, 4, 4, 11, 9)
	res := &engine.RenderResult{Instances: seg}
	objects := []*catalog.SceneObject{
		{ClassName: "awl", ClassID: 0, CategoryID: 1},
		{ClassName: "blade", ClassID: 1, CategoryID: 2},
	}

	records := FromSegmentation(res, objects, 64, 48)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].ClassID)
}

func TestFromSegmentationEmpty(t *testing.T) {
	res := &engine.RenderResult{Instances: engine.NewSegmentationMap(64, 48)}
	records := FromSegmentation(res, []*catalog.SceneObject{{ClassName: "awl"}}, 64, 48)
	assert.Empty(t, records)
}

func TestVisualizeDrawsBorders(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	records := []Record{NewRecord(BBox{XMin: 8, YMin: 8, XMax: 55, YMax: 43}, 0, 64, 48)}

	out := Visualize(img, records, []string{"awl"})
	col := classColor(0)
	assert.Equal(t, col, out.RGBAAt(8, 8))
	assert.Equal(t, col, out.RGBAAt(55, 43))

	// Interior away from the border and label stays untouched.
	assert.Equal(t, uint8(0), out.RGBAAt(45, 35).R)
}

func TestClassColorDeterministic(t *testing.T) {
	assert.Equal(t, classColor(7), classColor(7))
	assert.NotEqual(t, classColor(0), classColor(1))
}

func TestDenormalizeRoundsToNearest(t *testing.T) {
	rec := Record{XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.5}
	box := rec.Denormalize(100, 100)
	assert.Equal(t, 25, box.XMin)
	assert.Equal(t, 75, box.XMax)
	assert.True(t, math.Abs(float64(box.YMax-box.YMin)-50) <= 1)
}
