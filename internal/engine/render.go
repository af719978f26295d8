package engine

import (
	"image"
	"sort"
)

// ColorBuffer is a floating-point RGB image with channel values in [0,1],
// as produced by the renderer before 8-bit conversion.
type ColorBuffer struct {
	Width, Height int
	Pix           []float32 // RGB triples, row-major
}

// NewColorBuffer allocates a zeroed buffer.
func NewColorBuffer(width, height int) *ColorBuffer {
	return &ColorBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// SetRGB writes one pixel.
func (b *ColorBuffer) SetRGB(x, y int, r, g, bl float32) {
	i := (y*b.Width + x) * 3
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
}

// Fill sets every pixel to the given color.
func (b *ColorBuffer) Fill(r, g, bl float32) {
	for i := 0; i < len(b.Pix); i += 3 {
		b.Pix[i] = r
		b.Pix[i+1] = g
		b.Pix[i+2] = bl
	}
}

// ToRGBA converts the float buffer to an 8-bit image, clamping each channel
// to [0,1] before scaling to [0,255].
func (b *ColorBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := (y*b.Width + x) * 3
			o := img.PixOffset(x, y)
			img.Pix[o] = to8bit(b.Pix[i])
			img.Pix[o+1] = to8bit(b.Pix[i+1])
			img.Pix[o+2] = to8bit(b.Pix[i+2])
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

func to8bit(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// SegmentationMap holds per-pixel instance identifiers: 0 is background,
// 1 is reserved for the surface, real objects start at 2.
type SegmentationMap struct {
	Width, Height int
	Pix           []int32
}

// NewSegmentationMap allocates a background-only map.
func NewSegmentationMap(width, height int) *SegmentationMap {
	return &SegmentationMap{
		Width:  width,
		Height: height,
		Pix:    make([]int32, width*height),
	}
}

// At returns the instance id at (x, y).
func (m *SegmentationMap) At(x, y int) int32 {
	return m.Pix[y*m.Width+x]
}

// Set writes the instance id at (x, y).
func (m *SegmentationMap) Set(x, y int, id int32) {
	m.Pix[y*m.Width+x] = id
}

// InstanceIDs returns the sorted unique non-background ids present.
func (m *SegmentationMap) InstanceIDs() []int32 {
	seen := make(map[int32]struct{})
	for _, v := range m.Pix {
		if v != 0 {
			seen[v] = struct{}{}
		}
	}
	ids := make([]int32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains reports whether the id appears anywhere in the map.
func (m *SegmentationMap) Contains(id int32) bool {
	for _, v := range m.Pix {
		if v == id {
			return true
		}
	}
	return false
}

// Mask extracts the binary mask of one instance.
func (m *SegmentationMap) Mask(id int32) *Mask {
	mask := &Mask{Width: m.Width, Height: m.Height, Bits: make([]bool, len(m.Pix))}
	for i, v := range m.Pix {
		if v == id {
			mask.Bits[i] = true
		}
	}
	return mask
}

// Mask is a binary per-pixel mask for a single instance.
type Mask struct {
	Width, Height int
	Bits          []bool
}

// At returns whether the pixel at (x, y) belongs to the instance.
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Set marks the pixel at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// RenderResult is one frame's output from the engine.
type RenderResult struct {
	Color   *ColorBuffer
	Depth   []float32
	Normals *ColorBuffer

	// Instances is the instance segmentation map; nil if segmentation
	// output was not enabled before rendering.
	Instances *SegmentationMap

	// InstanceCategories maps each rendered instance id to the category id
	// the object carried at render time. Used to cross-check the sequential
	// instance matching convention.
	InstanceCategories map[int32]int
}

// Release drops the large pixel buffers so they can be collected immediately
// after the frame is persisted.
func (r *RenderResult) Release() {
	r.Color = nil
	r.Depth = nil
	r.Normals = nil
	r.Instances = nil
	r.InstanceCategories = nil
}
