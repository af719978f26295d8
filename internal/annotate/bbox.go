// Package annotate converts instance segmentation maps into normalized
// YOLO bounding-box annotations.
package annotate

import "github.com/artefactlab/synthgen/internal/engine"

// BBox is a tight pixel-space bounding rectangle.
type BBox struct {
	XMin, YMin, XMax, YMax int
}

// MaskToBBox returns the tight rectangle enclosing all set pixels.
// Returns false if the mask is empty or the resulting box is degenerate.
func MaskToBBox(mask *engine.Mask) (BBox, bool) {
	xMin, yMin := mask.Width, mask.Height
	xMax, yMax := -1, -1

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.At(x, y) {
				continue
			}
			if x < xMin {
				xMin = x
			}
			if x > xMax {
				xMax = x
			}
			if y < yMin {
				yMin = y
			}
			if y > yMax {
				yMax = y
			}
		}
	}

	if xMax <= xMin || yMax <= yMin {
		return BBox{}, false
	}
	return BBox{XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax}, true
}
