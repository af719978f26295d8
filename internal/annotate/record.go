package annotate

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/catalog"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/internal/logger"
)

// Instance ids in the segmentation map follow object creation order:
// the background is 0, the surface plane is 1 and scene objects start
// at 2 in load order.
const firstObjectInstance = 2

// Record is a single YOLO annotation line. Coordinates are the box
// center and size normalized to [0,1] by image dimensions.
type Record struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// NewRecord normalizes a pixel-space box against the image resolution.
func NewRecord(box BBox, classID, imgWidth, imgHeight int) Record {
	w := float64(box.XMax - box.XMin)
	h := float64(box.YMax - box.YMin)
	return Record{
		ClassID: classID,
		XCenter: (float64(box.XMin) + w/2) / float64(imgWidth),
		YCenter: (float64(box.YMin) + h/2) / float64(imgHeight),
		Width:   w / float64(imgWidth),
		Height:  h / float64(imgHeight),
	}
}

// Denormalize recovers the pixel-space box for a given resolution.
func (r Record) Denormalize(imgWidth, imgHeight int) BBox {
	w := r.Width * float64(imgWidth)
	h := r.Height * float64(imgHeight)
	xMin := r.XCenter*float64(imgWidth) - w/2
	yMin := r.YCenter*float64(imgHeight) - h/2
	return BBox{
		XMin: int(xMin + 0.5),
		YMin: int(yMin + 0.5),
		XMax: int(xMin + w + 0.5),
		YMax: int(yMin + h + 0.5),
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
		r.ClassID, r.XCenter, r.YCenter, r.Width, r.Height)
}

// ParseRecord parses one YOLO annotation line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("annotation line has %d fields, want 5", len(fields))
	}
	classID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("parse class id: %w", err)
	}
	vals := make([]float64, 4)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Record{}, fmt.Errorf("parse coordinate %q: %w", f, err)
		}
		vals[i] = v
	}
	return Record{
		ClassID: classID,
		XCenter: vals[0],
		YCenter: vals[1],
		Width:   vals[2],
		Height:  vals[3],
	}, nil
}

// Save writes records as a YOLO label file, one record per line.
func Save(records []Record, path string) error {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// Load reads a YOLO label file written by Save.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r, err := ParseRecord(line)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// FromSegmentation derives one record per visible scene object.
//
// Objects are matched to segmentation instances positionally: the
// object at index i in load order receives instance id i+2. Objects
// that are absent from the map, or whose mask collapses to a
// degenerate box, produce no record.
func FromSegmentation(res *engine.RenderResult, objects []*catalog.SceneObject, imgWidth, imgHeight int) []Record {
	seg := res.Instances
	if seg == nil {
		return nil
	}

	visible := 0
	for _, id := range seg.InstanceIDs() {
		if id >= firstObjectInstance {
			visible++
		}
	}
	if visible != len(objects) {
		logger.Warn("segmentation instance count differs from scene object count",
			zap.Int("visible", visible),
			zap.Int("objects", len(objects)))
	}

	records := make([]Record, 0, len(objects))
	for i, obj := range objects {
		inst := int32(i + firstObjectInstance)
		if !seg.Contains(inst) {
			logger.Debug("object not visible in segmentation",
				zap.String("class", obj.ClassName),
				zap.Int32("instance", inst))
			continue
		}
		if cat, ok := res.InstanceCategories[inst]; ok && cat != obj.CategoryID {
			logger.Warn("segmentation category disagrees with object category",
				zap.Int32("instance", inst),
				zap.Int("segmentation_category", cat),
				zap.Int("object_category", obj.CategoryID))
		}
		box, ok := MaskToBBox(seg.Mask(inst))
		if !ok {
			continue
		}
		records = append(records, NewRecord(box, obj.ClassID, imgWidth, imgHeight))
	}
	return records
}
