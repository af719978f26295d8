package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/artefactlab/synthgen/internal/config"
)

// Dataset split names, also the output subdirectory names.
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

var splitNames = []string{SplitTrain, SplitVal, SplitTest}

// SplitPlan fixes how many images of a run land in each split. Train and
// val counts are floored so rounding slack always accrues to test.
type SplitPlan struct {
	Train int
	Val   int
	Test  int
}

// PlanSplits computes per-split counts for total images.
func PlanSplits(total int, cfg config.DatasetConfig) SplitPlan {
	train := int(float64(total) * cfg.TrainSplit)
	val := int(float64(total) * cfg.ValSplit)
	return SplitPlan{
		Train: train,
		Val:   val,
		Test:  total - train - val,
	}
}

// SplitFor assigns the i-th image of the run (0-based) to a split:
// train first, then val, then test.
func (p SplitPlan) SplitFor(i int) string {
	switch {
	case i < p.Train:
		return SplitTrain
	case i < p.Train+p.Val:
		return SplitVal
	default:
		return SplitTest
	}
}

// DatasetIndex tracks the next free image number per split. Numbers
// continue from whatever a previous run left in the output directory, so
// reruns extend a dataset instead of overwriting it.
type DatasetIndex struct {
	outputDir string
	next      map[string]int
}

// NewDatasetIndex scans outputDir for existing images and positions each
// split's counter after the highest number found.
func NewDatasetIndex(outputDir string) (*DatasetIndex, error) {
	idx := &DatasetIndex{
		outputDir: outputDir,
		next:      make(map[string]int),
	}
	for _, split := range splitNames {
		n, err := scanSplit(outputDir, split)
		if err != nil {
			return nil, err
		}
		idx.next[split] = n
	}
	return idx, nil
}

func scanSplit(outputDir, split string) (int, error) {
	dir := filepath.Join(outputDir, split, "images")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scan %s split: %w", split, err)
	}

	max := -1
	for _, e := range entries {
		var n int
		if _, err := fmt.Sscanf(e.Name(), split+"_%06d.jpg", &n); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

// Claim returns the split's next image number and advances the counter.
func (d *DatasetIndex) Claim(split string) int {
	n := d.next[split]
	d.next[split] = n + 1
	return n
}

// BaseName formats the split-local file stem, e.g. "train_000004".
func BaseName(split string, n int) string {
	return fmt.Sprintf("%s_%06d", split, n)
}

// EnsureDirs creates the images/ and labels/ tree for every split.
func EnsureDirs(outputDir string) error {
	for _, split := range splitNames {
		for _, sub := range []string{"images", "labels"} {
			if err := os.MkdirAll(filepath.Join(outputDir, split, sub), 0o755); err != nil {
				return fmt.Errorf("create output dirs: %w", err)
			}
		}
	}
	return nil
}
