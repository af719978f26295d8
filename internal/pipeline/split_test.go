package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artefactlab/synthgen/internal/config"
)

func TestPlanSplits(t *testing.T) {
	tests := []struct {
		name  string
		total int
		cfg   config.DatasetConfig
		want  SplitPlan
	}{
		{
			name:  "default ratios",
			total: 10,
			cfg:   config.DatasetConfig{TrainSplit: 0.7, ValSplit: 0.15, TestSplit: 0.15},
			want:  SplitPlan{Train: 7, Val: 1, Test: 2},
		},
		{
			name:  "train only",
			total: 3,
			cfg:   config.DatasetConfig{TrainSplit: 1.0},
			want:  SplitPlan{Train: 3, Val: 0, Test: 0},
		},
		{
			name:  "rounding slack goes to test",
			total: 7,
			cfg:   config.DatasetConfig{TrainSplit: 0.5, ValSplit: 0.25, TestSplit: 0.25},
			want:  SplitPlan{Train: 3, Val: 1, Test: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSplits(tt.total, tt.cfg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.total, got.Train+got.Val+got.Test)
		})
	}
}

func TestSplitForOrdering(t *testing.T) {
	plan := SplitPlan{Train: 2, Val: 1, Test: 1}
	got := make([]string, 4)
	for i := range got {
		got[i] = plan.SplitFor(i)
	}
	assert.Equal(t, []string{SplitTrain, SplitTrain, SplitVal, SplitTest}, got)
}

func TestDatasetIndexStartsAtZero(t *testing.T) {
	idx, err := NewDatasetIndex(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Claim(SplitTrain))
	assert.Equal(t, 1, idx.Claim(SplitTrain))
	assert.Equal(t, 0, idx.Claim(SplitVal))
}

func TestDatasetIndexContinuesAfterExistingImages(t *testing.T) {
	out := t.TempDir()
	imgDir := filepath.Join(out, "train", "images")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	for _, name := range []string{"train_000003.jpg", "train_000007.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(imgDir, name), nil, 0o644))
	}

	idx, err := NewDatasetIndex(out)
	require.NoError(t, err)
	assert.Equal(t, 8, idx.Claim(SplitTrain))
	assert.Equal(t, 0, idx.Claim(SplitTest))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "val_000042", BaseName(SplitVal, 42))
}

func TestEnsureDirs(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, EnsureDirs(out))
	for _, split := range splitNames {
		for _, sub := range []string{"images", "labels"} {
			info, err := os.Stat(filepath.Join(out, split, sub))
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		}
	}
}
