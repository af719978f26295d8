package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artefactlab/synthgen/internal/annotate"
	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine/enginetest"
)

// newModelDir builds a tiny model library with two classes.
func newModelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, class := range []string{"awl", "blade"} {
		classDir := filepath.Join(dir, class)
		require.NoError(t, os.MkdirAll(classDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(classDir, class+".obj"), []byte("o "+class), 0o644))
	}
	return dir
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ModelDir = newModelDir(t)
	cfg.OutputDir = t.TempDir()
	cfg.NumImages = 3
	seed := int64(7)
	cfg.RandomSeed = &seed
	cfg.Camera.Width = 64
	cfg.Camera.Height = 48
	cfg.Physics.Enabled = false
	cfg.Models.MinPerScene = 1
	cfg.Models.MaxPerScene = 1
	cfg.Models.ScaleRange = config.Range{Min: 1, Max: 1}
	cfg.Dataset = config.DatasetConfig{TrainSplit: 1.0}
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := newTestConfig(t)
	fake := enginetest.New()

	summary, err := New(fake, cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Generated)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.PerSplit[SplitTrain])

	for i := 0; i < 3; i++ {
		base := BaseName(SplitTrain, i)
		imgPath := filepath.Join(cfg.OutputDir, "train", "images", base+".jpg")
		_, err := os.Stat(imgPath)
		require.NoError(t, err, "image %s", base)

		records, err := annotate.Load(filepath.Join(cfg.OutputDir, "train", "labels", base+".txt"))
		require.NoError(t, err, "labels %s", base)
		require.Len(t, records, 1)
		assert.GreaterOrEqual(t, records[0].ClassID, 0)
		assert.Less(t, records[0].ClassID, 2)
		assert.Greater(t, records[0].Width, 0.0)
		assert.Greater(t, records[0].Height, 0.0)
	}

	// Unused splits keep their empty directory structure.
	for _, split := range []string{"val", "test"} {
		entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, split, "images"))
		require.NoError(t, err)
		assert.Empty(t, entries, split)
	}

	classes, err := os.ReadFile(filepath.Join(cfg.OutputDir, "classes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "awl\nblade", string(classes))

	for _, name := range []string{"config.yaml", "generation_summary.json", "run_metadata.json"} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunNumbersContinueAcrossRuns(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := New(enginetest.New(), cfg).Run()
	require.NoError(t, err)
	_, err = New(enginetest.New(), cfg).Run()
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		imgPath := filepath.Join(cfg.OutputDir, "train", "images", BaseName(SplitTrain, i)+".jpg")
		_, err := os.Stat(imgPath)
		assert.NoError(t, err, "image %d", i)
	}
}

func TestRunRetriesEmptyRenders(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.NumImages = 1
	fake := enginetest.New()
	fake.EmptyRenders = 2

	summary, err := New(fake, cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Attempts)
}

func TestRunSkipsImageAfterExhaustedRetries(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.NumImages = 2
	fake := enginetest.New()
	fake.RenderEmpty = true

	summary, err := New(fake, cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Generated)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2*maxAttempts, summary.Attempts)
	assert.True(t, summary.HasEmptySplit())

	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "train", "images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunPrunesObjectsThatLeaveTheSurface(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.NumImages = 1
	cfg.Physics.Enabled = true
	fake := enginetest.New()
	fake.ScatterX = 2.0 // settles every body outside the valid region

	summary, err := New(fake, cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Generated)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunFailsWithoutModels(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.ModelDir = t.TempDir() // no class directories

	_, err := New(enginetest.New(), cfg).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestRunWritesVisualizations(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.NumImages = 1
	cfg.CreateVisualizations = true

	summary, err := New(enginetest.New(), cfg).Run()
	require.NoError(t, err)
	assert.False(t, summary.HasEmptySplit())

	base := BaseName(SplitTrain, 0)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "visualizations", "train", base+"_annotated.jpg"))
	assert.NoError(t, err)
}

func TestPreviewWritesAnnotatedRenders(t *testing.T) {
	cfg := newTestConfig(t)

	err := New(enginetest.New(), cfg).Preview(2)
	require.NoError(t, err)

	for _, name := range []string{"preview_000.jpg", "preview_001.jpg"} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, "preview", name))
		assert.NoError(t, err, name)
	}
}
