package catalog

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine/enginetest"
)

func writeModelTree(t *testing.T, classes map[string][]string) string {
	t.Helper()
	dir := t.TempDir()
	for class, files := range classes {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, class), 0755))
		for _, f := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, class, f), []byte("mesh"), 0644))
		}
	}
	return dir
}

func TestDiscover(t *testing.T) {
	dir := writeModelTree(t, map[string][]string{
		"blade": {"b1.obj", "b2.glb", "notes.txt"},
		"awl":   {"a1.stl"},
	})

	c := New(enginetest.New(), dir, config.Default().Models, rand.New(rand.NewSource(1)))
	require.NoError(t, c.Discover())

	assert.Equal(t, []string{"awl", "blade"}, c.ClassNames())
	assert.Equal(t, 2, c.NumClasses())
	assert.Len(t, c.classModels["blade"], 2, "unsupported extensions are ignored")
}

func TestDiscoverEmpty(t *testing.T) {
	c := New(enginetest.New(), t.TempDir(), config.Default().Models, rand.New(rand.NewSource(1)))
	err := c.Discover()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfiguration))
}

func TestSampleSceneInstanceIDs(t *testing.T) {
	dir := writeModelTree(t, map[string][]string{
		"awl":   {"a1.obj"},
		"blade": {"b1.obj"},
	})

	fake := enginetest.New()
	c := New(fake, dir, config.Default().Models, rand.New(rand.NewSource(7)))
	require.NoError(t, c.Discover())

	c.ResetInstanceCounter()
	objects, err := c.SampleScene(3)
	require.NoError(t, err)
	require.Len(t, objects, 3)

	// Instance ids are contiguous starting at 2, in load order.
	for i, obj := range objects {
		assert.Equal(t, i+2, obj.InstanceID)
		assert.Equal(t, obj.ClassID+1, obj.CategoryID)
		assert.Contains(t, []string{"awl", "blade"}, obj.ClassName)
	}

	// A fresh scene restarts at 2.
	c.ResetInstanceCounter()
	objects, err = c.SampleScene(1)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, 2, objects[0].InstanceID)
}

func TestSampleSceneSkipsFailedLoads(t *testing.T) {
	dir := writeModelTree(t, map[string][]string{
		"awl": {"bad.obj"},
	})

	fake := enginetest.New()
	fake.LoadErrs[filepath.Join(dir, "awl", "bad.obj")] = errors.New("corrupt mesh")

	c := New(fake, dir, config.Default().Models, rand.New(rand.NewSource(7)))
	require.NoError(t, c.Discover())

	objects, err := c.SampleScene(2)
	require.NoError(t, err, "individual load failures must not abort the scene")
	assert.Empty(t, objects)
}

func TestSampleSceneCountRange(t *testing.T) {
	dir := writeModelTree(t, map[string][]string{
		"awl": {"a1.obj"},
	})

	cfg := config.Default().Models
	cfg.MinPerScene = 2
	cfg.MaxPerScene = 4

	c := New(enginetest.New(), dir, cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, c.Discover())

	for i := 0; i < 20; i++ {
		c.ResetInstanceCounter()
		objects, err := c.SampleScene(0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(objects), 2)
		assert.LessOrEqual(t, len(objects), 4)
	}
}

func TestSaveClassNames(t *testing.T) {
	dir := writeModelTree(t, map[string][]string{
		"blade": {"b1.obj"},
		"awl":   {"a1.obj"},
	})

	c := New(enginetest.New(), dir, config.Default().Models, rand.New(rand.NewSource(1)))
	require.NoError(t, c.Discover())

	out := filepath.Join(t.TempDir(), "classes.txt")
	require.NoError(t, c.SaveClassNames(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "awl\nblade", string(data))
}
