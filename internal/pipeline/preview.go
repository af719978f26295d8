package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"go.uber.org/zap"

	"github.com/artefactlab/synthgen/internal/annotate"
	"github.com/artefactlab/synthgen/internal/logger"
)

// Preview composes count scenes and writes annotated renders under
// outputDir/preview, bypassing split bookkeeping. Useful for checking
// lighting and placement settings before a long run.
func (g *Generator) Preview(count int) error {
	if err := g.startup(); err != nil {
		return err
	}
	previewDir := filepath.Join(g.cfg.OutputDir, "preview")
	if err := os.MkdirAll(previewDir, 0o755); err != nil {
		return err
	}

	classNames := g.catalog.ClassNames()
	for i := 0; i < count; i++ {
		res, records, err := g.composeAndRender()
		if err != nil {
			logger.Warn("preview scene failed", zap.Int("index", i), zap.Error(err))
			continue
		}

		annotated := annotate.Visualize(res.Color.ToRGBA(), records, classNames)
		res.Release()

		path := filepath.Join(previewDir, fmt.Sprintf("preview_%03d.jpg", i))
		if err := imgio.Save(path, annotated, imgio.JPEGEncoder(jpegQuality)); err != nil {
			return fmt.Errorf("save preview: %w", err)
		}
		logger.Info("preview rendered", zap.String("path", path))
	}
	return nil
}
