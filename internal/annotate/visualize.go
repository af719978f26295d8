package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const boxBorder = 3

// classColor derives a stable, saturated color from the class id so
// repeated runs draw each class the same way.
func classColor(classID int) color.RGBA {
	rng := rand.New(rand.NewSource(int64(classID) * 12345))
	return color.RGBA{
		R: uint8(64 + rng.Intn(192)),
		G: uint8(64 + rng.Intn(192)),
		B: uint8(64 + rng.Intn(192)),
		A: 255,
	}
}

// Visualize draws labeled bounding boxes over a copy of img. Class
// names index into classNames by Record.ClassID; unknown ids are drawn
// without a label.
func Visualize(img image.Image, records []Record, classNames []string) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, rec := range records {
		box := rec.Denormalize(bounds.Dx(), bounds.Dy())
		col := classColor(rec.ClassID)
		drawRect(out, box, col)
		if rec.ClassID >= 0 && rec.ClassID < len(classNames) {
			drawLabel(out, box, classNames[rec.ClassID], col)
		}
	}
	return out
}

// VisualizeFile reads an image/label pair from disk and writes the
// annotated image to outPath as JPEG.
func VisualizeFile(imagePath, labelPath, outPath string, classNames []string) error {
	img, err := imgio.Open(imagePath)
	if err != nil {
		return err
	}
	records, err := Load(labelPath)
	if err != nil {
		return err
	}
	annotated := Visualize(img, records, classNames)
	return imgio.Save(outPath, annotated, imgio.JPEGEncoder(95))
}

func drawRect(img *image.RGBA, box BBox, col color.RGBA) {
	for t := 0; t < boxBorder; t++ {
		for x := box.XMin; x <= box.XMax; x++ {
			setPixel(img, x, box.YMin+t, col)
			setPixel(img, x, box.YMax-t, col)
		}
		for y := box.YMin; y <= box.YMax; y++ {
			setPixel(img, box.XMin+t, y, col)
			setPixel(img, box.XMax-t, y, col)
		}
	}
}

func drawLabel(img *image.RGBA, box BBox, text string, col color.RGBA) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	y0 := box.YMin - textHeight - 2
	if y0 < img.Bounds().Min.Y {
		y0 = box.YMin + boxBorder + 1
	}
	bg := image.Rect(box.XMin, y0, box.XMin+textWidth+4, y0+textHeight+2)
	draw.Draw(img, bg.Intersect(img.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{A: 255}),
		Face: face,
		Dot:  fixed.P(box.XMin+2, y0+face.Metrics().Ascent.Ceil()+1),
	}
	d.DrawString(text)
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}
