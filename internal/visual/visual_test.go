package visual

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
)

func whiteImage(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
}

func TestPaletteDeterministicAndDistinct(t *testing.T) {
	p1 := NewPalette([]int{3, 0, 7})
	p2 := NewPalette([]int{7, 3, 0})

	for _, id := range []int{0, 3, 7} {
		assert.Equal(t, p1.Color(id), p2.Color(id))
	}
	assert.NotEqual(t, p1.Color(0), p1.Color(3))
	assert.NotEqual(t, p1.Color(3), p1.Color(7))
}

func TestPaletteUnknownIDFallsBack(t *testing.T) {
	p := NewPalette(nil)
	c := p.Color(42)
	assert.Equal(t, 1.0, c.R)
}

func TestAnnotateDrawsStroke(t *testing.T) {
	src := whiteImage(40, 40)
	out := Annotate(src, []Box{{X: 10, Y: 10, W: 20, H: 20, CategoryID: 0}}, NewPalette([]int{0}))

	assert.Equal(t, src.Bounds(), out.Bounds())

	// A pixel on the top edge of the box is no longer white.
	r, g, b, _ := out.At(20, 10).RGBA()
	white := r == 0xffff && g == 0xffff && b == 0xffff
	assert.False(t, white, "expected stroked pixel at box edge")

	// A pixel well inside the box keeps the source color.
	r, g, b, _ = out.At(20, 20).RGBA()
	assert.True(t, r == 0xffff && g == 0xffff && b == 0xffff, "interior should be untouched")
}

func TestRenderDataset(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))
	require.NoError(t, imaging.Save(whiteImage(50, 50), filepath.Join(imagesDir, "a.png")))

	ds := coco.NewDataset()
	ds.Categories = []coco.Category{{ID: 0, Name: "cat"}}
	ds.Images = []coco.Image{
		{ID: 1, FileName: "a.png", Width: 50, Height: 50},
		{ID: 2, FileName: "missing.png", Width: 50, Height: 50},
	}
	ds.Annotations = []coco.Annotation{
		coco.NewAnnotation(1, 1, 0, [4]float64{5, 5, 20, 20}, 400),
	}

	outDir := filepath.Join(dir, "out")
	rendered, err := RenderDataset(ds, imagesDir, outDir)
	require.NoError(t, err)
	// The missing image is skipped, not fatal.
	assert.Equal(t, 1, rendered)

	_, err = os.Stat(filepath.Join(outDir, "a_annotated.jpg"))
	assert.NoError(t, err)
}
