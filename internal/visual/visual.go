// Package visual renders dataset bounding boxes onto their source images.
package visual

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/llgcode/draw2d/draw2dimg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
)

// strokeWidth is the rectangle outline width in pixels.
const strokeWidth = 3.0

// Box is one labeled rectangle in absolute pixel coordinates.
type Box struct {
	X, Y, W, H float64
	CategoryID int
}

// Palette assigns a stable, visually distinct color to each category id.
//
// Colors are spaced evenly around the HSV hue circle in ascending id order,
// so the same dataset always renders with the same colors.
type Palette struct {
	colors map[int]colorful.Color
}

// NewPalette builds a palette for the given category ids.
func NewPalette(ids []int) *Palette {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	colors := make(map[int]colorful.Color, len(sorted))
	n := max(len(sorted), 1)
	for i, id := range sorted {
		hue := 360.0 * float64(i) / float64(n)
		colors[id] = colorful.Hsv(hue, 0.85, 0.9)
	}
	return &Palette{colors: colors}
}

// Color returns the color for a category id, falling back to red for ids
// the palette was not built with.
func (p *Palette) Color(categoryID int) colorful.Color {
	if c, ok := p.colors[categoryID]; ok {
		return c
	}
	return colorful.Color{R: 1}
}

// Annotate draws the boxes onto a copy of img and returns it.
func Annotate(img image.Image, boxes []Box, palette *Palette) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	gc := draw2dimg.NewGraphicContext(out)
	gc.DrawImage(img)

	for _, b := range boxes {
		gc.SetStrokeColor(palette.Color(b.CategoryID))
		gc.SetLineWidth(strokeWidth)
		gc.BeginPath()
		gc.MoveTo(b.X, b.Y)
		gc.LineTo(b.X+b.W, b.Y)
		gc.LineTo(b.X+b.W, b.Y+b.H)
		gc.LineTo(b.X, b.Y+b.H)
		gc.Close()
		gc.Stroke()
	}
	return out
}

// RenderDataset draws every image's annotations and writes annotated JPEG
// copies named <stem>_annotated.jpg into outDir. Images missing from
// imagesDir are skipped; the count of rendered images is returned.
func RenderDataset(ds *coco.Dataset, imagesDir, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	catIDs := make([]int, 0, len(ds.Categories))
	for _, c := range ds.Categories {
		catIDs = append(catIDs, c.ID)
	}
	palette := NewPalette(catIDs)

	boxesByImage := make(map[int][]Box)
	for _, a := range ds.Annotations {
		boxesByImage[a.ImageID] = append(boxesByImage[a.ImageID], Box{
			X: a.BBox[0], Y: a.BBox[1], W: a.BBox[2], H: a.BBox[3],
			CategoryID: a.CategoryID,
		})
	}

	rendered := 0
	for _, img := range ds.Images {
		src, err := imaging.Open(filepath.Join(imagesDir, filepath.FromSlash(img.FileName)))
		if err != nil {
			slog.Warn("skipping image", "file", img.FileName, "error", err)
			continue
		}

		annotated := Annotate(src, boxesByImage[img.ID], palette)

		stem := strings.TrimSuffix(filepath.Base(img.FileName), filepath.Ext(img.FileName))
		out := filepath.Join(outDir, stem+"_annotated.jpg")
		if err := imaging.Save(annotated, out, imaging.JPEGQuality(95)); err != nil {
			return rendered, fmt.Errorf("failed to save %s: %w", out, err)
		}
		rendered++
	}
	return rendered, nil
}
