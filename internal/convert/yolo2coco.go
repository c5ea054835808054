package convert

import (
	"bufio"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
	"github.com/scott-vision/YOLO-COCO-Converter/internal/probe"
)

// FileNameMode selects how COCO image file_name values are populated.
type FileNameMode string

const (
	// FileNameBase emits the bare basename of each image file.
	FileNameBase FileNameMode = "name"

	// FileNameRelative emits the path relative to the image root, with
	// forward-slash separators.
	FileNameRelative FileNameMode = "relative"
)

// rasterExts is the fixed set of extensions recognized during image
// discovery. Lookup keys are lower case.
var rasterExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// YOLOToCOCOOptions configures a YOLO to COCO conversion.
type YOLOToCOCOOptions struct {
	// ImagesDir is scanned recursively for raster files.
	ImagesDir string

	// LabelsDir holds YOLO .txt files with the same stems as the images.
	// Images without a label file contribute zero annotations.
	LabelsDir string

	// ClassNames, when non-empty, becomes the category table up front:
	// id = position in the list. When empty, categories are synthesized
	// afterward from the class indices actually seen.
	ClassNames []string

	// Sizes maps the emitted file_name string to known dimensions. Checked
	// before the resolver.
	Sizes map[string]probe.Dimensions

	// Resolver probes dimensions for images absent from Sizes. May be nil,
	// in which case every image must have a Sizes entry.
	Resolver probe.SizeResolver

	// BBoxRound is the number of decimals to round bbox coordinates and
	// area to. A negative value disables rounding.
	BBoxRound int

	// FileNameMode selects basename or root-relative file_name values.
	// Empty defaults to FileNameBase.
	FileNameMode FileNameMode
}

// YOLOToCOCO converts a directory of YOLO label files to a COCO dataset.
//
// Images are discovered under opts.ImagesDir, sorted lexicographically by
// path, and numbered from 1 in that order; annotations are numbered from 1
// in the order their label lines are encountered while scanning images in
// order. Malformed label lines are skipped. The returned dataset has empty
// licenses and info.
//
// Returns ErrNoImagesFound when the root holds no raster files and
// ErrMissingImageSize when an image's dimensions cannot be resolved.
func YOLOToCOCO(opts YOLOToCOCOOptions) (*coco.Dataset, error) {
	imgFiles, err := discoverImages(opts.ImagesDir)
	if err != nil {
		return nil, err
	}
	if len(imgFiles) == 0 {
		return nil, fmt.Errorf("%w under: %s", ErrNoImagesFound, opts.ImagesDir)
	}

	ds := coco.NewDataset()
	for i, name := range opts.ClassNames {
		ds.Categories = append(ds.Categories, coco.Category{ID: i, Name: name})
	}

	seenClassIDs := make(map[int]bool)
	imgID := 1
	annID := 1

	for _, imgPath := range imgFiles {
		fileName := fileNameFor(imgPath, opts.ImagesDir, opts.FileNameMode)

		dims, ok := opts.Sizes[fileName]
		if !ok {
			if opts.Resolver == nil {
				return nil, fmt.Errorf("%w for %s: no size table entry and no resolver", ErrMissingImageSize, fileName)
			}
			dims, err = opts.Resolver.Size(imgPath)
			if err != nil {
				return nil, fmt.Errorf("%w for %s: %v", ErrMissingImageSize, fileName, err)
			}
		}

		ds.Images = append(ds.Images, coco.Image{
			ID:       imgID,
			FileName: fileName,
			Width:    dims.Width,
			Height:   dims.Height,
		})

		stem := strings.TrimSuffix(filepath.Base(imgPath), filepath.Ext(imgPath))
		labelPath := filepath.Join(opts.LabelsDir, stem+".txt")
		boxes, err := readLabelFile(labelPath)
		if err != nil {
			return nil, err
		}

		for _, b := range boxes {
			seenClassIDs[b.Class] = true
			bbox, area := yoloBoxToCOCO(b, dims, opts.BBoxRound)
			ds.Annotations = append(ds.Annotations, coco.NewAnnotation(annID, imgID, b.Class, bbox, area))
			annID++
		}
		imgID++
	}

	// No class list given: synthesize categories from the ids actually seen.
	if len(opts.ClassNames) == 0 {
		ids := make([]int, 0, len(seenClassIDs))
		for id := range seenClassIDs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			ds.Categories = append(ds.Categories, coco.Category{ID: id, Name: fmt.Sprintf("class_%d", id)})
		}
	}

	return ds, nil
}

// discoverImages returns every raster file under root, sorted
// lexicographically by path. The sort order is the sole source of image id
// assignment and must stay stable.
func discoverImages(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if rasterExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan image root: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// fileNameFor formats the COCO file_name for one image path. In relative
// mode, a path outside the image root falls back to the basename.
func fileNameFor(imgPath, imagesDir string, mode FileNameMode) string {
	if mode == FileNameRelative {
		rel, err := filepath.Rel(imagesDir, imgPath)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(imgPath)
}

// yoloBox is one parsed label line.
type yoloBox struct {
	Class        int
	XC, YC, W, H float64
}

// readLabelFile parses a YOLO label file into boxes. A missing file yields
// zero boxes. Lines that do not have exactly 5 or 6 whitespace-separated
// tokens, or whose tokens fail numeric parsing, are skipped; a trailing
// sixth token (confidence) is ignored.
func readLabelFile(path string) ([]yoloBox, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	var boxes []yoloBox
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 5 && len(parts) != 6 {
			continue
		}
		cls, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		vals := make([]float64, 4)
		ok := true
		for i := 0; i < 4; i++ {
			vals[i], err = strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		boxes = append(boxes, yoloBox{Class: cls, XC: vals[0], YC: vals[1], W: vals[2], H: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read label file %s: %w", path, err)
	}
	return boxes, nil
}

// yoloBoxToCOCO converts one normalized box to an absolute-pixel COCO bbox
// and area, clipping to the image bounds. When round is non-negative, each
// bbox component and the area are rounded independently to that many
// decimals after clipping.
func yoloBoxToCOCO(b yoloBox, dims probe.Dimensions, round int) ([4]float64, float64) {
	w := float64(dims.Width)
	h := float64(dims.Height)

	absW := b.W * w
	absH := b.H * h
	xMin := b.XC*w - absW/2
	yMin := b.YC*h - absH/2

	xMin = math.Max(0, xMin)
	yMin = math.Max(0, yMin)
	absW = math.Max(0, math.Min(absW, w-xMin))
	absH = math.Max(0, math.Min(absH, h-yMin))

	area := absW * absH
	bbox := [4]float64{xMin, yMin, absW, absH}
	if round >= 0 {
		for i := range bbox {
			bbox[i] = roundTo(bbox[i], round)
		}
		area = roundTo(area, round)
	}
	return bbox, area
}

// roundTo rounds v to n decimal places.
func roundTo(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}
