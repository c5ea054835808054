package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
)

// COCOToYOLOOptions configures a COCO to YOLO conversion.
type COCOToYOLOOptions struct {
	// Dataset is the source COCO dataset.
	Dataset *coco.Dataset

	// OutLabelsDir receives one .txt file per image, named by the image's
	// file-name stem. Created if absent.
	OutLabelsDir string

	// OutClassesPath receives the class-name list, one name per line in
	// class-index order.
	OutClassesPath string

	// KeepCategoryIDs emits COCO category ids verbatim as YOLO class
	// indices, which may leave gaps; gaps in the emitted name list are
	// back-filled with placeholder names. When false, ids are remapped to
	// dense 0..K-1 in ascending id order.
	KeepCategoryIDs bool

	// SkipEmptyLabels suppresses the label file for images with zero
	// qualifying annotations.
	SkipEmptyLabels bool
}

// COCOToYOLO writes YOLO label files and a class list for a COCO dataset.
//
// Crowd annotations (iscrowd == 1) have no YOLO equivalent and are excluded,
// as are annotations whose image_id does not resolve. Every image must carry
// positive width and height.
//
// Returns ErrEmptyDataset when the dataset has no images and
// ErrInvalidImageDimensions when an image lacks a usable size.
func COCOToYOLO(opts COCOToYOLOOptions) error {
	ds := opts.Dataset
	if len(ds.Images) == 0 {
		return ErrEmptyDataset
	}

	cats := ds.Categories
	if len(cats) == 0 {
		cats = synthesizeCategories(ds.Annotations)
	}

	classIndex, classNames := buildClassIndex(cats, opts.KeepCategoryIDs)

	if err := os.MkdirAll(opts.OutLabelsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create labels directory: %w", err)
	}

	// Group qualifying annotations by image, preserving annotation order.
	imagesByID := make(map[int]coco.Image, len(ds.Images))
	for _, img := range ds.Images {
		imagesByID[img.ID] = img
	}
	annsByImage := make(map[int][]coco.Annotation)
	for _, a := range ds.Annotations {
		if a.IsCrowd == 1 {
			continue
		}
		if _, ok := imagesByID[a.ImageID]; !ok {
			continue
		}
		annsByImage[a.ImageID] = append(annsByImage[a.ImageID], a)
	}

	for _, img := range ds.Images {
		if img.Width <= 0 || img.Height <= 0 {
			return fmt.Errorf("%w: image %s has size %dx%d", ErrInvalidImageDimensions, img.FileName, img.Width, img.Height)
		}

		var lines []string
		for _, a := range annsByImage[img.ID] {
			cls, ok := classIndex[a.CategoryID]
			if !ok {
				continue
			}
			xc, yc, w, h := cocoBoxToYOLO(a.BBox, img.Width, img.Height)
			lines = append(lines, fmt.Sprintf("%d %.6f %.6f %.6f %.6f", cls, xc, yc, w, h))
		}

		if len(lines) == 0 && opts.SkipEmptyLabels {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(img.FileName), filepath.Ext(img.FileName))
		out := filepath.Join(opts.OutLabelsDir, stem+".txt")
		if err := os.WriteFile(out, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
			return fmt.Errorf("failed to write label file: %w", err)
		}
	}

	return writeClassNames(opts.OutClassesPath, classNames)
}

// synthesizeCategories builds placeholder categories from the distinct
// category ids observed in annotations, sorted by id.
func synthesizeCategories(anns []coco.Annotation) []coco.Category {
	seen := make(map[int]bool)
	for _, a := range anns {
		seen[a.CategoryID] = true
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cats := make([]coco.Category, 0, len(ids))
	for _, id := range ids {
		cats = append(cats, coco.Category{ID: id, Name: fmt.Sprintf("category_%d", id)})
	}
	return cats
}

// buildClassIndex maps COCO category ids to YOLO class indices and returns
// the class-name list in index order.
//
// In keep mode the category id is the class index; the name list spans
// 0..max(id) and index gaps are back-filled with "category_<index>" so the
// emitted list has no holes. Otherwise ids are remapped densely to 0..K-1
// in ascending id order.
func buildClassIndex(cats []coco.Category, keep bool) (map[int]int, []string) {
	sorted := make([]coco.Category, len(cats))
	copy(sorted, cats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	index := make(map[int]int, len(sorted))

	if keep {
		maxID := 0
		for _, c := range sorted {
			index[c.ID] = c.ID
			if c.ID > maxID {
				maxID = c.ID
			}
		}
		names := make([]string, maxID+1)
		for _, c := range sorted {
			name := c.Name
			if name == "" {
				name = fmt.Sprintf("category_%d", c.ID)
			}
			names[c.ID] = name
		}
		for i, name := range names {
			if name == "" {
				names[i] = fmt.Sprintf("category_%d", i)
			}
		}
		return index, names
	}

	names := make([]string, 0, len(sorted))
	for i, c := range sorted {
		index[c.ID] = i
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("category_%d", c.ID)
		}
		names = append(names, name)
	}
	return index, names
}

// cocoBoxToYOLO converts an absolute-pixel xywh box to normalized center
// coordinates, clamping each component to [0,1].
func cocoBoxToYOLO(bbox [4]float64, width, height int) (xc, yc, w, h float64) {
	fw := float64(width)
	fh := float64(height)
	xc = clamp01((bbox[0] + bbox[2]/2) / fw)
	yc = clamp01((bbox[1] + bbox[3]/2) / fh)
	w = clamp01(bbox[2] / fw)
	h = clamp01(bbox[3] / fh)
	return xc, yc, w, h
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// writeClassNames writes one name per line, creating parent directories.
func writeClassNames(path string, names []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create classes directory: %w", err)
		}
	}
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write class names: %w", err)
	}
	return nil
}

// LoadClassNames reads a class-name list, one name per line from index 0.
// Blank lines are skipped entirely, shifting subsequent indices; callers
// must avoid them when index stability matters.
func LoadClassNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class names: %w", err)
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}
