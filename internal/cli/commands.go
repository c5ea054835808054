package cli

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
	"github.com/scott-vision/YOLO-COCO-Converter/internal/convert"
	"github.com/scott-vision/YOLO-COCO-Converter/internal/merge"
	"github.com/scott-vision/YOLO-COCO-Converter/internal/probe"
	"github.com/scott-vision/YOLO-COCO-Converter/internal/visual"
)

func runYOLOToCOCO(args []string) error {
	fs := flag.NewFlagSet("yolo2coco", flag.ContinueOnError)
	images := fs.String("images", "", "directory with images (required)")
	labels := fs.String("labels", "", "directory with YOLO .txt files (required)")
	classes := fs.String("classes", "", "path to classes.txt, one name per line")
	sizes := fs.String("sizes", "", "CSV size table: filename,width,height")
	out := fs.String("out", "", "output COCO JSON path (required)")
	bboxRound := fs.Int("bbox-round", 2, "round bbox/area to N decimals, negative disables")
	fileNameMode := fs.String("file-name-mode", "name", "file_name mode: name or relative")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *images == "" || *labels == "" || *out == "" {
		return fmt.Errorf("yolo2coco requires --images, --labels and --out")
	}

	var mode convert.FileNameMode
	switch *fileNameMode {
	case "name":
		mode = convert.FileNameBase
	case "relative":
		mode = convert.FileNameRelative
	default:
		return fmt.Errorf("invalid --file-name-mode %q: want name or relative", *fileNameMode)
	}

	opts := convert.YOLOToCOCOOptions{
		ImagesDir:    *images,
		LabelsDir:    *labels,
		BBoxRound:    *bboxRound,
		FileNameMode: mode,
		Resolver:     probe.DecodeResolver{},
	}
	if *classes != "" {
		names, err := convert.LoadClassNames(*classes)
		if err != nil {
			return err
		}
		opts.ClassNames = names
	}
	if *sizes != "" {
		table, err := probe.LoadSizeTable(*sizes)
		if err != nil {
			return err
		}
		opts.Sizes = table
	}

	ds, err := convert.YOLOToCOCO(opts)
	if err != nil {
		return err
	}
	if err := ds.Save(*out); err != nil {
		return err
	}
	fmt.Printf("Wrote COCO annotations to: %s\n", *out)
	return nil
}

func runCOCOToYOLO(args []string) error {
	fs := flag.NewFlagSet("coco2yolo", flag.ContinueOnError)
	cocoPath := fs.String("coco", "", "path to COCO instances JSON (required)")
	outLabels := fs.String("out-labels", "", "output directory for YOLO .txt labels (required)")
	outClasses := fs.String("out-classes", "", "output classes.txt path (required)")
	keepIDs := fs.Bool("keep-category-ids", false, "use COCO category ids as YOLO class indices (may be sparse)")
	skipEmpty := fs.Bool("skip-empty-labels", false, "do not write .txt files for images with no annotations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cocoPath == "" || *outLabels == "" || *outClasses == "" {
		return fmt.Errorf("coco2yolo requires --coco, --out-labels and --out-classes")
	}

	ds, err := coco.Load(*cocoPath)
	if err != nil {
		return err
	}
	err = convert.COCOToYOLO(convert.COCOToYOLOOptions{
		Dataset:         ds,
		OutLabelsDir:    *outLabels,
		OutClassesPath:  *outClasses,
		KeepCategoryIDs: *keepIDs,
		SkipEmptyLabels: *skipEmpty,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote YOLO labels to: %s\n", *outLabels)
	fmt.Printf("Wrote YOLO classes to: %s\n", *outClasses)
	return nil
}

func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	var inputs stringList
	var prefixes stringList
	fs.Var(&inputs, "input", "COCO instances JSON path, repeatable (required)")
	out := fs.String("out", "", "output merged JSON path (required)")
	prefixMode := fs.String("prefix-mode", "none", "file_name prefix mode: none, basename or custom")
	fs.Var(&prefixes, "prefix", "custom prefix, one per input, repeatable")
	alignByName := fs.Bool("align-by-name", false, "align differing category ids through matching names")
	dropDupes := fs.Bool("drop-duplicate-filenames", false, "keep only the first image per post-prefix file_name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(inputs) == 0 || *out == "" {
		return fmt.Errorf("merge requires at least one --input and --out")
	}

	var mode merge.PrefixMode
	switch *prefixMode {
	case "none":
		mode = merge.PrefixNone
	case "basename":
		mode = merge.PrefixBasename
	case "custom":
		mode = merge.PrefixCustom
	default:
		return fmt.Errorf("invalid --prefix-mode %q: want none, basename or custom", *prefixMode)
	}

	mergeInputs := make([]merge.Input, 0, len(inputs))
	for _, path := range inputs {
		ds, err := coco.Load(path)
		if err != nil {
			return err
		}
		mergeInputs = append(mergeInputs, merge.Input{Stem: stemOf(path), Dataset: ds})
	}

	merged, err := merge.Merge(mergeInputs, merge.Options{
		PrefixMode:             mode,
		CustomPrefixes:         prefixes,
		AlignByName:            *alignByName,
		DropDuplicateFilenames: *dropDupes,
	})
	if err != nil {
		return err
	}
	if err := merged.Save(*out); err != nil {
		return err
	}
	fmt.Printf("Merged %d datasets\n", len(mergeInputs))
	fmt.Printf("Images: %d | Annotations: %d | Categories: %d\n",
		len(merged.Images), len(merged.Annotations), len(merged.Categories))
	fmt.Printf("Wrote: %s\n", *out)
	return nil
}

func runVisualize(args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	cocoPath := fs.String("coco", "", "path to COCO instances JSON (required)")
	images := fs.String("images", "", "directory with the dataset's images (required)")
	out := fs.String("out", "", "output directory for annotated JPEGs (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cocoPath == "" || *images == "" || *out == "" {
		return fmt.Errorf("visualize requires --coco, --images and --out")
	}

	ds, err := coco.Load(*cocoPath)
	if err != nil {
		return err
	}
	rendered, err := visual.RenderDataset(ds, *images, *out)
	if err != nil {
		return err
	}
	fmt.Printf("Rendered %d of %d images to: %s\n", rendered, len(ds.Images), *out)
	return nil
}

// stemOf returns a path's base name without its extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
