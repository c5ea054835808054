package cli

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
)

// writePNG writes a blank PNG image of the given size.
func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunUnknownCommand(t *testing.T) {
	assert.Error(t, Run([]string{"bogus"}))
	assert.Error(t, Run(nil))
}

func TestRunYOLO2COCOEndToEnd(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	labelsDir := filepath.Join(dir, "labels")
	out := filepath.Join(dir, "out", "coco.json")

	writePNG(t, filepath.Join(imagesDir, "a.png"), 100, 100)
	writeFile(t, filepath.Join(labelsDir, "a.txt"), "0 0.5 0.5 0.2 0.4\n")

	err := Run([]string{"yolo2coco",
		"--images", imagesDir,
		"--labels", labelsDir,
		"--out", out,
	})
	require.NoError(t, err)

	ds, err := coco.Load(out)
	require.NoError(t, err)
	require.Len(t, ds.Images, 1)
	require.Len(t, ds.Annotations, 1)
	assert.Equal(t, [4]float64{40, 30, 20, 40}, ds.Annotations[0].BBox)
}

func TestRunYOLO2COCOWithSizesAndClasses(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	labelsDir := filepath.Join(dir, "labels")

	// Stub image: the size table must cover it since it cannot be decoded.
	writeFile(t, filepath.Join(imagesDir, "a.jpg"), "stub")
	writeFile(t, filepath.Join(labelsDir, "a.txt"), "1 0.5 0.5 0.2 0.2\n")
	writeFile(t, filepath.Join(dir, "classes.txt"), "cat\ndog\n")
	writeFile(t, filepath.Join(dir, "sizes.csv"), "a.jpg,200,100\n")

	out := filepath.Join(dir, "coco.json")
	err := Run([]string{"yolo2coco",
		"--images", imagesDir,
		"--labels", labelsDir,
		"--classes", filepath.Join(dir, "classes.txt"),
		"--sizes", filepath.Join(dir, "sizes.csv"),
		"--out", out,
	})
	require.NoError(t, err)

	ds, err := coco.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 200, ds.Images[0].Width)
	assert.Equal(t, []coco.Category{{ID: 0, Name: "cat"}, {ID: 1, Name: "dog"}}, ds.Categories)
	assert.Equal(t, 1, ds.Annotations[0].CategoryID)
}

func TestRunYOLO2COCOMissingFlags(t *testing.T) {
	assert.Error(t, Run([]string{"yolo2coco", "--images", "x"}))
	assert.Error(t, Run([]string{"yolo2coco", "--images", "x", "--labels", "y", "--out", "z", "--file-name-mode", "bogus"}))
}

func TestRunCOCO2YOLOEndToEnd(t *testing.T) {
	dir := t.TempDir()

	ds := coco.NewDataset()
	ds.Images = []coco.Image{{ID: 1, FileName: "a.jpg", Width: 100, Height: 100}}
	ds.Categories = []coco.Category{{ID: 0, Name: "cat"}}
	ds.Annotations = []coco.Annotation{coco.NewAnnotation(1, 1, 0, [4]float64{40, 30, 20, 40}, 800)}
	cocoPath := filepath.Join(dir, "coco.json")
	require.NoError(t, ds.Save(cocoPath))

	labelsDir := filepath.Join(dir, "labels")
	classesPath := filepath.Join(dir, "classes.txt")
	err := Run([]string{"coco2yolo",
		"--coco", cocoPath,
		"--out-labels", labelsDir,
		"--out-classes", classesPath,
	})
	require.NoError(t, err)

	label, err := os.ReadFile(filepath.Join(labelsDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0 0.500000 0.500000 0.200000 0.400000", string(label))

	classes, err := os.ReadFile(classesPath)
	require.NoError(t, err)
	assert.Equal(t, "cat\n", string(classes))
}

func TestRunMergeEndToEnd(t *testing.T) {
	dir := t.TempDir()

	mk := func(name, fileName string) string {
		ds := coco.NewDataset()
		ds.Categories = []coco.Category{{ID: 0, Name: "cat"}}
		ds.Images = []coco.Image{{ID: 1, FileName: fileName, Width: 10, Height: 10}}
		ds.Annotations = []coco.Annotation{coco.NewAnnotation(1, 1, 0, [4]float64{1, 1, 2, 2}, 4)}
		path := filepath.Join(dir, name)
		require.NoError(t, ds.Save(path))
		return path
	}
	in1 := mk("train.json", "a.jpg")
	in2 := mk("val.json", "a.jpg")

	out := filepath.Join(dir, "merged.json")
	err := Run([]string{"merge",
		"--input", in1,
		"--input", in2,
		"--out", out,
		"--prefix-mode", "basename",
	})
	require.NoError(t, err)

	merged, err := coco.Load(out)
	require.NoError(t, err)
	require.Len(t, merged.Images, 2)
	assert.Equal(t, "train_a.jpg", merged.Images[0].FileName)
	assert.Equal(t, "val_a.jpg", merged.Images[1].FileName)
	assert.Equal(t, 2, merged.Annotations[1].ImageID)
}

func TestRunMergeFailureWritesNoOutput(t *testing.T) {
	dir := t.TempDir()

	ds1 := coco.NewDataset()
	ds1.Categories = []coco.Category{{ID: 0, Name: "cat"}}
	in1 := filepath.Join(dir, "a.json")
	require.NoError(t, ds1.Save(in1))

	ds2 := coco.NewDataset() // no categories
	in2 := filepath.Join(dir, "b.json")
	require.NoError(t, ds2.Save(in2))

	out := filepath.Join(dir, "merged.json")
	err := Run([]string{"merge", "--input", in1, "--input", in2, "--out", out})
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunVisualizeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	writePNG(t, filepath.Join(imagesDir, "a.png"), 50, 50)

	ds := coco.NewDataset()
	ds.Categories = []coco.Category{{ID: 0, Name: "cat"}}
	ds.Images = []coco.Image{{ID: 1, FileName: "a.png", Width: 50, Height: 50}}
	ds.Annotations = []coco.Annotation{coco.NewAnnotation(1, 1, 0, [4]float64{5, 5, 20, 20}, 400)}
	cocoPath := filepath.Join(dir, "coco.json")
	require.NoError(t, ds.Save(cocoPath))

	outDir := filepath.Join(dir, "annotated")
	err := Run([]string{"visualize", "--coco", cocoPath, "--images", imagesDir, "--out", outDir})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "a_annotated.jpg"))
	assert.NoError(t, err)
}

func TestStringListFlag(t *testing.T) {
	var s stringList
	require.NoError(t, s.Set("a"))
	require.NoError(t, s.Set("b"))
	assert.Equal(t, []string{"a", "b"}, []string(s))
	assert.Equal(t, "a,b", s.String())
}
