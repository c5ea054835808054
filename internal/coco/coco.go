package coco

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and parses a COCO instances JSON file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	ds := NewDataset()
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	ds.normalize()
	return ds, nil
}

// Save writes the dataset as indented JSON, creating parent directories as
// needed.
func (d *Dataset) Save(path string) error {
	d.normalize()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// normalize replaces nil collections with empty ones so they marshal as []
// and so callers can range over them without nil checks.
func (d *Dataset) normalize() {
	if d.Info == nil {
		d.Info = map[string]any{}
	}
	if d.Licenses == nil {
		d.Licenses = []License{}
	}
	if d.Images == nil {
		d.Images = []Image{}
	}
	if d.Annotations == nil {
		d.Annotations = []Annotation{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	for i := range d.Annotations {
		if d.Annotations[i].Segmentation == nil {
			d.Annotations[i].Segmentation = [][]float64{}
		}
	}
}
