package coco

// Image describes one image file referenced by a dataset.
type Image struct {
	// ID is the dataset-unique image identifier, assigned sequentially
	// starting at 1 in processing order.
	ID int `json:"id"`

	// FileName is either a bare basename or a slash-separated path relative
	// to the image root, depending on how the dataset was produced.
	FileName string `json:"file_name"`

	// Width is the image width in pixels. Must be positive.
	Width int `json:"width"`

	// Height is the image height in pixels. Must be positive.
	Height int `json:"height"`

	// License references a License.ID in the same dataset, or is nil when
	// the image carries no license.
	License *int `json:"license,omitempty"`
}

// Annotation is one object instance: an absolute-pixel bounding box tied to
// an image and a category in the same dataset.
type Annotation struct {
	// ID is the dataset-unique annotation identifier, assigned sequentially
	// starting at 1.
	ID int `json:"id"`

	// ImageID references an Image.ID in the same dataset.
	ImageID int `json:"image_id"`

	// CategoryID references a Category.ID in the same dataset.
	CategoryID int `json:"category_id"`

	// BBox is [x, y, width, height] in absolute pixels. Coordinates are
	// clipped to the image bounds; width and height are never negative.
	BBox [4]float64 `json:"bbox"`

	// Area is BBox width times height, in square pixels.
	Area float64 `json:"area"`

	// IsCrowd is 0 for a single instance or 1 for a crowd region.
	IsCrowd int `json:"iscrowd"`

	// Segmentation is always present and always empty; mask annotations are
	// not supported.
	Segmentation [][]float64 `json:"segmentation"`
}

// Category names one object class. Within a dataset the id is unique; the
// name need not be, but it is the semantic key when aligning datasets.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// License identifies an image license. Two licenses are considered the same
// when both name and url match.
type License struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Dataset is a complete COCO instances document.
type Dataset struct {
	Info        map[string]any `json:"info"`
	Licenses    []License      `json:"licenses"`
	Images      []Image        `json:"images"`
	Annotations []Annotation   `json:"annotations"`
	Categories  []Category     `json:"categories"`
}

// NewDataset returns an empty dataset with every collection initialized, so
// that serializing it yields [] for each list rather than null.
func NewDataset() *Dataset {
	return &Dataset{
		Info:        map[string]any{},
		Licenses:    []License{},
		Images:      []Image{},
		Annotations: []Annotation{},
		Categories:  []Category{},
	}
}

// NewAnnotation returns an annotation with the segmentation list initialized.
func NewAnnotation(id, imageID, categoryID int, bbox [4]float64, area float64) Annotation {
	return Annotation{
		ID:           id,
		ImageID:      imageID,
		CategoryID:   categoryID,
		BBox:         bbox,
		Area:         area,
		IsCrowd:      0,
		Segmentation: [][]float64{},
	}
}
