package convert

import "errors"

// Fatal conversion errors. All abort the whole operation with no partial
// output; match with errors.Is.
var (
	// ErrNoImagesFound reports an image root containing zero raster files.
	ErrNoImagesFound = errors.New("no images found")

	// ErrMissingImageSize reports an image whose dimensions could not be
	// resolved from the size table or the size resolver.
	ErrMissingImageSize = errors.New("missing image size")

	// ErrEmptyDataset reports a COCO dataset with zero images.
	ErrEmptyDataset = errors.New("dataset has no images")

	// ErrInvalidImageDimensions reports an image record without positive
	// width and height; inverse geometry is undefined without them.
	ErrInvalidImageDimensions = errors.New("invalid image dimensions")
)
