// Package convert transforms object-detection annotations between the YOLO
// label format and the COCO instances format.
//
// # Formats
//
// YOLO labels are one text file per image, each line holding a class index
// and a box center/size normalized to [0,1] relative to the image
// dimensions. COCO instances are a single JSON aggregate of images,
// absolute-pixel boxes, and categories.
//
// # Coordinate Transform
//
// YOLO to COCO multiplies normalized values by the image size and shifts the
// center to the top-left corner, clipping the result to the image bounds.
// COCO to YOLO is the inverse, with each normalized component clamped to
// [0,1]. Rounding of COCO coordinates is cosmetic and applied after
// clipping.
//
// # Error Policy
//
// Structural problems are fatal: an empty image root, an unresolvable image
// size, a missing or non-positive width/height, a dataset without images.
// Per-record problems are not: malformed label lines and annotations whose
// image reference does not resolve are silently skipped. This asymmetry is
// deliberate — the tool is best-effort toward malformed records but never
// guesses at configuration.
package convert
