// Package coco defines the COCO instances data model and its JSON form.
//
// The model covers object-detection datasets only: images, absolute-pixel
// bounding-box annotations, categories, and licenses. Segmentation masks and
// keypoints are out of scope; the segmentation field exists solely so that
// emitted annotations carry the conventional empty list.
//
// # Identifier Conventions
//
// Within one dataset, image ids, annotation ids, and category ids are each
// unique. Datasets produced by this module number images and annotations
// densely from 1 in processing order; category ids follow whatever class
// table produced them and may be sparse.
//
// # JSON Interchange
//
// Load and Save handle the on-disk interchange format. Empty collections are
// always written as [] rather than null so downstream COCO tooling does not
// trip over missing keys.
package coco
