// Package merge combines multiple COCO instance datasets into one corpus.
//
// The first input's category table is canonical. Later inputs must either
// match it exactly or, when alignment is enabled, share the same category
// name set so ids can be mapped through names. Licenses are deduplicated by
// (name, url). Images and annotations are renumbered densely from 1 in
// strict input order, preserving each dataset's original image order and
// each image's original annotation order.
//
// Every failure aborts the whole merge; there is no partial output.
package merge
