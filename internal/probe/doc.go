// Package probe resolves pixel dimensions for image files.
//
// Conversion from YOLO labels needs an absolute width and height for every
// image. Sizes come from two places, tried in order: an explicit CSV size
// table keyed by output file name, and a decoding probe that reads image
// headers from disk. The probe is modeled as the SizeResolver interface so
// the conversion core carries no hard dependency on any particular decoder
// and tests can substitute a fake.
package probe
