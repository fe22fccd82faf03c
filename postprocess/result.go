// Package postprocess - Postprocessing utilities for detection results.
package postprocess

import "github.com/openvocab/go-grounding/images"

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result in pixel coordinates.
	Box images.Rect
	// The confidence score of the result.
	Score float32
	// The predicted category index of the result.
	Class int
	// The human-readable category phrase, when known.
	Label string
}
