// Package inference - Model invocation boundary.
package inference

import (
	"context"

	"github.com/openvocab/go-grounding/grounding"
)

// Input is one preprocessed image plus its tokenized caption, ready to be
// bound to the model's input tensors.
type Input struct {
	// Pixels is the normalized CHW image tensor data.
	Pixels []float32
	// Height and Width are the network input dimensions of Pixels.
	Height int
	Width  int

	// TokenIDs, AttentionMask and TypeIDs encode the caption; all three
	// have the same length.
	TokenIDs      []int64
	AttentionMask []int64
	TypeIDs       []int64
}

// Engine is an opaque forward pass from an image and caption to raw
// detection output. The harness does not know or care about the model's
// internal architecture.
type Engine interface {
	Infer(ctx context.Context, input *Input) (*grounding.RawOutput, error)
	Close() error
}
