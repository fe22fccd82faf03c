// Package grounding - Category-to-token projection.
package grounding

import (
	"github.com/pkg/errors"

	"github.com/openvocab/go-grounding/tokenize"
)

// PositiveMap links caption token positions to category indices. It is a
// dense (categories x width) float32 matrix: row c is a normalized indicator
// over the model's text width, with 1/n at each of the n token positions
// inside category c's caption span and 0 elsewhere.
//
// The map is built once per category list, before any image is processed,
// and is read-only afterwards.
type PositiveMap struct {
	categories int
	width      int
	data       []float32 // categories*width, row-major
}

// NewPositiveMap builds the category-to-token projection for a caption.
//
// Every token whose byte range overlaps a category's span is marked in that
// category's row; marked entries are normalized to sum to 1. Construction
// failures are configuration errors and must abort the run before any
// inference happens.
//
// Arguments:
//   - caption: The caption with per-category spans, from BuildCaption.
//   - tokens: The caption tokenized by the model's own tokenizer.
//   - width: The token vocabulary width of the model's detection logits.
//
// Returns:
//   - *PositiveMap: The immutable projection matrix.
//   - error: An error if the width is invalid, the caption does not fit the
//     width, or a category maps to no token.
func NewPositiveMap(caption *Caption, tokens []tokenize.Token, width int) (*PositiveMap, error) {
	if width <= 0 {
		return nil, errors.Errorf("text width must be positive, got %d", width)
	}
	if len(tokens) > width {
		return nil, errors.Errorf(
			"caption tokenizes to %d tokens, model text width is only %d", len(tokens), width)
	}

	pm := &PositiveMap{
		categories: len(caption.Spans),
		width:      width,
		data:       make([]float32, len(caption.Spans)*width),
	}

	for c, span := range caption.Spans {
		row := pm.data[c*width : (c+1)*width]
		marked := 0
		for i, tok := range tokens {
			if tok.Empty() {
				continue
			}
			if tok.End <= span.Start || tok.Start >= span.End {
				continue
			}
			row[i] = 1
			marked++
		}
		if marked == 0 {
			return nil, errors.Errorf(
				"category %d (%q) has no tokens inside its caption span",
				c, caption.Text[span.Start:span.End])
		}
		norm := 1 / float32(marked)
		for i := range row {
			if row[i] != 0 {
				row[i] = norm
			}
		}
	}

	return pm, nil
}

// Categories returns the number of rows.
func (m *PositiveMap) Categories() int {
	return m.categories
}

// Width returns the token vocabulary width (number of columns).
func (m *PositiveMap) Width() int {
	return m.width
}

// Row returns category c's normalized token indicator. The returned slice
// aliases the map's storage and must not be mutated.
func (m *PositiveMap) Row(c int) []float32 {
	return m.data[c*m.width : (c+1)*m.width]
}
