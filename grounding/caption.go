// Package grounding - Caption grounding for open-vocabulary detection.
//
// A detection model with a text encoder does not score fixed classes: it
// scores caption tokens. This package builds the caption from a category
// list, maps each category onto the token positions it owns, and projects
// the model's per-token logits back into per-category detections.
package grounding

import (
	"strings"

	"github.com/pkg/errors"
)

// Separator joins category phrases inside the model caption. The caption
// also ends with a bare separator so the final phrase is terminated the same
// way as the others.
const Separator = " . "

// Span is a half-open byte range [Start, End) inside a caption.
type Span struct {
	Start int
	End   int
}

// Caption couples the model text prompt with the byte span each category
// phrase owns inside it. Spans are in category order, so span i belongs to
// label index i.
type Caption struct {
	Text  string
	Spans []Span
}

// BuildCaption joins an ordered category list into a single caption,
// recording the byte range each category occupies. Phrases are lowercased
// and trimmed before joining.
//
// Arguments:
//   - categories: Ordered category phrases; order defines the label indices.
//
// Returns:
//   - *Caption: The caption text and per-category spans.
//   - error: An error if the list is empty or a phrase is blank.
func BuildCaption(categories []string) (*Caption, error) {
	if len(categories) == 0 {
		return nil, errors.New("no categories provided")
	}

	var sb strings.Builder
	spans := make([]Span, 0, len(categories))
	for i, cat := range categories {
		phrase := strings.ToLower(strings.TrimSpace(cat))
		if phrase == "" {
			return nil, errors.Errorf("category %d is empty after trimming", i)
		}
		if i > 0 {
			sb.WriteString(Separator)
		}
		start := sb.Len()
		sb.WriteString(phrase)
		spans = append(spans, Span{Start: start, End: sb.Len()})
	}
	sb.WriteString(" .")

	return &Caption{Text: sb.String(), Spans: spans}, nil
}
