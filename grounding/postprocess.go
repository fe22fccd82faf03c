// Package grounding - Score projection and top-K selection.
package grounding

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/openvocab/go-grounding/images"
	"github.com/openvocab/go-grounding/postprocess"
)

// RawOutput holds the raw tensors produced by one forward pass: per-query
// detection logits over the text width, and box proposals in normalized
// center-size form.
type RawOutput struct {
	// Logits is NumQueries*TextWidth pre-sigmoid scores, row-major.
	Logits []float32
	// Boxes is NumQueries*4 (cx, cy, w, h) values in [0,1].
	Boxes []float32
	// NumQueries is the number of candidate detections.
	NumQueries int
	// TextWidth is the token vocabulary width of Logits.
	TextWidth int
}

// Results are the top-K detections for one image: three parallel sequences
// of equal length, ordered by descending score.
type Results struct {
	Scores []float32
	Labels []int
	Boxes  []images.Rect
}

// Len returns the number of selected detections.
func (r *Results) Len() int {
	return len(r.Scores)
}

// Items converts the parallel result sequences into detection results,
// attaching the human-readable category phrase when one is available.
func (r *Results) Items(categories []string) []postprocess.Result {
	items := make([]postprocess.Result, len(r.Scores))
	for i := range r.Scores {
		var label string
		if r.Labels[i] >= 0 && r.Labels[i] < len(categories) {
			label = categories[r.Labels[i]]
		}
		items[i] = postprocess.Result{
			Box:   r.Boxes[i],
			Score: r.Scores[i],
			Class: r.Labels[i],
			Label: label,
		}
	}
	return items
}

// PostProcess converts one image's raw model output into the top-K scored
// detections in absolute pixel coordinates.
//
// Per-token logits pass through the logistic transform, are projected onto
// categories through the positive map transpose, and the K highest-scoring
// (query, category) pairs are selected globally. The selected queries' box
// proposals are converted from center-size to corner form and rescaled to
// the target size. Ties between equal scores select in unspecified order.
//
// The function is pure: it mutates neither the output nor the positive map.
//
// Arguments:
//   - out: Raw model output for one image.
//   - pm: The precomputed category-to-token projection.
//   - target: Pixel dimensions of the image the boxes are evaluated on,
//     which is the original image size, not the resized network input.
//   - k: The number of (query, category) pairs to select.
//
// Returns:
//   - *Results: Parallel scores, labels and boxes of length k, scores
//     descending.
//   - error: An error on any shape or argument mismatch.
func PostProcess(out *RawOutput, pm *PositiveMap, target images.Size, k int) (*Results, error) {
	if out == nil {
		return nil, errors.New("nil model output")
	}
	if pm == nil {
		return nil, errors.New("nil positive map")
	}
	if out.NumQueries <= 0 {
		return nil, errors.Errorf("invalid query count %d", out.NumQueries)
	}
	if out.TextWidth != pm.Width() {
		return nil, errors.Errorf(
			"logits width %d does not match positive map width %d", out.TextWidth, pm.Width())
	}
	if len(out.Logits) != out.NumQueries*out.TextWidth {
		return nil, errors.Errorf(
			"logits length %d, want %d (%d queries x %d tokens)",
			len(out.Logits), out.NumQueries*out.TextWidth, out.NumQueries, out.TextWidth)
	}
	if len(out.Boxes) != out.NumQueries*4 {
		return nil, errors.Errorf(
			"boxes length %d, want %d (%d queries x 4)",
			len(out.Boxes), out.NumQueries*4, out.NumQueries)
	}
	if target.Width <= 0 || target.Height <= 0 {
		return nil, errors.Errorf("invalid target size %dx%d", target.Width, target.Height)
	}

	q := out.NumQueries
	c := pm.Categories()
	if k <= 0 || k > q*c {
		return nil, errors.Errorf("selection count %d out of range [1, %d]", k, q*c)
	}

	// Project token probabilities onto categories: for each query, sigmoid
	// over the logits row, then a dot product with every positive map row.
	scores := make([]float32, q*c)
	probs := make([]float32, out.TextWidth)
	for qi := 0; qi < q; qi++ {
		row := out.Logits[qi*out.TextWidth : (qi+1)*out.TextWidth]
		for i, v := range row {
			probs[i] = sigmoid(v)
		}
		for ci := 0; ci < c; ci++ {
			var s float32
			for i, w := range pm.Row(ci) {
				if w != 0 {
					s += probs[i] * w
				}
			}
			scores[qi*c+ci] = s
		}
	}

	// Global top-K over the flattened (query, category) score matrix.
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})

	res := &Results{
		Scores: make([]float32, k),
		Labels: make([]int, k),
		Boxes:  make([]images.Rect, k),
	}
	for i := 0; i < k; i++ {
		flat := idx[i]
		qi := flat / c
		ci := flat % c

		b := out.Boxes[qi*4 : qi*4+4]
		box := images.CenterRect{CX: b[0], CY: b[1], W: b[2], H: b[3]}.ToXYXY()

		res.Scores[i] = scores[flat]
		res.Labels[i] = ci
		res.Boxes[i] = images.Rescale(box, target)
	}
	return res, nil
}

// sigmoid is the elementwise logistic transform applied to raw logits.
func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
