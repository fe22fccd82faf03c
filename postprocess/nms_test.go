package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvocab/go-grounding/images"
)

// overlappingDetections returns three detections sorted by descending score:
// the second heavily overlaps the first (IoU ~0.68), the third is disjoint.
func overlappingDetections() []Result {
	return []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.9, Class: 0, Label: "cat"},
		{Box: images.Rect{X1: 10, Y1: 10, X2: 110, Y2: 110}, Score: 0.8, Class: 0, Label: "cat"},
		{Box: images.Rect{X1: 200, Y1: 200, X2: 300, Y2: 300}, Score: 0.7, Class: 1, Label: "dog"},
	}
}

// TestApplyGreedyNMSSuppressesOverlaps validates the basic suppression
// behavior: overlapping lower-scored boxes drop, disjoint boxes survive.
func TestApplyGreedyNMSSuppressesOverlaps(t *testing.T) {
	config := &NMSConfig{IoUThreshold: 0.5}

	results := ApplyGreedyNMS(overlappingDetections(), config)

	require.Len(t, results, 2, "the overlapping box should be suppressed")
	assert.Equal(t, float32(0.9), results[0].Score)
	assert.Equal(t, float32(0.7), results[1].Score)
}

// TestApplyGreedyNMSClassAware verifies that class-aware suppression keeps
// overlapping boxes of different classes.
func TestApplyGreedyNMSClassAware(t *testing.T) {
	detections := overlappingDetections()
	detections[1].Class = 1
	detections[1].Label = "dog"

	config := &NMSConfig{IoUThreshold: 0.5, ClassAware: true}
	results := ApplyGreedyNMS(detections, config)

	require.Len(t, results, 3, "different classes must not suppress each other")
}

// TestApplyGreedyNMSKeepsBelowThreshold verifies boxes under the IoU
// threshold are never suppressed.
func TestApplyGreedyNMSKeepsBelowThreshold(t *testing.T) {
	config := &NMSConfig{IoUThreshold: 0.7}

	results := ApplyGreedyNMS(overlappingDetections(), config)

	require.Len(t, results, 3, "IoU ~0.68 is under the 0.7 threshold")
}

// TestApplyNMSMatchesGreedy verifies the parallel variant produces the same
// filtered set as the sequential one.
func TestApplyNMSMatchesGreedy(t *testing.T) {
	detections := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}, Score: 0.95, Class: 0},
		{Box: images.Rect{X1: 5, Y1: 5, X2: 105, Y2: 105}, Score: 0.9, Class: 0},
		{Box: images.Rect{X1: 50, Y1: 50, X2: 150, Y2: 150}, Score: 0.85, Class: 0},
		{Box: images.Rect{X1: 200, Y1: 0, X2: 300, Y2: 100}, Score: 0.8, Class: 1},
		{Box: images.Rect{X1: 205, Y1: 5, X2: 305, Y2: 105}, Score: 0.75, Class: 1},
		{Box: images.Rect{X1: 400, Y1: 400, X2: 500, Y2: 500}, Score: 0.7, Class: 0},
	}

	config := &NMSConfig{IoUThreshold: 0.5, NumWorkers: 4}
	parallel := ApplyNMS(detections, config)
	greedy := ApplyGreedyNMS(detections, config)

	assert.Equal(t, greedy, parallel)
}

// TestApplyNMSEmptyInput verifies nil comes back for no detections.
func TestApplyNMSEmptyInput(t *testing.T) {
	config := &NMSConfig{IoUThreshold: 0.5, NumWorkers: 2}
	assert.Nil(t, ApplyNMS(nil, config))
	assert.Nil(t, ApplyGreedyNMS(nil, config))
}

// TestApplyDispatch verifies the variant selection on the config.
func TestApplyDispatch(t *testing.T) {
	detections := overlappingDetections()

	greedy := Apply(detections, &NMSConfig{IoUThreshold: 0.5, Greedy: true})
	parallel := Apply(detections, &NMSConfig{IoUThreshold: 0.5, NumWorkers: 4})

	assert.Equal(t, greedy, parallel)
	require.Len(t, greedy, 2)
}
