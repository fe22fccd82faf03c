// Package postprocess - Non-Maximum Suppression for detection results.
package postprocess

import (
	"sync"

	"github.com/openvocab/go-grounding/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	Greedy       bool    // If true, use the sequential greedy variant.
	IoUThreshold float32 // Overlap threshold for suppression.
	ClassAware   bool    // If true, suppress only within the same class.
	NumWorkers   int     // Number of goroutines for parallel IoU computation.
}

// Apply runs the configured suppression variant over detections sorted by
// descending score.
func Apply(detections []Result, config *NMSConfig) []Result {
	if config.Greedy {
		return ApplyGreedyNMS(detections, config)
	}
	return ApplyNMS(detections, config)
}

// ApplyNMS filters overlapping detections, splitting the IoU checks for
// each kept anchor across NumWorkers goroutines. Falls back to the greedy
// variant when a single worker is configured.
//
// Arguments:
//   - detections: Slice of detections sorted by descending score.
//   - config: Suppression configuration.
//
// Returns:
//   - Filtered slice of detections. If no detections are provided, returns nil.
func ApplyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}
	workers := config.NumWorkers
	if workers <= 1 {
		return ApplyGreedyNMS(detections, config)
	}

	used := make([]bool, n)
	filtered := make([]Result, 0, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		remaining := n - i - 1
		if remaining == 0 {
			break
		}
		chunk := (remaining + workers - 1) / workers

		// Each worker owns a disjoint range of candidate indices, so the
		// used slice is written without contention.
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			lo := i + 1 + w*chunk
			if lo >= n {
				break
			}
			hi := min(lo+chunk, n)
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for j := lo; j < hi; j++ {
					if used[j] {
						continue
					}
					if config.ClassAware && anchor.Class != detections[j].Class {
						continue
					}
					if images.CalculateIoU(anchor.Box, detections[j].Box) > config.IoUThreshold {
						used[j] = true
					}
				}
			}(lo, hi)
		}
		wg.Wait()
	}

	return filtered
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Arguments:
//   - detections: Slice of detections sorted by descending score.
//   - config: Suppression configuration.
//
// Returns:
//   - Filtered slice of detections.
func ApplyGreedyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}

	filtered := make([]Result, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.ClassAware && anchor.Class != detections[j].Class {
				continue
			}

			// Suppress if IoU exceeds threshold.
			if images.CalculateIoU(anchor.Box, detections[j].Box) > config.IoUThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
