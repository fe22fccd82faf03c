// Package images - Image geometry utilities.
package images

import "fmt"

// Rect is a lightweight bounding box in corner (xyxy) form.
type Rect struct {
	// X2,Y2 are exclusive edges, matching image.Rectangle semantics.
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the box.
func (r Rect) Area() float32 {
	return r.Width() * r.Height()
}

// String formats the box for logs.
func (r Rect) String() string {
	return fmt.Sprintf("(%.1f, %.1f)-(%.1f, %.1f)", r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU computes the Intersection over Union of two boxes.
//
// The intersection corners are the maximum of the top-left corners and the
// minimum of the bottom-right corners; a non-positive width or height means
// the boxes do not overlap. The union follows inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
