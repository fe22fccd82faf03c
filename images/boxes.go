// Package images - Box encodings and coordinate transforms.
package images

// Size is an image size in pixels.
type Size struct {
	Height int
	Width  int
}

// CenterRect is a bounding box in center-size (cx, cy, w, h) form, the
// encoding detection transformers emit for box proposals.
type CenterRect struct {
	CX, CY, W, H float32
}

// ToXYXY converts a center-size box to corner form.
func (c CenterRect) ToXYXY() Rect {
	return Rect{
		X1: c.CX - c.W/2,
		Y1: c.CY - c.H/2,
		X2: c.CX + c.W/2,
		Y2: c.CY + c.H/2,
	}
}

// CenterFromXYXY converts a corner-form box back to center-size form.
func CenterFromXYXY(r Rect) CenterRect {
	return CenterRect{
		CX: (r.X1 + r.X2) / 2,
		CY: (r.Y1 + r.Y2) / 2,
		W:  r.X2 - r.X1,
		H:  r.Y2 - r.Y1,
	}
}

// Rescale maps a box in normalized [0,1] coordinates onto a pixel grid:
// x-coordinates scale by the width, y-coordinates by the height.
func Rescale(r Rect, size Size) Rect {
	w := float32(size.Width)
	h := float32(size.Height)
	return Rect{
		X1: r.X1 * w,
		Y1: r.Y1 * h,
		X2: r.X2 * w,
		Y2: r.Y2 * h,
	}
}

// Clamp restricts a pixel-space box to the image bounds.
func Clamp(r Rect, size Size) Rect {
	w := float32(size.Width)
	h := float32(size.Height)
	return Rect{
		X1: min(max(r.X1, 0), w),
		Y1: min(max(r.Y1, 0), h),
		X2: min(max(r.X2, 0), w),
		Y2: min(max(r.Y2, 0), h),
	}
}
