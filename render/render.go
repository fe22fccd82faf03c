// Package render - Draws detection results onto images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/openvocab/go-grounding/postprocess"
)

// Options control how detections are drawn and where the result goes.
type Options struct {
	// MaxBoxes limits how many of the top detections are drawn (0 = all).
	MaxBoxes int
	// OutputDir receives the annotated copy of the image.
	OutputDir string
	// ShowWindow opens a display window with the annotated image and
	// blocks until a key is pressed.
	ShowWindow bool
}

var boxColor = color.RGBA{0, 255, 0, 0}

// Draw annotates the image at imagePath with detection boxes and writes the
// result into the output directory as processed_<name>.
//
// Arguments:
//   - imagePath: Path to the original image.
//   - detections: Detections in pixel coordinates, best first.
//   - opts: Rendering options.
//
// Returns:
//   - string: Path of the annotated image.
//   - error: An error if reading or writing the image fails.
func Draw(imagePath string, detections []postprocess.Result, opts Options) (string, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return "", errors.Errorf("error reading image: %s", imagePath)
	}
	defer img.Close()

	n := len(detections)
	if opts.MaxBoxes > 0 && opts.MaxBoxes < n {
		n = opts.MaxBoxes
	}
	for _, det := range detections[:n] {
		rect := image.Rect(
			int(det.Box.X1), int(det.Box.Y1),
			int(det.Box.X2), int(det.Box.Y2),
		).Canon()
		gocv.Rectangle(&img, rect, boxColor, 3)
		label := fmt.Sprintf("%s %.2f", det.Label, det.Score)
		gocv.PutText(&img, label, rect.Min, gocv.FontHersheyPlain, 1.2, boxColor, 2)
	}

	outputPath := filepath.Join(opts.OutputDir, "processed_"+filepath.Base(imagePath))
	if !gocv.IMWrite(outputPath, img) {
		return "", errors.Errorf("failed to write annotated image to %s", outputPath)
	}

	if opts.ShowWindow {
		window := gocv.NewWindow("Detections")
		defer window.Close()
		window.IMShow(img)
		window.WaitKey(0)
	}

	return outputPath, nil
}
