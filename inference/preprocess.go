// Package inference - Network input preparation.
package inference

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/openvocab/go-grounding/tokenize"
)

const (
	// resizeTarget is the shorter-side target for network input resizing.
	resizeTarget = 800
	// resizeMax caps the longer side after resizing.
	resizeMax = 1333
)

// ImageNet channel statistics used to normalize the pixel tensor.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// NetworkInputSize computes the resized network input dimensions for an
// image: the shorter side scales to 800 px, the longer side is capped at
// 1333 px, aspect ratio preserved.
//
// Arguments:
//   - width, height: The decoded image dimensions in pixels.
//
// Returns:
//   - int, int: The network input width and height.
//   - error: An error if the dimensions are not positive.
func NetworkInputSize(width, height int) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf("invalid image dimensions %dx%d", width, height)
	}

	shorter := min(width, height)
	longer := max(width, height)
	scale := float64(resizeTarget) / float64(shorter)
	if scale*float64(longer) > resizeMax {
		scale = float64(resizeMax) / float64(longer)
	}

	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return w, h, nil
}

// PrepareImageInput resizes and normalizes an image into a CHW float32
// tensor ready for the pixel values input.
//
// Arguments:
//   - img: The decoded image.
//
// Returns:
//   - []float32: The 3*h*w tensor data, channel-major.
//   - int, int: The network input width and height.
//   - error: An error if the image has invalid dimensions.
func PrepareImageInput(img image.Image) ([]float32, int, int, error) {
	bounds := img.Bounds()
	w, h, err := NetworkInputSize(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, 0, 0, err
	}

	// Resize using the Lanczos3 algorithm.
	resized := resize.Resize(uint(w), uint(h), img, resize.Lanczos3)

	channelSize := w * h
	data := make([]float32, channelSize*3)
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			red[i] = (float32(r>>8)/255.0 - channelMean[0]) / channelStd[0]
			green[i] = (float32(g>>8)/255.0 - channelMean[1]) / channelStd[1]
			blue[i] = (float32(b>>8)/255.0 - channelMean[2]) / channelStd[2]
			i++
		}
	}
	return data, w, h, nil
}

// BuildInput assembles the full network input from a decoded image and the
// caption token sequence.
func BuildInput(img image.Image, tokens []tokenize.Token) (*Input, error) {
	if len(tokens) == 0 {
		return nil, errors.New("empty caption token sequence")
	}

	data, w, h, err := PrepareImageInput(img)
	if err != nil {
		return nil, err
	}

	in := &Input{
		Pixels:        data,
		Width:         w,
		Height:        h,
		TokenIDs:      make([]int64, len(tokens)),
		AttentionMask: make([]int64, len(tokens)),
		TypeIDs:       make([]int64, len(tokens)),
	}
	for i, tok := range tokens {
		in.TokenIDs[i] = tok.ID
		in.AttentionMask[i] = 1
	}
	return in, nil
}
