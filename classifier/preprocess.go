package classifier

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// ImageSize is the spatial size of the model input after center crop.
	ImageSize = 224
	// resizeEdge is the target length of the shorter side before the crop.
	resizeEdge = 256
)

// ImageNet per-channel normalization constants.
var (
	ImagenetMean = [3]float32{0.485, 0.456, 0.406}
	ImagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocess converts an arbitrary decoded image into the model input: the
// shorter side is scaled to 256 preserving aspect ratio, the centered 224x224
// region is cropped, and each channel is scaled to [0,1] and standardized
// with the ImageNet mean/std. The result is NCHW float32 data for a
// (1,3,224,224) tensor.
func Preprocess(img image.Image) ([]float32, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: zero-size image %dx%d", ErrInvalidImage, w, h)
	}

	if w <= h {
		img = imaging.Resize(img, resizeEdge, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, resizeEdge, imaging.Lanczos)
	}
	img = imaging.CropCenter(img, ImageSize, ImageSize)

	out := make([]float32, 3*ImageSize*ImageSize)
	rBase := 0
	gBase := ImageSize * ImageSize
	bBase := 2 * ImageSize * ImageSize

	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			fr := float32(r) / 65535.0
			fg := float32(g) / 65535.0
			fb := float32(b) / 65535.0

			out[rBase] = (fr - ImagenetMean[0]) / ImagenetStd[0]
			out[gBase] = (fg - ImagenetMean[1]) / ImagenetStd[1]
			out[bBase] = (fb - ImagenetMean[2]) / ImagenetStd[2]

			rBase++
			gBase++
			bBase++
		}
	}
	return out, nil
}
