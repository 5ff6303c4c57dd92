package classifier

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func TestPreprocessShape(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"tiny", 1, 1},
		{"small square", 50, 50},
		{"crop size", 224, 224},
		{"resize size", 256, 256},
		{"large square", 1000, 1000},
		{"tall", 37, 911},
		{"wide", 911, 37},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := imaging.New(tc.w, tc.h, color.NRGBA{R: 120, G: 80, B: 200, A: 255})
			out, err := Preprocess(img)
			require.NoError(t, err)
			require.Len(t, out, 3*ImageSize*ImageSize)
			for _, v := range out {
				require.True(t, finite(v), "non-finite value %v", v)
			}
		})
	}
}

func TestPreprocessSolidWhite(t *testing.T) {
	out, err := Preprocess(imaging.New(64, 64, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	require.NoError(t, err)

	plane := ImageSize * ImageSize
	for c := 0; c < 3; c++ {
		want := (1.0 - ImagenetMean[c]) / ImagenetStd[c]
		for _, v := range out[c*plane : (c+1)*plane] {
			assert.InDelta(t, want, v, 1e-3)
		}
	}
}

func TestPreprocessGrayscaleReplicated(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	out, err := Preprocess(img)
	require.NoError(t, err)

	// Undoing the per-channel standardization must recover the same
	// underlying pixel value in every channel.
	plane := ImageSize * ImageSize
	for i := 0; i < plane; i++ {
		r := out[i]*ImagenetStd[0] + ImagenetMean[0]
		g := out[plane+i]*ImagenetStd[1] + ImagenetMean[1]
		b := out[2*plane+i]*ImagenetStd[2] + ImagenetMean[2]
		require.InDelta(t, r, g, 1e-3)
		require.InDelta(t, r, b, 1e-3)
	}
}

func TestPreprocessAlphaDropped(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 200, B: 90, A: 255})
		}
	}
	out, err := Preprocess(img)
	require.NoError(t, err)
	require.Len(t, out, 3*ImageSize*ImageSize)
	for _, v := range out {
		require.True(t, finite(v))
	}
}

func TestPreprocessZeroSize(t *testing.T) {
	_, err := Preprocess(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.ErrorIs(t, err, ErrInvalidImage)
}

func TestPreprocessDeterministic(t *testing.T) {
	img := imaging.New(123, 77, color.NRGBA{R: 42, G: 42, B: 42, A: 255})
	a, err := Preprocess(img)
	require.NoError(t, err)
	b, err := Preprocess(img)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
