package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestTrimWhitespace(t *testing.T) {
	img := whiteImage(100, 80)
	img.Set(20, 30, color.Black)
	img.Set(59, 49, color.RGBA{B: 200, A: 255})

	got := trimWhitespace(img, 5)

	assert.Equal(t, image.Rect(15, 25, 65, 55), got.Bounds())
}

func TestTrimWhitespace_PadClampedToBounds(t *testing.T) {
	img := whiteImage(10, 10)
	img.Set(0, 0, color.Black)

	got := trimWhitespace(img, 4)

	assert.Equal(t, image.Rect(0, 0, 5, 5), got.Bounds())
}

func TestTrimWhitespace_Blank(t *testing.T) {
	img := whiteImage(10, 10)
	assert.Equal(t, img.Bounds(), trimWhitespace(img, 2).Bounds())
}

func TestTrimWhitespace_GenericImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(3, 4, color.Gray{Y: 0})

	got := trimWhitespace(img, 0)
	assert.Equal(t, image.Rect(3, 4, 4, 5), got.Bounds())
}
