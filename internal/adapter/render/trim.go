package render

import (
	"image"
	"image/color"
	imgdraw "image/draw"
)

// trimWhitespace crops img to the bounding box of non-background pixels plus
// pad pixels on every side. A blank image is returned unchanged.
func trimWhitespace(img image.Image, pad int) image.Image {
	b := img.Bounds()
	isBG := backgroundTest(img)

	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isBG(x, y) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return img
	}

	rect := image.Rect(minX-pad, minY-pad, maxX+1+pad, maxY+1+pad).Intersect(b)
	if s, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return s.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	imgdraw.Draw(out, out.Bounds(), img, rect.Min, imgdraw.Src)
	return out
}

// backgroundTest reports near-white or fully transparent pixels.
func backgroundTest(img image.Image) func(x, y int) bool {
	if rgba, ok := img.(*image.RGBA); ok {
		return func(x, y int) bool {
			i := rgba.PixOffset(x, y)
			p := rgba.Pix[i : i+4 : i+4]
			return p[3] == 0 || (p[0] >= 0xfe && p[1] >= 0xfe && p[2] >= 0xfe)
		}
	}
	return func(x, y int) bool {
		return isBackground(img.At(x, y))
	}
}

func isBackground(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return a == 0 || (r >= 0xfe00 && g >= 0xfe00 && b >= 0xfe00)
}
