package overlay

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

func newOpaqueBlack(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func fillRect(img *image.NRGBA, x, y, w, h int, fill color.NRGBA) {
	bounds := img.Bounds()
	x0 := clamp(x, bounds.Min.X, bounds.Max.X)
	y0 := clamp(y, bounds.Min.Y, bounds.Max.Y)
	x1 := clamp(x+w, bounds.Min.X, bounds.Max.X)
	y1 := clamp(y+h, bounds.Min.Y, bounds.Max.Y)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			img.SetNRGBA(px, py, fill)
		}
	}
}

// drawHorizontalLine paints a full-width stroke centered on y.
func drawHorizontalLine(img *image.NRGBA, y, stroke int, fill color.NRGBA) {
	if stroke < 1 {
		stroke = 1
	}
	bounds := img.Bounds()
	y0 := clamp(y, bounds.Min.Y, bounds.Max.Y)
	y1 := clamp(y+stroke, bounds.Min.Y, bounds.Max.Y)
	for py := y0; py < y1; py++ {
		for px := bounds.Min.X; px < bounds.Max.X; px++ {
			img.SetNRGBA(px, py, fill)
		}
	}
}

func fillCircle(img *image.NRGBA, cx, cy, radius int, fill color.NRGBA) {
	if radius < 1 {
		return
	}
	bounds := img.Bounds()
	y0 := clamp(cy-radius, bounds.Min.Y, bounds.Max.Y)
	y1 := clamp(cy+radius+1, bounds.Min.Y, bounds.Max.Y)
	rr := radius * radius
	for py := y0; py < y1; py++ {
		dy := py - cy
		for px := clamp(cx-radius, bounds.Min.X, bounds.Max.X); px < clamp(cx+radius+1, bounds.Min.X, bounds.Max.X); px++ {
			dx := px - cx
			if dx*dx+dy*dy <= rr {
				img.SetNRGBA(px, py, fill)
			}
		}
	}
}

func upscaleNearest(src *image.NRGBA, width, height int) *image.NRGBA {
	return upscale(src, width, height, xdraw.NearestNeighbor)
}

func upscaleBilinear(src *image.NRGBA, width, height int) *image.NRGBA {
	return upscale(src, width, height, xdraw.BiLinear)
}

func upscale(src *image.NRGBA, width, height int, scaler xdraw.Scaler) *image.NRGBA {
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
