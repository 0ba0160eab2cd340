package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"uniqvid/internal/profile"
)

// Kind identifies one of the five element families.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindNoise     Kind = "noise"
	KindLines     Kind = "lines"
	KindCircles   Kind = "circle"
	KindGradient  Kind = "gradient"
)

var kinds = []Kind{KindRectangle, KindNoise, KindLines, KindCircles, KindGradient}

// Direction orients a gradient ramp.
type Direction string

const (
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
	DirectionDiagonal   Direction = "diagonal"
)

// gridEdge is the approximate long-edge size of the downscaled grid used for
// noise and gradient rendering.
const gridEdge = 480

// Rectangle is a solid block at a fixed position inside the frame.
type Rectangle struct {
	W, H int
	X, Y int
	Fill color.NRGBA
}

// Noise is uniform RGB noise generated on a reduced grid.
type Noise struct {
	GridW, GridH int
	Seed         int64
}

// Line is one horizontal stroke.
type Line struct {
	Y      int
	Stroke int
	Fill   color.NRGBA
}

// Lines is a set of near-white horizontal strokes.
type Lines struct {
	Segments []Line
}

// Circle is one filled disk.
type Circle struct {
	X, Y   int
	Radius int
	Fill   color.NRGBA
}

// Circles is a set of light-gray filled disks.
type Circles struct {
	Disks []Circle
}

// Gradient is a grayscale ramp generated on a reduced grid.
type Gradient struct {
	Direction    Direction
	GridW, GridH int
}

// Element is the sampled variant: exactly one geometry field matching Kind is
// populated. Opacity is the effective compositing opacity after the
// kind-specific scaling has been applied.
type Element struct {
	Kind    Kind
	Opacity float64

	Rect     *Rectangle
	Noise    *Noise
	Lines    *Lines
	Circles  *Circles
	Gradient *Gradient
}

// PickKind selects an element kind uniformly. Frames with either dimension
// below 2 pixels always get a rectangle; the other kinds cannot build their
// reduced grids or geometry there.
func PickKind(s *profile.Sampler, width, height int) Kind {
	if width < 2 || height < 2 {
		return KindRectangle
	}
	return kinds[s.IntN(0, len(kinds))]
}

// Sample draws an element for a width×height frame. The opacity argument is
// the raw profile draw; lines and gradient kinds scale it down per contract.
func Sample(s *profile.Sampler, width, height int, opacity float64) Element {
	kind := PickKind(s, width, height)
	switch kind {
	case KindRectangle:
		return Element{Kind: kind, Opacity: opacity, Rect: sampleRectangle(s, width, height)}
	case KindNoise:
		gw, gh := gridSize(width, height)
		return Element{Kind: kind, Opacity: opacity, Noise: &Noise{GridW: gw, GridH: gh, Seed: int64(s.IntN(0, 1<<30))}}
	case KindLines:
		return Element{Kind: kind, Opacity: opacity * 0.7, Lines: sampleLines(s, height)}
	case KindCircles:
		return Element{Kind: kind, Opacity: opacity, Circles: sampleCircles(s, width, height)}
	case KindGradient:
		return Element{Kind: kind, Opacity: opacity * 0.5, Gradient: sampleGradient(s, width, height)}
	default:
		panic(fmt.Sprintf("overlay: unknown kind %q", kind))
	}
}

func sampleRectangle(s *profile.Sampler, width, height int) *Rectangle {
	w := s.IntN(50, maxInt(51, width/2))
	h := s.IntN(50, maxInt(51, height/2))
	return &Rectangle{
		W: w,
		H: h,
		X: s.IntN(0, maxInt(1, width-w)),
		Y: s.IntN(0, maxInt(1, height-h)),
		Fill: color.NRGBA{
			R: uint8(s.IntN(0, 255)),
			G: uint8(s.IntN(0, 255)),
			B: uint8(s.IntN(0, 255)),
			A: 255,
		},
	}
}

func sampleLines(s *profile.Sampler, height int) *Lines {
	count := s.IntN(3, 8)
	segments := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		shade := uint8(s.IntN(200, 255))
		segments = append(segments, Line{
			Y:      s.IntN(0, height),
			Stroke: s.IntN(1, 5),
			Fill:   color.NRGBA{R: shade, G: shade, B: shade, A: 255},
		})
	}
	return &Lines{Segments: segments}
}

func sampleCircles(s *profile.Sampler, width, height int) *Circles {
	count := s.IntN(2, 5)
	disks := make([]Circle, 0, count)
	for i := 0; i < count; i++ {
		shade := uint8(s.IntN(150, 255))
		disks = append(disks, Circle{
			X:      s.IntN(0, width),
			Y:      s.IntN(0, height),
			Radius: s.IntN(20, maxInt(21, minInt(width, height)/4)),
			Fill:   color.NRGBA{R: shade, G: shade, B: shade, A: 255},
		})
	}
	return &Circles{Disks: disks}
}

func sampleGradient(s *profile.Sampler, width, height int) *Gradient {
	gw, gh := gridSize(width, height)
	direction := DirectionHorizontal
	if gw > 1 && gh > 1 {
		switch s.IntN(0, 3) {
		case 0:
			direction = DirectionHorizontal
		case 1:
			direction = DirectionVertical
		default:
			direction = DirectionDiagonal
		}
	}
	return &Gradient{Direction: direction, GridW: gw, GridH: gh}
}

// Buffer is a rendered element ready for compositing.
type Buffer struct {
	Image   *image.NRGBA
	Opacity float64
}

// Render rasterizes the element to a full width×height RGBA buffer. The
// rectangle kind stays transparent outside its block; the remaining kinds
// cover the whole frame, matching the compositing contract where the global
// opacity blends them over the video.
func (e Element) Render(width, height int) (*Buffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("overlay: invalid frame size %dx%d", width, height)
	}
	var img *image.NRGBA
	switch e.Kind {
	case KindRectangle:
		img = renderRectangle(width, height, e.Rect)
	case KindNoise:
		img = renderNoise(width, height, e.Noise)
	case KindLines:
		img = renderLines(width, height, e.Lines)
	case KindCircles:
		img = renderCircles(width, height, e.Circles)
	case KindGradient:
		img = renderGradient(width, height, e.Gradient)
	default:
		return nil, fmt.Errorf("overlay: unknown kind %q", e.Kind)
	}
	return &Buffer{Image: img, Opacity: e.Opacity}, nil
}

func renderRectangle(width, height int, spec *Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillRect(img, spec.X, spec.Y, spec.W, spec.H, spec.Fill)
	return img
}

func renderNoise(width, height int, spec *Noise) *image.NRGBA {
	rng := rand.New(rand.NewSource(spec.Seed))
	small := image.NewNRGBA(image.Rect(0, 0, spec.GridW, spec.GridH))
	for y := 0; y < spec.GridH; y++ {
		for x := 0; x < spec.GridW; x++ {
			offset := small.PixOffset(x, y)
			small.Pix[offset+0] = uint8(rng.Intn(256))
			small.Pix[offset+1] = uint8(rng.Intn(256))
			small.Pix[offset+2] = uint8(rng.Intn(256))
			small.Pix[offset+3] = 255
		}
	}
	return upscaleNearest(small, width, height)
}

func renderLines(width, height int, spec *Lines) *image.NRGBA {
	img := newOpaqueBlack(width, height)
	for _, line := range spec.Segments {
		drawHorizontalLine(img, line.Y, line.Stroke, line.Fill)
	}
	return img
}

func renderCircles(width, height int, spec *Circles) *image.NRGBA {
	img := newOpaqueBlack(width, height)
	for _, disk := range spec.Disks {
		fillCircle(img, disk.X, disk.Y, disk.Radius, disk.Fill)
	}
	return img
}

func renderGradient(width, height int, spec *Gradient) *image.NRGBA {
	small := image.NewNRGBA(image.Rect(0, 0, spec.GridW, spec.GridH))
	for y := 0; y < spec.GridH; y++ {
		for x := 0; x < spec.GridW; x++ {
			var intensity int
			switch spec.Direction {
			case DirectionVertical:
				intensity = 255 * y / maxInt(1, spec.GridH)
			case DirectionDiagonal:
				intensity = 255 * (x + y) / maxInt(1, spec.GridW+spec.GridH)
			default:
				intensity = 255 * x / maxInt(1, spec.GridW)
			}
			shade := uint8(intensity)
			offset := small.PixOffset(x, y)
			small.Pix[offset+0] = shade
			small.Pix[offset+1] = shade
			small.Pix[offset+2] = shade
			small.Pix[offset+3] = 255
		}
	}
	return upscaleBilinear(small, width, height)
}

// gridSize computes the reduced grid for noise and gradient rendering;
// roughly a 480px long edge, never below 2x2.
func gridSize(width, height int) (int, int) {
	down := maxInt(1, maxInt(width, height)/gridEdge)
	return maxInt(2, width/down), maxInt(2, height/down)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
