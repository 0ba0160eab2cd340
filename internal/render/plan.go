package render

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"uniqvid/internal/media"
	"uniqvid/internal/overlay"
	"uniqvid/internal/profile"
)

const (
	outputFrameRate    = 24
	fallbackBitrateKbp = 3000
	videoCodec         = "libx264"
	audioCodec         = "aac"
)

// Wash is a translucent full-frame color layer composited under the overlay
// element. Components are 8-bit; Opacity already folds the sampled density
// into the alpha component.
type Wash struct {
	R, G, B uint8
	Opacity float64
}

// Hex returns the ffmpeg color literal for the wash.
func (w Wash) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", w.R, w.G, w.B)
}

// Options carries the encoder knobs that come from configuration rather than
// from the per-copy sampler.
type Options struct {
	MaxDim  int
	Threads int
	Preset  string
}

// Plan is one fully resolved variant: every randomized decision has been made
// and lowered to concrete dimensions, a filter graph, and encoder settings.
type Plan struct {
	Source media.Info

	Speed     float64
	RotateDeg float64

	// Geometry after each stage. ScaleW/H follow the resize factor, RotW/H
	// are the rotation bounding box, OutW/H are the final frame after the
	// maximum-dimension cap. All are even, as libx264 requires.
	ScaleW, ScaleH int
	RotW, RotH     int
	OutW, OutH     int

	Wash    Wash
	Element overlay.Element

	BitrateKbps int
	Threads     int
	Preset      string
}

// BuildPlan draws one parameter set from the sampler and resolves it against
// the probed source. Geometry follows the transform order resize, speed,
// rotate, cap; the cap only ever shrinks, so the output never exceeds the
// configured maximum dimension or the source's own larger side.
func BuildPlan(src media.Info, s *profile.Sampler, opts Options) Plan {
	params := s.Draw()

	scaleW := evenDim(int(math.Round(float64(src.Width) * params.Resize)))
	scaleH := evenDim(int(math.Round(float64(src.Height) * params.Resize)))

	rad := params.Rotate * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	rotW := evenDim(int(math.Ceil(float64(scaleW)*cos + float64(scaleH)*sin)))
	rotH := evenDim(int(math.Ceil(float64(scaleW)*sin + float64(scaleH)*cos)))

	limit := opts.MaxDim
	if srcMax := max(src.Width, src.Height); srcMax < limit {
		limit = srcMax
	}
	outW, outH := rotW, rotH
	if longest := max(rotW, rotH); limit > 0 && longest > limit {
		scale := float64(limit) / float64(longest)
		outW = evenDim(int(math.Round(float64(rotW) * scale)))
		outH = evenDim(int(math.Round(float64(rotH) * scale)))
	}

	wash := Wash{
		R:       uint8(s.Float64() * 255),
		G:       uint8(s.Float64() * 255),
		B:       uint8(s.Float64() * 255),
		Opacity: params.Density * s.Float64(),
	}

	sourceKbps := src.BitrateKbps
	if sourceKbps <= 0 {
		sourceKbps = fallbackBitrateKbp
	}

	return Plan{
		Source:      src,
		Speed:       params.Speed,
		RotateDeg:   params.Rotate,
		ScaleW:      scaleW,
		ScaleH:      scaleH,
		RotW:        rotW,
		RotH:        rotH,
		OutW:        outW,
		OutH:        outH,
		Wash:        wash,
		Element:     overlay.Sample(s, outW, outH, params.Opacity),
		BitrateKbps: int(math.Round(float64(sourceKbps) * params.Bitrate)),
		Threads:     opts.Threads,
		Preset:      opts.Preset,
	}
}

// FilterGraph lowers the plan to an ffmpeg filter_complex expression. Input 0
// is the source, input 1 the rasterized overlay element.
func (p Plan) FilterGraph() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[0:v]setpts=PTS/%s,scale=%d:%d,rotate=%s:ow=%d:oh=%d:c=black",
		formatFloat(p.Speed), p.ScaleW, p.ScaleH, formatFloat(p.RotateDeg*math.Pi/180), p.RotW, p.RotH)
	if p.OutW != p.RotW || p.OutH != p.RotH {
		fmt.Fprintf(&b, ",scale=%d:%d", p.OutW, p.OutH)
	}
	b.WriteString("[base];")

	fmt.Fprintf(&b, "color=c=%s:s=%dx%d:r=%d,format=rgba,colorchannelmixer=aa=%s[wash];",
		p.Wash.Hex(), p.OutW, p.OutH, outputFrameRate, formatFloat(p.Wash.Opacity))
	b.WriteString("[base][wash]overlay=0:0:shortest=1[washed];")

	fmt.Fprintf(&b, "[1:v]format=rgba,colorchannelmixer=aa=%s[elem];",
		formatFloat(p.Element.Opacity))
	b.WriteString("[washed][elem]overlay=0:0:shortest=1[vout]")

	if p.Source.HasAudio {
		fmt.Fprintf(&b, ";[0:a]atempo=%s,volume=%s[aout]",
			formatFloat(p.Speed), formatFloat(p.Speed))
	}
	return b.String()
}

// Args builds the full ffmpeg argument vector for the plan. overlayPath must
// point at the rasterized element PNG, outputPath at the destination file.
func (p Plan) Args(overlayPath, outputPath string) []string {
	args := []string{
		"-y",
		"-i", p.Source.Path,
		"-loop", "1",
		"-i", overlayPath,
		"-filter_complex", p.FilterGraph(),
		"-map", "[vout]",
	}
	if p.Source.HasAudio {
		args = append(args, "-map", "[aout]", "-c:a", audioCodec)
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", outputFrameRate),
		"-c:v", videoCodec,
		"-preset", p.Preset,
		"-pix_fmt", "yuv420p",
		"-threads", fmt.Sprintf("%d", p.Threads),
		"-b:v", fmt.Sprintf("%dk", p.BitrateKbps),
		outputPath,
	)
	return args
}

// OutputName derives the per-copy file name from the source base name and the
// one-based copy index.
func OutputName(sourcePath string, index int) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return fmt.Sprintf("%s_%d.mp4", base, index)
}

// evenDim floors to the nearest even value, never below 2.
func evenDim(n int) int {
	n -= n % 2
	if n < 2 {
		return 2
	}
	return n
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
