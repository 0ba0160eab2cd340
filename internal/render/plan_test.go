package render_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"uniqvid/internal/media"
	"uniqvid/internal/profile"
	"uniqvid/internal/render"
)

func newSampler(seed int64) *profile.Sampler {
	return profile.NewSamplerWithRand(profile.StrengthMedium, rand.New(rand.NewSource(seed)))
}

func sourceInfo() media.Info {
	return media.Info{
		Path:        "/videos/clip.mp4",
		Width:       1920,
		Height:      1080,
		Duration:    12.5,
		FrameRate:   30,
		HasAudio:    true,
		BitrateKbps: 4000,
	}
}

func TestBuildPlanRespectsMaxDimension(t *testing.T) {
	opts := render.Options{MaxDim: 720, Threads: 2, Preset: "veryfast"}
	for seed := int64(0); seed < 200; seed++ {
		plan := render.BuildPlan(sourceInfo(), newSampler(seed), opts)
		if plan.OutW > 720 || plan.OutH > 720 {
			t.Fatalf("seed %d: output %dx%d exceeds 720 cap", seed, plan.OutW, plan.OutH)
		}
		if plan.OutW > plan.RotW || plan.OutH > plan.RotH {
			t.Fatalf("seed %d: cap upscaled %dx%d past %dx%d", seed, plan.OutW, plan.OutH, plan.RotW, plan.RotH)
		}
	}
}

func TestBuildPlanNeverExceedsSourceDimensions(t *testing.T) {
	src := sourceInfo()
	src.Width, src.Height = 640, 360
	opts := render.Options{MaxDim: 1280, Threads: 1, Preset: "veryfast"}
	for seed := int64(0); seed < 200; seed++ {
		plan := render.BuildPlan(src, newSampler(seed), opts)
		if plan.OutW > 640 || plan.OutH > 640 {
			t.Fatalf("seed %d: output %dx%d upscaled past the 640 source side", seed, plan.OutW, plan.OutH)
		}
	}
}

func TestBuildPlanDimensionsAreEven(t *testing.T) {
	opts := render.Options{MaxDim: 720, Threads: 1, Preset: "fast"}
	for seed := int64(0); seed < 200; seed++ {
		plan := render.BuildPlan(sourceInfo(), newSampler(seed), opts)
		for _, d := range []int{plan.ScaleW, plan.ScaleH, plan.RotW, plan.RotH, plan.OutW, plan.OutH} {
			if d < 2 || d%2 != 0 {
				t.Fatalf("seed %d: dimension %d not even and positive", seed, d)
			}
		}
	}
}

func TestBuildPlanBitrateScalesSource(t *testing.T) {
	opts := render.Options{MaxDim: 720, Threads: 1, Preset: "veryfast"}
	ranges := profile.RangesFor(profile.StrengthMedium)
	for seed := int64(0); seed < 100; seed++ {
		plan := render.BuildPlan(sourceInfo(), newSampler(seed), opts)
		lo := int(float64(4000)*ranges.Bitrate.Min) - 1
		hi := int(float64(4000)*ranges.Bitrate.Max) + 1
		if plan.BitrateKbps < lo || plan.BitrateKbps > hi {
			t.Fatalf("seed %d: bitrate %d outside [%d, %d]", seed, plan.BitrateKbps, lo, hi)
		}
	}
}

func TestBuildPlanFallsBackWhenSourceBitrateUnknown(t *testing.T) {
	src := sourceInfo()
	src.BitrateKbps = 0
	ranges := profile.RangesFor(profile.StrengthMedium)
	plan := render.BuildPlan(src, newSampler(7), render.Options{MaxDim: 720, Threads: 1, Preset: "veryfast"})
	lo := int(float64(3000)*ranges.Bitrate.Min) - 1
	hi := int(float64(3000)*ranges.Bitrate.Max) + 1
	if plan.BitrateKbps < lo || plan.BitrateKbps > hi {
		t.Fatalf("bitrate %d outside fallback-scaled [%d, %d]", plan.BitrateKbps, lo, hi)
	}
}

func TestFilterGraphComposesAllLayers(t *testing.T) {
	plan := render.BuildPlan(sourceInfo(), newSampler(3), render.Options{MaxDim: 720, Threads: 1, Preset: "veryfast"})
	graph := plan.FilterGraph()

	for _, want := range []string{"setpts=PTS/", "rotate=", "c=black", "colorchannelmixer=aa=", "[base][wash]overlay", "[washed][elem]overlay", "atempo=", "volume="} {
		if !strings.Contains(graph, want) {
			t.Fatalf("filter graph missing %q:\n%s", want, graph)
		}
	}
	if !strings.Contains(graph, fmt.Sprintf("s=%dx%d", plan.OutW, plan.OutH)) {
		t.Fatalf("wash layer not sized to output frame:\n%s", graph)
	}
}

func TestFilterGraphOmitsAudioChainWithoutAudio(t *testing.T) {
	src := sourceInfo()
	src.HasAudio = false
	plan := render.BuildPlan(src, newSampler(3), render.Options{MaxDim: 720, Threads: 1, Preset: "veryfast"})
	if graph := plan.FilterGraph(); strings.Contains(graph, "atempo") {
		t.Fatalf("audio chain present for silent source:\n%s", graph)
	}
}

func TestArgsCarryEncoderSettings(t *testing.T) {
	plan := render.BuildPlan(sourceInfo(), newSampler(11), render.Options{MaxDim: 720, Threads: 3, Preset: "fast"})
	args := strings.Join(plan.Args("/work/overlay.png", "/work/clip_1.mp4"), " ")

	for _, want := range []string{
		"-i /videos/clip.mp4",
		"-loop 1 -i /work/overlay.png",
		"-map [vout]",
		"-map [aout]",
		"-c:a aac",
		"-r 24",
		"-c:v libx264",
		"-preset fast",
		"-threads 3",
		fmt.Sprintf("-b:v %dk", plan.BitrateKbps),
		"/work/clip_1.mp4",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("args missing %q:\n%s", want, args)
		}
	}
}

func TestArgsDropAudioForSilentSource(t *testing.T) {
	src := sourceInfo()
	src.HasAudio = false
	plan := render.BuildPlan(src, newSampler(11), render.Options{MaxDim: 720, Threads: 1, Preset: "veryfast"})
	args := strings.Join(plan.Args("/work/overlay.png", "/work/out.mp4"), " ")
	if strings.Contains(args, "[aout]") || strings.Contains(args, "-c:a") {
		t.Fatalf("audio flags present for silent source:\n%s", args)
	}
	if !strings.Contains(args, "-an") {
		t.Fatalf("silent source not muted:\n%s", args)
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		source string
		index  int
		want   string
	}{
		{"/videos/holiday clip.mov", 1, "holiday clip_1.mp4"},
		{"/videos/reel.mp4", 12, "reel_12.mp4"},
		{"noext", 2, "noext_2.mp4"},
	}
	for _, tc := range cases {
		if got := render.OutputName(tc.source, tc.index); got != tc.want {
			t.Fatalf("OutputName(%q, %d) = %q, want %q", tc.source, tc.index, got, tc.want)
		}
	}
}
