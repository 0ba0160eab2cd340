// Package media inspects source containers through ffprobe and exposes the
// stream facts the render pipeline needs: dimensions, duration, frame rate,
// audio presence, and the container bitrate when the source reports one.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnreadableMedia marks files the probe backend cannot parse as a media
// container.
var ErrUnreadableMedia = errors.New("unreadable media")

// Info describes one opened source.
type Info struct {
	Path        string
	Width       int
	Height      int
	Duration    float64 // seconds
	FrameRate   float64
	HasAudio    bool
	BitrateKbps int // 0 when the source does not report a bitrate
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}

// NewCommandExecutor returns the default executor backed by os/exec.
func NewCommandExecutor() Executor {
	return commandExecutor{}
}

// Prober wraps ffprobe invocations.
type Prober struct {
	binary string
	exec   Executor
}

// Option configures the prober.
type Option func(*Prober)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(p *Prober) {
		if executor != nil {
			p.exec = executor
		}
	}
}

// NewProber constructs a prober for the given ffprobe binary.
func NewProber(binary string, opts ...Option) (*Prober, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffprobe binary required")
	}
	prober := &Prober{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(prober)
	}
	return prober, nil
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	BitRate      string `json:"bit_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Probe opens a source path and returns its stream facts. Files ffprobe
// rejects surface as ErrUnreadableMedia.
func (p *Prober) Probe(ctx context.Context, path string) (*Info, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	raw, err := p.exec.Run(ctx, p.binary, args)
	if err != nil {
		return nil, fmt.Errorf("%w: probe %s: %v", ErrUnreadableMedia, path, err)
	}

	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: parse probe output for %s: %v", ErrUnreadableMedia, path, err)
	}

	info := &Info{Path: path}
	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width = stream.Width
				info.Height = stream.Height
				info.FrameRate = parseRational(stream.AvgFrameRate)
				if info.FrameRate == 0 {
					info.FrameRate = parseRational(stream.RFrameRate)
				}
				if kbps := parseBitrateKbps(stream.BitRate); kbps > 0 {
					info.BitrateKbps = kbps
				}
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Width < 1 || info.Height < 1 {
		return nil, fmt.Errorf("%w: %s has no video stream", ErrUnreadableMedia, path)
	}

	if value, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil {
		info.Duration = value
	}
	if info.BitrateKbps == 0 {
		info.BitrateKbps = parseBitrateKbps(out.Format.BitRate)
	}

	return info, nil
}

func parseRational(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "0/0" {
		return 0
	}
	if num, den, ok := strings.Cut(value, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseBitrateKbps(value string) int {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed <= 0 {
		return 0
	}
	return int(parsed / 1000)
}
