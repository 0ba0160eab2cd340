package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uniqvid/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "uniqvid", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7512" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Jobs.Workers != 2 {
		t.Fatalf("unexpected default workers: %d", cfg.Jobs.Workers)
	}
	if cfg.Jobs.MaxCopies != 10 {
		t.Fatalf("unexpected default max copies: %d", cfg.Jobs.MaxCopies)
	}
	if cfg.Jobs.MaxFileMB != 50 {
		t.Fatalf("unexpected default max file MB: %d", cfg.Jobs.MaxFileMB)
	}
	if cfg.Video.MaxDim != 720 {
		t.Fatalf("unexpected default max dim: %d", cfg.Video.MaxDim)
	}
	if cfg.Video.Threads != 1 {
		t.Fatalf("unexpected default threads: %d", cfg.Video.Threads)
	}
	if cfg.Video.Preset != "veryfast" {
		t.Fatalf("unexpected default preset: %q", cfg.Video.Preset)
	}
	if cfg.Video.DefaultStrength != "medium" {
		t.Fatalf("unexpected default strength: %q", cfg.Video.DefaultStrength)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WORKERS", "4")
	t.Setenv("MAX_COPIES", "5")
	t.Setenv("MAX_FILE_MB", "25")
	t.Setenv("MAX_DIM", "1080")
	t.Setenv("VIDEO_THREADS", "3")
	t.Setenv("FFMPEG_PRESET", "medium")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Jobs.Workers != 4 {
		t.Fatalf("WORKERS override ignored: %d", cfg.Jobs.Workers)
	}
	if cfg.Jobs.MaxCopies != 5 {
		t.Fatalf("MAX_COPIES override ignored: %d", cfg.Jobs.MaxCopies)
	}
	if cfg.Jobs.MaxFileMB != 25 {
		t.Fatalf("MAX_FILE_MB override ignored: %d", cfg.Jobs.MaxFileMB)
	}
	if cfg.Video.MaxDim != 1080 {
		t.Fatalf("MAX_DIM override ignored: %d", cfg.Video.MaxDim)
	}
	if cfg.Video.Threads != 3 {
		t.Fatalf("VIDEO_THREADS override ignored: %d", cfg.Video.Threads)
	}
	if cfg.Video.Preset != "medium" {
		t.Fatalf("FFMPEG_PRESET override ignored: %q", cfg.Video.Preset)
	}
	if cfg.MaxFileBytes() != 25*1024*1024 {
		t.Fatalf("unexpected byte cap: %d", cfg.MaxFileBytes())
	}
}

func TestLoadRejectsInvalidEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WORKERS", "not-a-number")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Jobs.Workers != 2 {
		t.Fatalf("invalid override should keep default, got %d", cfg.Jobs.Workers)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "uniqvid.toml")
	content := strings.Join([]string{
		"[jobs]",
		"workers = 7",
		"[video]",
		"default_strength = \"high\"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Jobs.Workers != 7 {
		t.Fatalf("unexpected workers: %d", cfg.Jobs.Workers)
	}
	if cfg.Video.DefaultStrength != "high" {
		t.Fatalf("unexpected strength: %q", cfg.Video.DefaultStrength)
	}
}

func TestValidateRejectsBadStrength(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "uniqvid.toml")
	if err := os.WriteFile(path, []byte("[video]\ndefault_strength = \"extreme\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown strength")
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[jobs]") {
		t.Fatal("sample config missing [jobs] section")
	}
}
