package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Anonymize.OutputSuffix != "-ANONYMIZED" {
		t.Fatalf("unexpected default suffix: %q", cfg.Anonymize.OutputSuffix)
	}
	if cfg.FFmpeg.Binary != "ffmpeg" || cfg.FFmpeg.ProbeBinary != "ffprobe" {
		t.Fatalf("unexpected default binaries: %q %q", cfg.FFmpeg.Binary, cfg.FFmpeg.ProbeBinary)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("output dir not expanded: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[ffmpeg]
video_crf = 20
blur_radius = 24

[export]
translator = "B. Starlight"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.FFmpeg.VideoCRF != 20 || cfg.FFmpeg.BlurRadius != 24 {
		t.Fatalf("overrides not applied: crf=%d blur=%d", cfg.FFmpeg.VideoCRF, cfg.FFmpeg.BlurRadius)
	}
	if cfg.Export.Translator != "B. Starlight" {
		t.Fatalf("translator override lost: %q", cfg.Export.Translator)
	}
	if cfg.Catalog.Path != filepath.Join(cfg.Paths.LogDir, "catalog.db") {
		t.Fatalf("catalog path default wrong: %q", cfg.Catalog.Path)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad crf", func(c *Config) { c.FFmpeg.VideoCRF = 99 }, "video_crf"},
		{"bad blur", func(c *Config) { c.FFmpeg.BlurRadius = 0 }, "blur_radius"},
		{"bad pattern", func(c *Config) { c.Anonymize.AudioPattern = "[" }, "audio_pattern"},
		{"negative context", func(c *Config) { c.Anonymize.ReviewContextMS = -1 }, "review_context_ms"},
		{"empty separator", func(c *Config) { c.Export.SplitSeparator = "" }, "split_separator"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
