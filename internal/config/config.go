package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// FFmpeg contains settings for the external transcode and probe tools.
type FFmpeg struct {
	Binary      string `toml:"binary"`
	ProbeBinary string `toml:"probe_binary"`
	VideoPreset string `toml:"video_preset"`
	VideoCRF    int    `toml:"video_crf"`
	BlurRadius  int    `toml:"blur_radius"`
	AudioCodec  string `toml:"audio_codec"`
	ClipPreset  string `toml:"clip_preset"`
}

// Anonymize contains configuration for the transcript/media redaction pass.
type Anonymize struct {
	OutputSuffix    string `toml:"output_suffix"`
	AudioPattern    string `toml:"audio_pattern"`
	VideoPattern    string `toml:"video_pattern"`
	ReviewContextMS int64  `toml:"review_context_ms"`
}

// Export contains configuration for oral annotation session exports.
type Export struct {
	OriginalAnnotator    string `toml:"original_annotator"`
	Repeater             string `toml:"repeater"`
	RepetitionAnnotator  string `toml:"repetition_annotator"`
	Translator           string `toml:"translator"`
	TranslationAnnotator string `toml:"translation_annotator"`
	SplitSeparator       string `toml:"split_separator"`
	IgnoreMarker         string `toml:"ignore_marker"`
	SourceLanguage       string `toml:"source_language"`
	TranslationLanguage  string `toml:"translation_language"`
}

// Catalog contains configuration for the processing journal.
type Catalog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for tierkit.
//
// Configuration sections by subsystem:
//   - Paths: output and log directories
//   - Logging: log format and level
//   - FFmpeg: external transcode/probe binaries and encode settings
//   - Anonymize: suffixes, media discovery patterns, review clip context
//   - Export: oral annotation participants, separators, language tags
//   - Catalog: SQLite processing journal
type Config struct {
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Anonymize Anonymize `toml:"anonymize"`
	Export    Export    `toml:"export"`
	Catalog   Catalog   `toml:"catalog"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tierkit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tierkit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.FFmpeg.ProbeBinary) == "" {
		c.FFmpeg.ProbeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.FFmpeg.VideoPreset) == "" {
		c.FFmpeg.VideoPreset = defaultVideoPreset
	}
	if strings.TrimSpace(c.FFmpeg.ClipPreset) == "" {
		c.FFmpeg.ClipPreset = defaultClipPreset
	}
	if strings.TrimSpace(c.FFmpeg.AudioCodec) == "" {
		c.FFmpeg.AudioCodec = defaultAudioCodec
	}

	if strings.TrimSpace(c.Anonymize.OutputSuffix) == "" {
		c.Anonymize.OutputSuffix = defaultOutputSuffix
	}
	if strings.TrimSpace(c.Anonymize.AudioPattern) == "" {
		c.Anonymize.AudioPattern = defaultAudioPattern
	}
	if strings.TrimSpace(c.Anonymize.VideoPattern) == "" {
		c.Anonymize.VideoPattern = defaultVideoPattern
	}

	if c.Export.SplitSeparator == "" {
		c.Export.SplitSeparator = defaultSplitSeparator
	}
	if strings.TrimSpace(c.Export.IgnoreMarker) == "" {
		c.Export.IgnoreMarker = defaultIgnoreMarker
	}
	if strings.TrimSpace(c.Export.SourceLanguage) == "" {
		c.Export.SourceLanguage = defaultSourceLanguage
	}
	if strings.TrimSpace(c.Export.TranslationLanguage) == "" {
		c.Export.TranslationLanguage = defaultTranslationLanguage
	}

	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = filepath.Join(c.Paths.LogDir, "catalog.db")
	} else if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}

	return nil
}

// EnsureDirectories creates the directories tierkit writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
