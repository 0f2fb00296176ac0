package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateAnonymize(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.VideoCRF < 0 || c.FFmpeg.VideoCRF > 51 {
		return errors.New("ffmpeg.video_crf must be between 0 and 51")
	}
	if c.FFmpeg.BlurRadius <= 0 {
		return errors.New("ffmpeg.blur_radius must be positive")
	}
	return nil
}

func (c *Config) validateAnonymize() error {
	if _, err := regexp.Compile(c.Anonymize.AudioPattern); err != nil {
		return fmt.Errorf("anonymize.audio_pattern: %w", err)
	}
	if _, err := regexp.Compile(c.Anonymize.VideoPattern); err != nil {
		return fmt.Errorf("anonymize.video_pattern: %w", err)
	}
	if c.Anonymize.ReviewContextMS < 0 {
		return errors.New("anonymize.review_context_ms must not be negative")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.SplitSeparator == "" {
		return errors.New("export.split_separator must be set")
	}
	if strings.TrimSpace(c.Export.SourceLanguage) == "" {
		return errors.New("export.source_language must be set")
	}
	if strings.TrimSpace(c.Export.TranslationLanguage) == "" {
		return errors.New("export.translation_language must be set")
	}
	return nil
}
