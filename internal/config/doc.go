// Package config loads, normalizes, and validates tierkit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: output directories, ffmpeg/ffprobe invocation settings,
// anonymization suffixes and patterns, and the participant/annotator defaults
// used when exporting oral annotation sessions.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
