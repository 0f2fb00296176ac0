// Package services defines the shared error taxonomy for tierkit's external
// collaborators and pipeline components.
//
// Errors are tagged with one of the exported sentinels (external tool,
// validation, configuration, not-found) via Wrap so callers can classify a
// failure without string matching: anonymization skips a single media file on
// ErrExternalTool or ErrNotFound and moves on, while the export path treats
// any failure as fatal.
package services
