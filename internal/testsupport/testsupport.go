// Package testsupport provides shared fixtures for tests that need a
// realistic transcript or media files without shelling out to ffmpeg.
package testsupport

import (
	"path/filepath"
	"testing"

	"tierkit/internal/config"
	"tierkit/internal/elan"
	"tierkit/internal/media/audio"
)

// Config returns a fully-populated configuration rooted in per-test temp
// directories, with the catalog disabled.
func Config(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Catalog.Enabled = false
	cfg.Catalog.Path = filepath.Join(cfg.Paths.LogDir, "catalog.db")
	return &cfg
}

// Document builds a two-speaker-tier transcript: an aligned Transcription
// tier with markup in the first annotation, a referential Translation tier,
// and an aligned Postprocess tier carrying one media-redaction interval.
func Document(t *testing.T) *elan.Document {
	t.Helper()
	b := elan.NewBuilder("testsupport")
	b.AddLinguisticType(elan.LinguisticType{ID: "Transcription", TimeAlignable: true})
	b.AddLinguisticType(elan.LinguisticType{ID: "Translation", Constraints: "Symbolic_Association"})
	b.AddLinguisticType(elan.LinguisticType{ID: "event", TimeAlignable: true})

	transcription := b.AddAlignedTier("Transcription", "Transcription", "SPK", "", "")
	translation := b.AddReferentialTier("Translation", "Translation", "Transcription", "")
	postprocess := b.AddAlignedTier("Postprocess", "event", "", "", "")

	first := b.AddAligned(transcription, 1000, 2500, "my name is [name]Mary[/name]")
	second := b.AddAligned(transcription, 3000, 4200, "clean text")
	b.AddRef(translation, first, "translated one")
	b.AddRef(translation, second, "translated two")
	b.AddAligned(postprocess, 1200, 1800, "blur face")

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("build fixture document: %v", err)
	}
	return doc
}

// WriteDocument saves a document under dir and returns the transcript path.
func WriteDocument(t *testing.T, doc *elan.Document, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := doc.Save(path); err != nil {
		t.Fatalf("save fixture document: %v", err)
	}
	return path
}

// SilentWAV writes a mono 16-bit 8 kHz WAV of the given duration and returns
// its path. The low sample rate keeps fixtures small.
func SilentWAV(t *testing.T, path string, durationMS int64) string {
	t.Helper()
	seg := audio.Silent(durationMS, 8000, 16)
	if err := seg.WriteWAV(path); err != nil {
		t.Fatalf("write fixture wav %s: %v", path, err)
	}
	return path
}
