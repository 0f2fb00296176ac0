package elan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLocalMediaByBasename(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "session.eaf")
	media := filepath.Join(dir, "session.wav")
	if err := os.WriteFile(media, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The header points somewhere stale; only the basename survives a copy.
	md := MediaDescriptor{MediaURL: "file:///somewhere/else/session.wav"}
	got := FindLocalMedia(transcript, md)
	if got == "" {
		t.Fatal("media not found via basename fallback")
	}
	if filepath.Base(got) != "session.wav" {
		t.Errorf("resolved %q", got)
	}
}

func TestFindLocalMediaRelative(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "session.eaf")
	if err := os.WriteFile(filepath.Join(dir, "session.wav"), []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	md := MediaDescriptor{MediaURL: "file:///gone/session.wav", RelativeMediaURL: "./session.wav"}
	if got := FindLocalMedia(transcript, md); got == "" {
		t.Error("media not found via relative URL")
	}
}

func TestFindLocalMediaMissing(t *testing.T) {
	md := MediaDescriptor{MediaURL: "file:///gone/session.wav"}
	if got := FindLocalMedia(filepath.Join(t.TempDir(), "session.eaf"), md); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
}

func TestRewriteMediaURL(t *testing.T) {
	doc := &Document{Header: Header{MediaDescriptors: []MediaDescriptor{
		{MediaURL: "file:///data/session.wav", RelativeMediaURL: "./session.wav"},
		{MediaURL: "file:///data/session.mp4", RelativeMediaURL: "./session.mp4"},
	}}}

	if !doc.RewriteMediaURL("session.wav", "session-ANONYMIZED.wav") {
		t.Fatal("rewrite reported no change")
	}
	md := doc.Header.MediaDescriptors[0]
	if md.MediaURL != "file:///data/session-ANONYMIZED.wav" {
		t.Errorf("media URL = %q", md.MediaURL)
	}
	if md.RelativeMediaURL != "./session-ANONYMIZED.wav" {
		t.Errorf("relative URL = %q", md.RelativeMediaURL)
	}
	if doc.Header.MediaDescriptors[1].MediaURL != "file:///data/session.mp4" {
		t.Error("unrelated descriptor was rewritten")
	}

	if doc.RewriteMediaURL("nothere.wav", "x.wav") {
		t.Error("rewrite of absent name reported a change")
	}
}
