package elan

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FindLocalMedia resolves a media descriptor to an on-disk path, trying in
// order: the media URL as a plain path, the same relative to the transcript's
// directory, the URL's path component for file:// URLs, the relative media
// URL, and finally the URL's basename next to the transcript (media and
// transcript are often copied together without the header being updated).
// Returns "" when nothing exists.
func FindLocalMedia(transcriptPath string, md MediaDescriptor) string {
	transcriptDir := filepath.Dir(transcriptPath)

	if isFile(md.MediaURL) {
		return absPath(md.MediaURL)
	}
	if candidate := filepath.Join(transcriptDir, md.MediaURL); md.MediaURL != "" && isFile(candidate) {
		return absPath(candidate)
	}

	if parsed, err := url.Parse(md.MediaURL); err == nil && parsed.Scheme == "file" && isFile(parsed.Path) {
		return absPath(parsed.Path)
	}

	if md.RelativeMediaURL != "" {
		candidate := filepath.Join(transcriptDir, md.RelativeMediaURL)
		if isFile(candidate) {
			return absPath(candidate)
		}
	}

	if base := path.Base(md.MediaURL); base != "" && base != "." && base != "/" {
		candidate := filepath.Join(transcriptDir, base)
		if isFile(candidate) {
			return absPath(candidate)
		}
	}

	return ""
}

// RewriteMediaURL retargets any media descriptor whose URL ends in oldName so
// that both its absolute and relative URL forms point at newName instead,
// preserving the leading portion of each URL. Returns whether any descriptor
// changed.
func (d *Document) RewriteMediaURL(oldName, newName string) bool {
	changed := false
	for i := range d.Header.MediaDescriptors {
		md := &d.Header.MediaDescriptors[i]
		if strings.HasSuffix(md.MediaURL, oldName) {
			md.MediaURL = strings.TrimSuffix(md.MediaURL, oldName) + newName
			changed = true
		}
		if strings.HasSuffix(md.RelativeMediaURL, oldName) {
			md.RelativeMediaURL = strings.TrimSuffix(md.RelativeMediaURL, oldName) + newName
			changed = true
		}
	}
	return changed
}

func isFile(candidate string) bool {
	if strings.TrimSpace(candidate) == "" {
		return false
	}
	info, err := os.Stat(candidate)
	return err == nil && !info.IsDir()
}

func absPath(candidate string) string {
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return candidate
	}
	return abs
}
