// Package fileutil provides file copy and output naming helpers.
package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// DerivedName returns the conventional output path for a processed copy of
// input: "<dir>/<basename><suffix><ext>". When ext is empty the input's
// extension is kept.
func DerivedName(input, dir, suffix, ext string) string {
	base := Basename(input)
	if ext == "" {
		ext = filepath.Ext(input)
	}
	return filepath.Join(dir, base+suffix+ext)
}

// Basename returns the final path element with its extension stripped.
func Basename(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
