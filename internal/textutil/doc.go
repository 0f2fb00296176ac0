// Package textutil holds small text formatting helpers shared across tierkit:
// millisecond timestamps in ffmpeg and file-name form, and the trimmed
// seconds notation used by SayMore oral annotation clip names.
package textutil
