package textutil

import (
	"fmt"
	"strings"
)

// TimestampMS renders a millisecond offset as an ffmpeg-style
// "HH:MM:SS.MSS" timestamp.
func TimestampMS(ms int64) string {
	hours, mins, secs, millis := splitMS(ms)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, mins, secs, millis)
}

// FileTimestampMS renders a millisecond offset as "HHhMMmSSsMSS", which is
// safe to embed in file names.
func FileTimestampMS(ms int64) string {
	hours, mins, secs, millis := splitMS(ms)
	return fmt.Sprintf("%02dh%02dm%02ds%03d", hours, mins, secs, millis)
}

// TrimmedSeconds renders a millisecond offset as seconds with up to three
// fractional digits, trailing zeros (and a bare trailing dot) removed.
// SayMore names oral annotation clips with this notation, e.g. 216670 ->
// "216.67" and 5000 -> "5".
func TrimmedSeconds(ms int64) string {
	s := fmt.Sprintf("%.3f", float64(ms)/1000.0)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func splitMS(ms int64) (hours, mins, secs, millis int64) {
	secs, millis = ms/1000, ms%1000
	mins, secs = secs/60, secs%60
	hours, mins = mins/60, mins%60
	return hours, mins, secs, millis
}
