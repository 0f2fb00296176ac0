package filtergraph

import (
	"fmt"
	"strings"
)

// Span is one half-open [Start, End) interval in milliseconds.
type Span struct {
	StartMS int64
	EndMS   int64
}

const clauseSeparator = ", "

// Mute returns a filter program that silences the audio stream over each
// span, e.g.
//
//	volume=enable='between(t\,216.670\,219.193)':volume=0, ...
//
// One clause per input span, in input order.
func Mute(spans []Span) string {
	clauses := make([]string, 0, len(spans))
	for _, span := range spans {
		clauses = append(clauses, fmt.Sprintf(
			`volume=enable='between(t\,%s\,%s)':volume=0`,
			FormatSeconds(span.StartMS), FormatSeconds(span.EndMS)))
	}
	return strings.Join(clauses, clauseSeparator)
}

// BlurAndMute returns a two-part filter program for video: a pixel-format
// normalization plus a full-frame box blur gated over each span, then the
// audio mute clauses, joined so one graph addresses both streams:
//
//	format=yuv420p, boxblur=10:enable='between(t\,...)', ...; volume=..., ...
func BlurAndMute(spans []Span, blurRadius int) string {
	var b strings.Builder
	b.WriteString("format=yuv420p")
	for _, span := range spans {
		b.WriteString(clauseSeparator)
		fmt.Fprintf(&b, `boxblur=%d:enable='between(t\,%s\,%s)'`,
			blurRadius, FormatSeconds(span.StartMS), FormatSeconds(span.EndMS))
	}
	b.WriteString("; ")
	b.WriteString(Mute(spans))
	return b.String()
}

// FormatSeconds renders a millisecond offset as seconds with exactly three
// fractional digits. Audio and video compilation share this single formatter
// so a given interval mutes identically in both streams.
func FormatSeconds(ms int64) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}
