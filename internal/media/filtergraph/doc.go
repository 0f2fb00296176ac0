// Package filtergraph compiles lists of millisecond intervals into ffmpeg
// filter-graph programs.
//
// Two programs are produced: an audio program that gates a volume=0 clause
// over each interval, and a video program that prepends a full-frame box blur
// clause set over the same intervals. Clauses compose because silencing or
// blurring a span twice is indistinguishable from doing it once, so input
// intervals are emitted one clause each, in order, without any merging of
// duplicates or overlaps.
//
// Programs can exceed the command-line length limit for large interval sets
// and are therefore always delivered to ffmpeg through a filter-script file
// (the -/filter_complex side channel), never inline in the argument list.
package filtergraph
