// Package audio provides in-memory mono PCM segment buffers for assembling
// oral annotation tracks.
//
// A Segment is decoded from a WAV file, sliced by millisecond offsets,
// padded with silence, and concatenated; the export path builds one Segment
// per output track and writes each back out as WAV before the transcode
// service joins them into a single multi-channel file. All clips in a
// session are expected to share one sample format; mixing formats is a
// validation error rather than an implicit resample.
package audio
