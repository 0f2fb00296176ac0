// Package ffmpeg wraps the external ffmpeg binary as tierkit's transcode
// service.
//
// The runner builds a filter program with internal/media/filtergraph, writes
// it to a temporary filter-script file, and invokes ffmpeg with
// -/filter_complex so unbounded interval lists never hit argv limits. Script
// files are removed on every exit path, including transcode failure.
// Invocations are blocking and sequential; a non-zero exit surfaces as a
// services.ErrExternalTool error carrying ffmpeg's trimmed stderr.
package ffmpeg
