// Package anonymize runs the full redaction pass over one transcript: markup
// redaction of annotation values, silencing and blurring of the associated
// media, optional review clips, and the anonymized transcript copy.
package anonymize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"tierkit/internal/config"
	"tierkit/internal/elan"
	"tierkit/internal/fileutil"
	"tierkit/internal/logging"
	"tierkit/internal/media/ffmpeg"
	"tierkit/internal/media/ffprobe"
	"tierkit/internal/media/filtergraph"
	"tierkit/internal/redact"
	"tierkit/internal/services"
	"tierkit/internal/textutil"
)

// PostprocessTier is the reviewer-populated tier naming the media spans that
// need silencing and blurring. It is an independent signal: which text
// annotations carried markup has no bearing on it.
const PostprocessTier = "Postprocess"

// Options control a single anonymization run. Zero values fall back to the
// configured defaults.
type Options struct {
	OutputDir string
	Suffix    string
	Review    bool
	SkipAudio bool
	SkipVideo bool
	SkipText  bool
}

// Result reports what one run produced.
type Result struct {
	Transcript    string
	RedactedCount int
	Intervals     []elan.Interval
	Outputs       []string
}

// Anonymizer drives the redaction pipeline.
type Anonymizer struct {
	cfg          *config.Config
	runner       *ffmpeg.Runner
	logger       *slog.Logger
	audioPattern *regexp.Regexp
	videoPattern *regexp.Regexp
}

// New builds an Anonymizer, compiling the configured media discovery
// patterns.
func New(cfg *config.Config, runner *ffmpeg.Runner, logger *slog.Logger) (*Anonymizer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	audioPattern, err := regexp.Compile(cfg.Anonymize.AudioPattern)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "anonymize", "compile pattern",
			fmt.Sprintf("audio_pattern %q", cfg.Anonymize.AudioPattern), err)
	}
	videoPattern, err := regexp.Compile(cfg.Anonymize.VideoPattern)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "anonymize", "compile pattern",
			fmt.Sprintf("video_pattern %q", cfg.Anonymize.VideoPattern), err)
	}
	return &Anonymizer{
		cfg:          cfg,
		runner:       runner,
		logger:       logger,
		audioPattern: audioPattern,
		videoPattern: videoPattern,
	}, nil
}

// Redact rewrites every annotation value carrying anonymization markup,
// addressing each annotation by its pre-redaction effective span, and returns
// the number of values changed together with the media-redaction intervals
// from the Postprocess tier.
func Redact(doc *elan.Document) (int, []elan.Interval) {
	changed := 0
	for _, tier := range doc.Tiers {
		data, err := doc.AnnotationData(tier.ID)
		if err != nil {
			continue
		}
		for _, datum := range data {
			if !redact.Matches(datum.Value) {
				continue
			}
			replacement, ok := redact.Apply(datum.Value)
			if !ok {
				continue
			}
			doc.SetValue(tier.ID, datum.StartMS, datum.EndMS, replacement)
			changed++
		}
	}
	return changed, doc.Intervals(PostprocessTier)
}

// Process anonymizes one transcript and its sibling media files.
func (a *Anonymizer) Process(ctx context.Context, transcriptPath string, opts Options) (*Result, error) {
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = a.cfg.Paths.OutputDir
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = a.cfg.Anonymize.OutputSuffix
	}

	doc, err := elan.Load(transcriptPath)
	if err != nil {
		return nil, err
	}

	redacted, intervals := Redact(doc)
	a.logger.Info("text pass complete",
		logging.String(logging.FieldTranscript, transcriptPath),
		logging.Int("redacted", redacted),
		logging.Int(logging.FieldSegments, len(intervals)))

	result := &Result{
		Transcript:    transcriptPath,
		RedactedCount: redacted,
		Intervals:     intervals,
	}
	spans := spansOf(intervals)

	type mediaOutput struct {
		input  string
		output string
	}
	var produced []mediaOutput

	if len(spans) == 0 {
		a.logger.Info("no media redaction intervals, skipping media pass",
			logging.String(logging.FieldTranscript, transcriptPath))
		if !opts.SkipText {
			result.Outputs = append(result.Outputs, a.copyCleanMedia(transcriptPath, outDir, suffix, opts)...)
		}
	} else {
		if !opts.SkipAudio {
			for _, input := range a.siblingMedia(transcriptPath, a.audioPattern, suffix) {
				output, err := a.runner.SilenceAudio(ctx, input, spans, outDir, suffix)
				if err != nil {
					a.logger.Warn("audio anonymization failed, skipping file",
						logging.String(logging.FieldMedia, input), logging.Error(err))
					continue
				}
				produced = append(produced, mediaOutput{input: input, output: output})
				result.Outputs = append(result.Outputs, output)
			}
		}
		if !opts.SkipVideo {
			for _, input := range a.siblingMedia(transcriptPath, a.videoPattern, suffix) {
				output, err := a.runner.BlurVideo(ctx, input, spans, outDir, suffix)
				if err != nil {
					a.logger.Warn("video anonymization failed, skipping file",
						logging.String(logging.FieldMedia, input), logging.Error(err))
					continue
				}
				produced = append(produced, mediaOutput{input: input, output: output})
				result.Outputs = append(result.Outputs, output)
			}
		}
		if opts.Review {
			for _, m := range produced {
				clips := a.reviewClips(ctx, m.output, intervals, outDir)
				result.Outputs = append(result.Outputs, clips...)
			}
		}
	}

	if !opts.SkipText {
		for _, m := range produced {
			doc.RewriteMediaURL(filepath.Base(m.input), filepath.Base(m.output))
		}
		outPath := fileutil.DerivedName(transcriptPath, outDir, suffix, ".eaf")
		if err := doc.Save(outPath); err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, outPath)
		a.logger.Info("transcript written", logging.String(logging.FieldOutput, outPath))
	}

	return result, nil
}

// siblingMedia lists files next to the transcript that share its basename
// prefix and match the pattern, excluding previously anonymized copies.
func (a *Anonymizer) siblingMedia(transcriptPath string, pattern *regexp.Regexp, suffix string) []string {
	dir := filepath.Dir(transcriptPath)
	base := fileutil.Basename(transcriptPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		a.logger.Warn("cannot list transcript directory",
			logging.String("dir", dir), logging.Error(err))
		return nil
	}

	var media []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, base) || !pattern.MatchString(name) {
			continue
		}
		if strings.Contains(name, suffix) {
			continue
		}
		media = append(media, filepath.Join(dir, name))
	}
	return media
}

// copyCleanMedia copies media that needs no redaction into the output
// directory, so the rewritten transcript's relative media URLs still resolve
// from there. Copies only happen when there is nothing to silence; media a
// flag excluded from processing is never duplicated.
func (a *Anonymizer) copyCleanMedia(transcriptPath, outDir, suffix string, opts Options) []string {
	var patterns []*regexp.Regexp
	if !opts.SkipAudio {
		patterns = append(patterns, a.audioPattern)
	}
	if !opts.SkipVideo {
		patterns = append(patterns, a.videoPattern)
	}

	var copies []string
	for _, pattern := range patterns {
		for _, input := range a.siblingMedia(transcriptPath, pattern, suffix) {
			output := filepath.Join(outDir, filepath.Base(input))
			if output == input {
				continue
			}
			if err := fileutil.CopyFile(input, output); err != nil {
				a.logger.Warn("media copy failed, skipping file",
					logging.String(logging.FieldMedia, input), logging.Error(err))
				continue
			}
			copies = append(copies, output)
		}
	}
	return copies
}

// reviewClips extracts one context-padded clip per interval from an
// anonymized output so a reviewer can verify each redaction. Clips are named
// after the interval itself, not the padded window, so each file maps back to
// a Postprocess annotation. Failures skip the clip and keep going.
func (a *Anonymizer) reviewClips(ctx context.Context, output string, intervals []elan.Interval, outDir string) []string {
	pad := a.cfg.Anonymize.ReviewContextMS
	ext := filepath.Ext(output)
	base := fileutil.Basename(output)

	durationMS, err := ffprobe.DurationMS(ctx, a.cfg.FFmpeg.ProbeBinary, output)
	if err != nil {
		// Without a duration the end of each window simply isn't clamped.
		a.logger.Warn("probe failed, review windows unclamped",
			logging.String(logging.FieldMedia, output), logging.Error(err))
		durationMS = 0
	}

	var clips []string
	for _, interval := range intervals {
		name := fmt.Sprintf("%s-%s_%s%s", base,
			textutil.FileTimestampMS(interval.StartMS), textutil.FileTimestampMS(interval.EndMS), ext)

		start := interval.StartMS - pad
		if start < 0 {
			start = 0
		}
		end := interval.EndMS + pad
		if durationMS > 0 && end > durationMS {
			end = durationMS
		}

		clip := filepath.Join(outDir, name)
		if err := a.runner.ExtractClip(ctx, output, start, end, clip); err != nil {
			a.logger.Warn("review clip failed, skipping",
				logging.String(logging.FieldMedia, output), logging.Error(err))
			continue
		}
		clips = append(clips, clip)
	}
	return clips
}

func spansOf(intervals []elan.Interval) []filtergraph.Span {
	spans := make([]filtergraph.Span, 0, len(intervals))
	for _, interval := range intervals {
		spans = append(spans, filtergraph.Span{StartMS: interval.StartMS, EndMS: interval.EndMS})
	}
	return spans
}
