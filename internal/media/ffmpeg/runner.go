package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"tierkit/internal/config"
	"tierkit/internal/fileutil"
	"tierkit/internal/logging"
	"tierkit/internal/media/filtergraph"
	"tierkit/internal/services"
	"tierkit/internal/textutil"
)

// Runner invokes ffmpeg for anonymization, clip extraction, and track joins.
type Runner struct {
	binary      string
	videoPreset string
	videoCRF    int
	blurRadius  int
	audioCodec  string
	clipPreset  string
	logger      *slog.Logger
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		binary:      cfg.FFmpeg.Binary,
		videoPreset: cfg.FFmpeg.VideoPreset,
		videoCRF:    cfg.FFmpeg.VideoCRF,
		blurRadius:  cfg.FFmpeg.BlurRadius,
		audioCodec:  cfg.FFmpeg.AudioCodec,
		clipPreset:  cfg.FFmpeg.ClipPreset,
		logger:      logger,
	}
}

// SilenceAudio writes an anonymized copy of the audio file at input, with
// each span replaced by silence, to "<outDir>/<basename><suffix>.wav" and
// returns the output path.
func (r *Runner) SilenceAudio(ctx context.Context, input string, spans []filtergraph.Span, outDir, suffix string) (string, error) {
	output := fileutil.DerivedName(input, outDir, suffix, ".wav")
	err := r.runWithFilterScript(ctx, "silence audio", filtergraph.Mute(spans), func(script string) []string {
		return []string{
			"-y",
			"-v", "0",
			"-i", input,
			"-c:a", r.audioCodec,
			"-/filter_complex", script,
			output,
		}
	})
	if err != nil {
		return "", err
	}
	return output, nil
}

// BlurVideo writes an anonymized copy of the video file at input, with each
// span silenced and covered by a full-frame box blur, to
// "<outDir>/<basename><suffix>.mp4" and returns the output path.
func (r *Runner) BlurVideo(ctx context.Context, input string, spans []filtergraph.Span, outDir, suffix string) (string, error) {
	output := fileutil.DerivedName(input, outDir, suffix, ".mp4")
	program := filtergraph.BlurAndMute(spans, r.blurRadius)
	err := r.runWithFilterScript(ctx, "blur video", program, func(script string) []string {
		return []string{
			"-y",
			"-v", "0",
			"-i", input,
			"-c:v", "libx264",
			"-preset", r.videoPreset,
			"-crf", fmt.Sprintf("%d", r.videoCRF),
			"-/filter_complex", script,
			"-movflags", "+faststart",
			output,
		}
	})
	if err != nil {
		return "", err
	}
	return output, nil
}

// ExtractClip cuts [startMS, endMS) out of input into output. The video is
// re-encoded with a fast preset; stream-copying would leave blank frames for
// clips starting before an I-frame.
func (r *Runner) ExtractClip(ctx context.Context, input string, startMS, endMS int64, output string) error {
	args := []string{
		"-y",
		"-v", "0",
		"-fflags", "+genpts",
		"-i", input,
		"-ss", textutil.TimestampMS(startMS),
		"-t", filtergraph.FormatSeconds(endMS - startMS),
		"-acodec", "copy",
		"-vcodec", "libx264",
		"-preset", r.clipPreset,
		"-avoid_negative_ts", "1",
		output,
	}
	return r.run(ctx, "extract clip", args)
}

// JoinTracks merges three mono WAV files into one three-channel (3.0 layout)
// WAV at output, matching the track order SayMore uses: original, careful
// repetition, free translation.
func (r *Runner) JoinTracks(ctx context.Context, original, repetition, translation, output string) error {
	args := []string{
		"-y",
		"-v", "0",
		"-i", original,
		"-i", repetition,
		"-i", translation,
		"-filter_complex", "[0:a][1:a][2:a]join=inputs=3:channel_layout=3.0",
		output,
	}
	return r.run(ctx, "join tracks", args)
}

// runWithFilterScript writes program to a temporary filter-script file,
// invokes ffmpeg with the argument list built from its path, and removes the
// script afterwards regardless of outcome.
func (r *Runner) runWithFilterScript(ctx context.Context, operation, program string, buildArgs func(script string) []string) error {
	script, err := os.CreateTemp("", "tierkit-filter-*.txt")
	if err != nil {
		return fmt.Errorf("create filter script: %w", err)
	}
	defer os.Remove(script.Name())

	if _, err := script.WriteString(program); err != nil {
		script.Close()
		return fmt.Errorf("write filter script: %w", err)
	}
	if err := script.Close(); err != nil {
		return fmt.Errorf("close filter script: %w", err)
	}

	return r.run(ctx, operation, buildArgs(script.Name()))
}

func (r *Runner) run(ctx context.Context, operation string, args []string) error {
	binary := strings.TrimSpace(r.binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	r.logger.Debug("invoking ffmpeg",
		logging.String("operation", operation),
		logging.String(logging.FieldCommand, binary+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, strings.TrimSpace(string(output)), err)
	}
	return nil
}
