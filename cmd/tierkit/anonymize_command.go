package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tierkit/internal/anonymize"
	"tierkit/internal/logging"
	"tierkit/internal/services"
)

func newAnonymizeCommand(ctx *commandContext) *cobra.Command {
	var opts anonymize.Options

	cmd := &cobra.Command{
		Use:   "anonymize [flags] TRANSCRIPT...",
		Short: "Redact transcripts and their media",
		Long: "Replace marked-up annotation values with placeholders, silence and\n" +
			"blur the media spans listed on each transcript's Postprocess tier, and\n" +
			"write anonymized copies to the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runner, err := ctx.newRunner()
			if err != nil {
				return err
			}
			anonymizer, err := anonymize.New(cfg, runner, logger)
			if err != nil {
				return err
			}

			journal := ctx.openCatalog()
			defer journal.Close()

			return ctx.withRunLock(func() error {
				failed := 0
				for _, transcript := range args {
					var runID int64
					if journal != nil {
						if id, err := journal.Begin(cmd.Context(), "anonymize", transcript, cfg.Paths.OutputDir); err == nil {
							runID = id
						} else {
							logger.Warn("catalog write failed", logging.Error(err))
						}
					}

					result, err := anonymizer.Process(cmd.Context(), transcript, opts)
					if err != nil {
						failed++
						logger.Error("anonymization failed",
							logging.String(logging.FieldTranscript, transcript), logging.Error(err))
						if journal != nil && runID != 0 {
							_ = journal.Fail(cmd.Context(), runID, err.Error())
						}
						if !services.Skippable(err) {
							return err
						}
						continue
					}

					if journal != nil && runID != 0 {
						_ = journal.Complete(cmd.Context(), runID, len(result.Intervals), len(result.Outputs))
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d values redacted, %d intervals, %d files written\n",
						transcript, result.RedactedCount, len(result.Intervals), len(result.Outputs))
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d transcripts failed", failed, len(args))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", "", "Directory for anonymized output (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&opts.Suffix, "suffix", "", "Suffix appended to anonymized file names")
	cmd.Flags().BoolVar(&opts.Review, "review", false, "Extract a review clip around every redacted interval")
	cmd.Flags().BoolVar(&opts.SkipAudio, "no-audio", false, "Skip audio anonymization")
	cmd.Flags().BoolVar(&opts.SkipVideo, "no-video", false, "Skip video anonymization")
	cmd.Flags().BoolVar(&opts.SkipText, "no-text", false, "Skip writing the anonymized transcript")
	return cmd
}
