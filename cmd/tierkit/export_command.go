package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tierkit/internal/export"
	"tierkit/internal/logging"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var opts export.Options
	var originalAnnotator, repeater, repetitionAnnotator, translator, translationAnnotator string

	cmd := &cobra.Command{
		Use:   "export [flags] TRANSCRIPT",
		Short: "Export an oral annotation session transcript",
		Long: "Build an ELAN transcript for the three-channel WAV that SayMore\n" +
			"generates from an orally annotated session, and optionally generate\n" +
			"that combined audio as well.",
		Args: cobra.ExactArgs(1),
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

			// Flags override the configured session participants.
			if originalAnnotator != "" {
				cfg.Export.OriginalAnnotator = originalAnnotator
			}
			if repeater != "" {
				cfg.Export.Repeater = repeater
			}
			if repetitionAnnotator != "" {
				cfg.Export.RepetitionAnnotator = repetitionAnnotator
			}
			if translator != "" {
				cfg.Export.Translator = translator
			}
			if translationAnnotator != "" {
				cfg.Export.TranslationAnnotator = translationAnnotator
			}
			if opts.OutputDir == "" {
				opts.OutputDir = cfg.Paths.OutputDir
			}

			exporter := export.New(cfg, runner, logger)
			transcript := args[0]

			journal := ctx.openCatalog()
			defer journal.Close()

			return ctx.withRunLock(func() error {
				var runID int64
				if journal != nil {
					if id, err := journal.Begin(cmd.Context(), "export", transcript, opts.OutputDir); err == nil {
						runID = id
					} else {
						logger.Warn("catalog write failed", logging.Error(err))
					}
				}

				result, err := exporter.Process(cmd.Context(), transcript, opts)
				if err != nil {
					if journal != nil && runID != 0 {
						_ = journal.Fail(cmd.Context(), runID, err.Error())
					}
					return err
				}

				outputs := 1
				if result.Audio != "" {
					outputs = 2
				}
				if journal != nil && runID != 0 {
					_ = journal.Complete(cmd.Context(), runID, result.Utterances, outputs)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%d utterances exported to %s\n", result.Utterances, result.Transcript)
				if result.Audio != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "combined audio written to %s\n", result.Audio)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", "", "Directory for output files (defaults to paths.output_dir)")
	cmd.Flags().StringVarP(&opts.OutputPrefix, "output-prefix", "o", "", "First component of output file names")
	cmd.Flags().BoolVarP(&opts.GenerateAudio, "generate-audio", "a", false, "Generate the combined three-channel audio")
	cmd.Flags().BoolVarP(&opts.Anonymize, "anonymize", "A", false, "Anonymize exported text and audio")
	cmd.Flags().StringVar(&originalAnnotator, "original-annotator", "", "Annotator of the source transcriptions")
	cmd.Flags().StringVarP(&repeater, "repeater", "r", "", "Contributor who provided careful repetitions")
	cmd.Flags().StringVar(&repetitionAnnotator, "repetition-annotator", "", "Annotator of the careful repetitions")
	cmd.Flags().StringVarP(&translator, "translator", "t", "", "Contributor who provided free translations")
	cmd.Flags().StringVar(&translationAnnotator, "translation-annotator", "", "Annotator of the free translations")
	return cmd
}
