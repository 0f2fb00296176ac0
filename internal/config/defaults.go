package config

const (
	defaultOutputDir           = "~/anonymized"
	defaultLogDir              = "~/.local/share/tierkit/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultVideoPreset         = "veryslow"
	defaultVideoCRF            = 17
	defaultBlurRadius          = 10
	defaultAudioCodec          = "pcm_s24le"
	defaultClipPreset          = "veryfast"
	defaultOutputSuffix        = "-ANONYMIZED"
	defaultAudioPattern        = `\.wav$`
	defaultVideoPattern        = `\.mp4$`
	defaultReviewContextMS     = 1000
	defaultSplitSeparator      = " || "
	defaultIgnoreMarker        = "%ignore%"
	defaultSourceLanguage      = "srs"
	defaultTranslationLanguage = "eng"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		FFmpeg: FFmpeg{
			Binary:      defaultFFmpegBinary,
			ProbeBinary: defaultFFprobeBinary,
			VideoPreset: defaultVideoPreset,
			VideoCRF:    defaultVideoCRF,
			BlurRadius:  defaultBlurRadius,
			AudioCodec:  defaultAudioCodec,
			ClipPreset:  defaultClipPreset,
		},
		Anonymize: Anonymize{
			OutputSuffix:    defaultOutputSuffix,
			AudioPattern:    defaultAudioPattern,
			VideoPattern:    defaultVideoPattern,
			ReviewContextMS: defaultReviewContextMS,
		},
		Export: Export{
			SplitSeparator:      defaultSplitSeparator,
			IgnoreMarker:        defaultIgnoreMarker,
			SourceLanguage:      defaultSourceLanguage,
			TranslationLanguage: defaultTranslationLanguage,
		},
		Catalog: Catalog{
			Enabled: true,
		},
	}
}
