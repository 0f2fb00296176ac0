// Package export builds an oral annotation session transcript, and
// optionally its combined three-track audio, from a SayMore ELAN transcript
// and the per-utterance clips SayMore records alongside it.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"tierkit/internal/config"
	"tierkit/internal/elan"
	"tierkit/internal/logging"
	"tierkit/internal/media/audio"
	"tierkit/internal/media/ffmpeg"
	"tierkit/internal/redact"
	"tierkit/internal/services"
	"tierkit/internal/textutil"
)

// Linguistic types located in the source transcript.
const (
	sourceTextType        = "Transcription"
	sourceTranslationType = "Translation"
	sourceMetadataType    = "SayMoreify-Metadata"
)

// Options control one export run. Zero values fall back to configured
// defaults.
type Options struct {
	OutputDir     string
	OutputPrefix  string
	GenerateAudio bool
	Anonymize     bool
}

// Result reports what one export produced.
type Result struct {
	Transcript string
	Audio      string
	Utterances int
}

// Exporter drives the oral annotation export pipeline.
type Exporter struct {
	cfg    *config.Config
	runner *ffmpeg.Runner
	logger *slog.Logger
}

// New builds an Exporter.
func New(cfg *config.Config, runner *ffmpeg.Runner, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{cfg: cfg, runner: runner, logger: logger}
}

// utterance is one non-ignored source annotation with its texts and clips
// resolved. Repetition and translation clips are optional; the original clip
// is always sliced out of the source audio.
type utterance struct {
	orig   string
	rep    string
	trans  string
	source string

	origClip  audio.Segment
	repClip   audio.Segment
	transClip audio.Segment
	hasRep    bool
	hasTrans  bool

	// Aligned annotation IDs assigned during the merge; referential
	// children link back through these.
	origID  elan.AnnotationID
	repID   elan.AnnotationID
	transID elan.AnnotationID
}

// cursor is the explicit merge state: where the next clip lands on the
// shared output timeline. Identifier allocation lives in the document
// builder; the cursor only tracks time.
type cursor struct {
	offsetMS int64
}

// place binds one aligned annotation spanning the clip at the current offset
// and advances the offset by the clip's length.
func (c *cursor) place(b *elan.Builder, tier *elan.Tier, clip audio.Segment, value string) elan.AnnotationID {
	length := clip.DurationMS()
	id := b.AddAligned(tier, c.offsetMS, c.offsetMS+length, value)
	c.offsetMS += length
	return id
}

// ClipName returns the SayMore oral annotation clip file name for a source
// span: "<start>_to_<end>_<kind>.wav" with seconds trimmed of trailing
// zeros. Kind is "Careful" or "Translation".
func ClipName(startMS, endMS int64, kind string) string {
	return fmt.Sprintf("%s_to_%s_%s.wav",
		textutil.TrimmedSeconds(startMS), textutil.TrimmedSeconds(endMS), kind)
}

// Process exports one SayMore transcript.
func (e *Exporter) Process(ctx context.Context, transcriptPath string, opts Options) (*Result, error) {
	doc, err := elan.Load(transcriptPath)
	if err != nil {
		return nil, err
	}

	textTier, err := tierOfType(doc, sourceTextType)
	if err != nil {
		return nil, err
	}
	translationTier, err := tierOfType(doc, sourceTranslationType)
	if err != nil {
		return nil, err
	}
	metadataTier, err := tierOfType(doc, sourceMetadataType)
	if err != nil {
		return nil, err
	}

	srcAudio, err := findSourceAudio(transcriptPath, doc)
	if err != nil {
		return nil, err
	}
	oaDir := srcAudio + "_Annotations"
	if info, err := os.Stat(oaDir); err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "export", "locate clips",
			fmt.Sprintf("no oral annotations directory %q", oaDir), nil)
	}

	srcSeg, err := audio.FromWAV(srcAudio)
	if err != nil {
		return nil, err
	}

	utterances, err := e.collect(doc, textTier, translationTier, metadataTier, srcSeg, oaDir, opts.Anonymize)
	if err != nil {
		return nil, err
	}
	e.logger.Info("utterances collected",
		logging.String(logging.FieldTranscript, transcriptPath),
		logging.Int(logging.FieldUtterance, len(utterances)))

	audioPath, eafPath, err := outputNames(srcAudio, opts)
	if err != nil {
		return nil, err
	}

	merged, err := e.merge(utterances, audioPath)
	if err != nil {
		return nil, err
	}
	if err := merged.Save(eafPath); err != nil {
		return nil, err
	}
	e.logger.Info("transcript written", logging.String(logging.FieldOutput, eafPath))

	result := &Result{Transcript: eafPath, Utterances: len(utterances)}
	if opts.GenerateAudio && len(utterances) == 0 {
		e.logger.Warn("no utterances, skipping audio generation",
			logging.String(logging.FieldTranscript, transcriptPath))
	} else if opts.GenerateAudio {
		if err := e.generateAudio(ctx, utterances, audioPath); err != nil {
			return nil, err
		}
		result.Audio = audioPath
		e.logger.Info("audio written", logging.String(logging.FieldOutput, audioPath))
	}
	return result, nil
}

func tierOfType(doc *elan.Document, linguisticType string) (string, error) {
	id, ok := doc.TierByType(linguisticType)
	if !ok {
		return "", services.Wrap(services.ErrValidation, "export", "locate tier",
			fmt.Sprintf("no tier of linguistic type %q", linguisticType), nil)
	}
	return id, nil
}

// findSourceAudio resolves the transcript's media descriptors to the first
// WAV file that exists on disk.
func findSourceAudio(transcriptPath string, doc *elan.Document) (string, error) {
	for _, md := range doc.Header.MediaDescriptors {
		media := elan.FindLocalMedia(transcriptPath, md)
		if media != "" && strings.HasSuffix(strings.ToLower(media), ".wav") {
			return media, nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "export", "locate audio",
		"no WAV media descriptor resolves to a local file", nil)
}

// outputNames derives the combined audio and transcript paths from the
// source audio name, an optional prefix, and an optional output directory.
func outputNames(srcAudio string, opts Options) (audioPath, eafPath string, err error) {
	if opts.OutputPrefix != "" {
		audioPath = filepath.Join(filepath.Dir(srcAudio), opts.OutputPrefix+".wav")
	} else {
		audioPath = srcAudio + ".oralAnnotations.wav"
	}
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return "", "", fmt.Errorf("create output directory: %w", err)
		}
		audioPath = filepath.Join(opts.OutputDir, filepath.Base(audioPath))
	}
	if opts.OutputPrefix != "" {
		eafPath = filepath.Join(filepath.Dir(audioPath), opts.OutputPrefix+".eaf")
	} else {
		eafPath = audioPath + ".annotations.eaf"
	}
	return audioPath, eafPath, nil
}

// collect walks the source transcription in span order and resolves each
// non-ignored annotation into an utterance.
func (e *Exporter) collect(doc *elan.Document, textTier, translationTier, metadataTier string, srcSeg audio.Segment, oaDir string, anonymize bool) ([]*utterance, error) {
	data, err := doc.AnnotationData(textTier)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(data, func(i, j int) bool {
		if data[i].StartMS != data[j].StartMS {
			return data[i].StartMS < data[j].StartMS
		}
		return data[i].EndMS < data[j].EndMS
	})

	var utterances []*utterance
	for _, datum := range data {
		if datum.Value == e.cfg.Export.IgnoreMarker {
			continue
		}

		u := &utterance{}
		if strings.Contains(datum.Value, e.cfg.Export.SplitSeparator) {
			parts := strings.SplitN(datum.Value, e.cfg.Export.SplitSeparator, 2)
			u.orig, u.rep = parts[0], parts[1]
		} else {
			u.orig = datum.Value
		}

		mid := (datum.StartMS + datum.EndMS) / 2
		u.trans, _ = doc.RefValueAt(translationTier, mid)
		u.source, _ = doc.RefValueAt(metadataTier, mid)

		var origRedacted, repRedacted, transRedacted bool
		if anonymize {
			u.orig, origRedacted = redact.Apply(u.orig)
			u.rep, repRedacted = redact.Apply(u.rep)
			u.trans, transRedacted = redact.Apply(u.trans)
		}

		u.origClip = srcSeg.Slice(datum.StartMS, datum.EndMS)
		if origRedacted {
			u.origClip = u.origClip.SilentLike()
		}

		repPath := filepath.Join(oaDir, ClipName(datum.StartMS, datum.EndMS, "Careful"))
		if fileExists(repPath) {
			clip, err := audio.FromWAV(repPath)
			if err != nil {
				return nil, err
			}
			u.repClip, u.hasRep = clip, true
			if repRedacted {
				u.repClip = u.repClip.SilentLike()
			}
		}

		transPath := filepath.Join(oaDir, ClipName(datum.StartMS, datum.EndMS, "Translation"))
		if fileExists(transPath) {
			clip, err := audio.FromWAV(transPath)
			if err != nil {
				return nil, err
			}
			u.transClip, u.hasTrans = clip, true
			if transRedacted {
				u.transClip = u.transClip.SilentLike()
			}
		}

		utterances = append(utterances, u)
	}
	return utterances, nil
}

// merge lays every present clip onto a single shared timeline (original,
// then repetition, then translation, per utterance) and builds the output
// document around it.
func (e *Exporter) merge(utterances []*utterance, audioPath string) (*elan.Document, error) {
	b := elan.NewBuilder("")

	absAudio, err := filepath.Abs(audioPath)
	if err != nil {
		absAudio = audioPath
	}
	b.AddMediaDescriptor(elan.MediaDescriptor{
		MediaURL:         "file://" + absAudio,
		RelativeMediaURL: "./" + filepath.Base(audioPath),
		MimeType:         "audio/x-wav",
	})

	srcLang, err := b.AddLanguage(e.cfg.Export.SourceLanguage)
	if err != nil {
		return nil, err
	}
	transLang, err := b.AddLanguage(e.cfg.Export.TranslationLanguage)
	if err != nil {
		return nil, err
	}

	b.AddLinguisticType(elan.LinguisticType{ID: "oral-annotation-text", TimeAlignable: true})
	b.AddLinguisticType(elan.LinguisticType{ID: "oral-annotation-id", Constraints: "Symbolic_Association"})
	b.AddLinguisticType(elan.LinguisticType{ID: "oral-annotation-source", Constraints: "Symbolic_Association"})
	b.AddLinguisticType(elan.LinguisticType{ID: "event", TimeAlignable: true})

	exp := e.cfg.Export
	original := b.AddAlignedTier("Original", "oral-annotation-text", "", exp.OriginalAnnotator, srcLang)
	originalID := b.AddReferentialTier("Original-ID", "oral-annotation-id", "Original", "")
	originalSource := b.AddReferentialTier("Original-Source", "oral-annotation-source", "Original", "")
	repetition := b.AddAlignedTier("Repetition", "oral-annotation-text", exp.Repeater, exp.RepetitionAnnotator, srcLang)
	repetitionID := b.AddReferentialTier("Repetition-ID", "oral-annotation-id", "Repetition", "")
	translation := b.AddAlignedTier("Translation", "oral-annotation-text", exp.Translator, exp.TranslationAnnotator, transLang)
	translationID := b.AddReferentialTier("Translation-ID", "oral-annotation-id", "Translation", "")
	b.AddAlignedTier("Postprocess", "event", "", "", "")

	cur := cursor{}
	for _, u := range utterances {
		u.origID = cur.place(b, original, u.origClip, u.orig)
		if u.hasRep {
			u.repID = cur.place(b, repetition, u.repClip, u.rep)
		}
		if u.hasTrans {
			u.transID = cur.place(b, translation, u.transClip, u.trans)
		}
	}

	// Referential children carry each utterance's ordinal among the
	// non-ignored source annotations, so related annotations across tiers
	// share a number even when some clips are missing.
	for i, u := range utterances {
		b.AddRef(originalID, u.origID, strconv.Itoa(i))
	}
	for _, u := range utterances {
		b.AddRef(originalSource, u.origID, u.source)
	}
	for i, u := range utterances {
		if u.hasRep {
			b.AddRef(repetitionID, u.repID, strconv.Itoa(i))
		}
	}
	for i, u := range utterances {
		if u.hasTrans {
			b.AddRef(translationID, u.transID, strconv.Itoa(i))
		}
	}

	return b.Document()
}

// assembleTracks builds the three per-track segments. Each utterance
// contributes its clip to one track and equal-length silence to the other
// two, so all three tracks end up the same total duration.
func assembleTracks(utterances []*utterance) (audio.Segment, audio.Segment, audio.Segment, error) {
	var orig, rep, trans audio.Segment
	for _, u := range utterances {
		silentOrig := u.origClip.SilentLike()
		repClip, silentRep := u.repClip, u.repClip.SilentLike()
		transClip, silentTrans := u.transClip, u.transClip.SilentLike()

		var err error
		if orig, err = appendAll(orig, u.origClip, silentRep, silentTrans); err != nil {
			return orig, rep, trans, err
		}
		if rep, err = appendAll(rep, silentOrig, repClip, silentTrans); err != nil {
			return orig, rep, trans, err
		}
		if trans, err = appendAll(trans, silentOrig, silentRep, transClip); err != nil {
			return orig, rep, trans, err
		}
	}
	return orig, rep, trans, nil
}

// generateAudio exports the three assembled tracks to temp WAVs and joins
// them into one three-channel file.
func (e *Exporter) generateAudio(ctx context.Context, utterances []*utterance, audioPath string) error {
	orig, rep, trans, err := assembleTracks(utterances)
	if err != nil {
		return err
	}

	tracks := []audio.Segment{orig, rep, trans}
	paths := make([]string, len(tracks))
	for i, track := range tracks {
		f, err := os.CreateTemp("", "tierkit-track-*.wav")
		if err != nil {
			return fmt.Errorf("create track file: %w", err)
		}
		paths[i] = f.Name()
		f.Close()
		defer os.Remove(paths[i])

		if err := track.WriteWAV(paths[i]); err != nil {
			return err
		}
	}

	return e.runner.JoinTracks(ctx, paths[0], paths[1], paths[2], audioPath)
}

func appendAll(track audio.Segment, clips ...audio.Segment) (audio.Segment, error) {
	var err error
	for _, clip := range clips {
		if track, err = track.Append(clip); err != nil {
			return track, err
		}
	}
	return track, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
