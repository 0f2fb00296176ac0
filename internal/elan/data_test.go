package elan

import (
	"errors"
	"testing"

	"tierkit/internal/services"
)

func TestAnnotationDataAligned(t *testing.T) {
	doc := parseSample(t)

	data, err := doc.AnnotationData("Transcription")
	if err != nil {
		t.Fatalf("AnnotationData() error = %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(data))
	}
	first := data[0]
	if first.StartMS != 1000 || first.EndMS != 2500 {
		t.Errorf("first span = (%d, %d), want (1000, 2500)", first.StartMS, first.EndMS)
	}
	if first.Value != "my name is [name]Mary[/name]" {
		t.Errorf("first value = %q", first.Value)
	}
	if first.RefValue != "" {
		t.Errorf("aligned annotation should carry no ref value, got %q", first.RefValue)
	}
}

func TestAnnotationDataReferential(t *testing.T) {
	doc := parseSample(t)

	data, err := doc.AnnotationData("Translation")
	if err != nil {
		t.Fatalf("AnnotationData() error = %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(data))
	}
	second := data[1]
	if second.StartMS != 3000 || second.EndMS != 4200 {
		t.Errorf("second span = (%d, %d), want parent span (3000, 4200)", second.StartMS, second.EndMS)
	}
	if second.Value != "translated two" {
		t.Errorf("second value = %q", second.Value)
	}
	if second.RefValue != "clean text" {
		t.Errorf("second ref value = %q, want parent value", second.RefValue)
	}
}

func TestAnnotationDataUnknownTier(t *testing.T) {
	doc := parseSample(t)
	_, err := doc.AnnotationData("Nope")
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSetValuePreservesStructure(t *testing.T) {
	doc := parseSample(t)

	doc.SetValue("Transcription", 1000, 2500, "my name is (NAME)")

	tier, _ := doc.Tier("Transcription")
	ann := tier.Annotations[0]
	if ann.Value != "my name is (NAME)" {
		t.Errorf("value = %q, want mutated value", ann.Value)
	}
	if ann.ID != "a1" || ann.StartSlot != "ts1" || ann.EndSlot != "ts2" {
		t.Error("identifier or slot references changed during SetValue")
	}

	// Looking the annotation up by its original span returns the new value.
	data, err := doc.AnnotationData("Transcription")
	if err != nil {
		t.Fatalf("AnnotationData() error = %v", err)
	}
	if data[0].Value != "my name is (NAME)" {
		t.Errorf("lookup by span = %q", data[0].Value)
	}
}

func TestSetValueReferentialBySpan(t *testing.T) {
	doc := parseSample(t)

	// Referential annotations are addressed by their parent's span.
	doc.SetValue("Translation", 1000, 2500, "redacted translation")

	tier, _ := doc.Tier("Translation")
	if tier.Annotations[0].Value != "redacted translation" {
		t.Errorf("value = %q", tier.Annotations[0].Value)
	}
	if tier.Annotations[1].Value != "translated two" {
		t.Error("sibling annotation was mutated")
	}
}

func TestSetValueNoMatchIsNoOp(t *testing.T) {
	doc := parseSample(t)
	doc.SetValue("Transcription", 1, 2, "x")
	doc.SetValue("Nope", 1000, 2500, "x")

	tier, _ := doc.Tier("Transcription")
	if tier.Annotations[0].Value != "my name is [name]Mary[/name]" {
		t.Error("no-match SetValue mutated an annotation")
	}
}

func TestIntervals(t *testing.T) {
	doc := parseSample(t)

	intervals := doc.Intervals("Postprocess")
	if len(intervals) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(intervals))
	}
	if intervals[0].StartMS != 1200 || intervals[0].EndMS != 1800 {
		t.Errorf("interval = (%d, %d), want (1200, 1800)", intervals[0].StartMS, intervals[0].EndMS)
	}
	if intervals[0].Value != "blur face" {
		t.Errorf("interval value = %q", intervals[0].Value)
	}
	if got := doc.Intervals("Missing"); got != nil {
		t.Errorf("Intervals on missing tier = %v, want nil", got)
	}
}

func TestRefValueAt(t *testing.T) {
	doc := parseSample(t)

	value, ok := doc.RefValueAt("Translation", 3600)
	if !ok || value != "translated two" {
		t.Errorf("RefValueAt(3600) = %q, %v", value, ok)
	}
	// Span ends are exclusive.
	if _, ok := doc.RefValueAt("Translation", 2500); ok {
		t.Error("RefValueAt at span end should not match")
	}
	if _, ok := doc.RefValueAt("Translation", 100); ok {
		t.Error("RefValueAt outside all spans should not match")
	}
}

func TestTierByType(t *testing.T) {
	doc := parseSample(t)

	id, ok := doc.TierByType("event")
	if !ok || id != "Postprocess" {
		t.Errorf("TierByType(event) = %q, %v", id, ok)
	}
	if _, ok := doc.TierByType("nothing"); ok {
		t.Error("TierByType should miss unknown types")
	}
}
