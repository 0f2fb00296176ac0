package elan

import (
	"strings"
	"testing"
)

func TestBuilderAllocation(t *testing.T) {
	b := NewBuilder("tierkit")
	b.AddLinguisticType(LinguisticType{ID: "oral-annotation-text", TimeAlignable: true})
	original := b.AddAlignedTier("Original", "oral-annotation-text", "SPK", "ann", "")

	first := b.AddAligned(original, 0, 1500, "one")
	second := b.AddAligned(original, 1500, 2000, "two")
	if first != "a1" || second != "a2" {
		t.Errorf("annotation IDs = %s, %s, want a1, a2", first, second)
	}

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(doc.Timeslots) != 4 {
		t.Fatalf("timeslots = %d, want 4 (two per aligned annotation)", len(doc.Timeslots))
	}
	wantSlots := []struct {
		id TimeslotID
		ms int64
	}{{"ts1", 0}, {"ts2", 1500}, {"ts3", 1500}, {"ts4", 2000}}
	for i, want := range wantSlots {
		got := doc.Timeslots[i]
		if got.ID != want.id || got.ValueMS != want.ms || !got.Defined {
			t.Errorf("slot %d = %+v, want %s=%d", i, got, want.id, want.ms)
		}
	}
}

func TestBuilderReferentialChildren(t *testing.T) {
	b := NewBuilder("tierkit")
	b.AddLinguisticType(LinguisticType{ID: "oral-annotation-text", TimeAlignable: true})
	b.AddLinguisticType(LinguisticType{ID: "oral-annotation-id", Constraints: "Symbolic_Association"})
	original := b.AddAlignedTier("Original", "oral-annotation-text", "SPK", "ann", "")
	ids := b.AddReferentialTier("Original-ID", "oral-annotation-id", "Original", "ann")

	parent := b.AddAligned(original, 0, 1000, "utterance")
	child := b.AddRef(ids, parent, "1")
	if child != "a2" {
		t.Errorf("ref annotation ID = %s, want a2", child)
	}

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	value, ok := doc.RefValueAt("Original-ID", 500)
	if !ok || value != "1" {
		t.Errorf("RefValueAt = %q, %v", value, ok)
	}
	// Referential annotations consume annotation IDs only, never timeslots.
	if len(doc.Timeslots) != 2 {
		t.Errorf("timeslots = %d, want 2", len(doc.Timeslots))
	}
}

func TestBuilderEnvelope(t *testing.T) {
	b := NewBuilder("tierkit")
	b.AddLinguisticType(LinguisticType{ID: "event", TimeAlignable: true})
	tier := b.AddAlignedTier("Postprocess", "event", "", "", "")
	b.AddAligned(tier, 0, 10, "x")

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if doc.Format != "3.0" || doc.Version != "3.0" {
		t.Errorf("format/version = %s/%s", doc.Format, doc.Version)
	}
	if doc.Header.TimeUnits != "milliseconds" {
		t.Errorf("time units = %q", doc.Header.TimeUnits)
	}
	if len(doc.Constraints) != 4 {
		t.Errorf("constraints = %d, want the 4 stereotypes", len(doc.Constraints))
	}

	var urn, lastID string
	for _, prop := range doc.Header.Properties {
		switch prop.Name {
		case "URN":
			urn = prop.Value
		case "lastUsedAnnotationId":
			lastID = prop.Value
		}
	}
	if !strings.HasPrefix(urn, "urn:nl-mpi-tools-elan-eaf:") {
		t.Errorf("URN = %q", urn)
	}
	if lastID != "1" {
		t.Errorf("lastUsedAnnotationId = %q, want 1", lastID)
	}
}

func TestBuilderLanguages(t *testing.T) {
	b := NewBuilder("tierkit")

	eng, err := b.AddLanguage("eng")
	if err != nil {
		t.Fatalf("AddLanguage(eng) error = %v", err)
	}
	if eng == "" {
		t.Fatal("empty language ID")
	}
	// Declaring the same language twice yields one entry.
	again, err := b.AddLanguage("eng")
	if err != nil {
		t.Fatalf("AddLanguage(eng) again error = %v", err)
	}
	if again != eng {
		t.Errorf("second AddLanguage = %q, want %q", again, eng)
	}

	b.AddLinguisticType(LinguisticType{ID: "event", TimeAlignable: true})
	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(doc.Languages) != 1 {
		t.Errorf("languages = %d, want 1", len(doc.Languages))
	}
	if doc.Languages[0].Label == "" {
		t.Error("language label should never be empty")
	}

	if _, err := b.AddLanguage("!!"); err == nil {
		t.Error("expected error for an unparseable tag")
	}
}

func TestBuilderRejectsDanglingParent(t *testing.T) {
	b := NewBuilder("tierkit")
	b.AddLinguisticType(LinguisticType{ID: "oral-annotation-id", Constraints: "Symbolic_Association"})
	b.AddReferentialTier("Orphan-ID", "oral-annotation-id", "Missing", "")

	if _, err := b.Document(); err == nil {
		t.Fatal("expected validation error for missing parent tier")
	}
}

func TestBuiltDocumentRoundTrips(t *testing.T) {
	b := NewBuilder("tierkit")
	b.AddLinguisticType(LinguisticType{ID: "oral-annotation-text", TimeAlignable: true})
	b.AddMediaDescriptor(MediaDescriptor{
		MediaURL:         "file:///out/session.oralAnnotations.wav",
		RelativeMediaURL: "./session.oralAnnotations.wav",
		MimeType:         "audio/x-wav",
	})
	tier := b.AddAlignedTier("Original", "oral-annotation-text", "SPK", "ann", "")
	b.AddAligned(tier, 0, 2000, "hello")

	doc, err := b.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	raw, err := doc.MarshalEAF()
	if err != nil {
		t.Fatalf("MarshalEAF() error = %v", err)
	}
	again, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(built document) error = %v", err)
	}
	data, err := again.AnnotationData("Original")
	if err != nil || len(data) != 1 || data[0].Value != "hello" {
		t.Errorf("round trip data = %v, %v", data, err)
	}
}
