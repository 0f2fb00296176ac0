package audio

import (
	"errors"
	"path/filepath"
	"testing"

	"tierkit/internal/services"
)

func rampSegment(samples, rate, depth int) Segment {
	data := make([]int, samples)
	for i := range data {
		data[i] = i % 128
	}
	return Segment{data: data, sampleRate: rate, bitDepth: depth}
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")

	seg := rampSegment(8000, 8000, 16)
	if err := seg.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	got, err := FromWAV(path)
	if err != nil {
		t.Fatalf("FromWAV: %v", err)
	}
	if got.SampleRate() != 8000 || got.BitDepth() != 16 {
		t.Fatalf("format lost: %dHz/%dbit", got.SampleRate(), got.BitDepth())
	}
	if got.Samples() != seg.Samples() {
		t.Fatalf("sample count: got %d, want %d", got.Samples(), seg.Samples())
	}
	if got.DurationMS() != 1000 {
		t.Fatalf("duration: got %dms, want 1000ms", got.DurationMS())
	}
	for i, v := range got.data {
		if v != seg.data[i] {
			t.Fatalf("sample %d: got %d, want %d", i, v, seg.data[i])
		}
	}
}

func TestFromWAVMissingFile(t *testing.T) {
	_, err := FromWAV(filepath.Join(t.TempDir(), "nope.wav"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSlice(t *testing.T) {
	seg := rampSegment(8000, 8000, 16) // 1s at 8kHz

	mid := seg.Slice(250, 750)
	if mid.Samples() != 4000 {
		t.Fatalf("slice samples = %d, want 4000", mid.Samples())
	}
	if mid.DurationMS() != 500 {
		t.Fatalf("slice duration = %dms, want 500ms", mid.DurationMS())
	}
	if mid.data[0] != seg.data[2000] {
		t.Fatal("slice start misaligned")
	}

	clamped := seg.Slice(900, 5000)
	if clamped.DurationMS() != 100 {
		t.Fatalf("clamped duration = %dms, want 100ms", clamped.DurationMS())
	}

	empty := seg.Slice(500, 500)
	if !empty.Empty() {
		t.Fatal("zero-width slice should be empty")
	}
	if empty.SampleRate() != 8000 {
		t.Fatal("empty slice should keep format")
	}
}

func TestSilent(t *testing.T) {
	s := Silent(250, 16000, 16)
	if s.Samples() != 4000 {
		t.Fatalf("silent samples = %d, want 4000", s.Samples())
	}
	for _, v := range s.data {
		if v != 0 {
			t.Fatal("silence contains non-zero samples")
		}
	}
}

func TestSilentLike(t *testing.T) {
	seg := rampSegment(1234, 8000, 24)
	s := seg.SilentLike()
	if s.Samples() != seg.Samples() || s.SampleRate() != 8000 || s.BitDepth() != 24 {
		t.Fatal("SilentLike did not preserve shape")
	}
}

func TestAppend(t *testing.T) {
	a := rampSegment(100, 8000, 16)
	b := Silent(100, 8000, 16)

	joined, err := a.Append(b)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if joined.Samples() != a.Samples()+b.Samples() {
		t.Fatalf("joined samples = %d", joined.Samples())
	}

	// Appending onto the zero value adopts the other's format.
	var empty Segment
	adopted, err := empty.Append(a)
	if err != nil {
		t.Fatalf("Append onto empty: %v", err)
	}
	if adopted.SampleRate() != 8000 {
		t.Fatal("empty append did not adopt format")
	}
}

func TestAppendFormatMismatch(t *testing.T) {
	a := rampSegment(10, 8000, 16)
	b := rampSegment(10, 44100, 16)
	if _, err := a.Append(b); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteWAVRejectsZeroValue(t *testing.T) {
	var s Segment
	if err := s.WriteWAV(filepath.Join(t.TempDir(), "zero.wav")); err == nil {
		t.Fatal("expected error writing zero-value segment")
	}
}
