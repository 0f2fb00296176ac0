package audio

import (
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"tierkit/internal/services"
)

// Segment is a mono PCM buffer with its sample format.
//
// The zero value is the empty segment: it has no format of its own and
// adopts the format of whatever it is appended to.
type Segment struct {
	data       []int
	sampleRate int
	bitDepth   int
}

// FromWAV decodes the WAV file at path into a Segment.
func FromWAV(path string) (Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Segment{}, services.Wrap(services.ErrNotFound, "audio", "open wav", path, err)
	}
	defer f.Close()

	seg, err := Decode(f)
	if err != nil {
		return Segment{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return seg, nil
}

// Decode reads a mono WAV stream into a Segment.
func Decode(r io.ReadSeeker) (Segment, error) {
	decoder := wav.NewDecoder(r)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Segment{}, fmt.Errorf("read pcm: %w", err)
	}
	if buf.Format == nil {
		return Segment{}, fmt.Errorf("read pcm: missing format")
	}
	if buf.Format.NumChannels != 1 {
		return Segment{}, services.Wrap(services.ErrValidation, "audio", "decode",
			fmt.Sprintf("expected mono input, got %d channels", buf.Format.NumChannels), nil)
	}
	return Segment{
		data:       buf.Data,
		sampleRate: buf.Format.SampleRate,
		bitDepth:   int(decoder.BitDepth),
	}, nil
}

// Silent returns a segment of zero samples covering durationMS at the given
// format.
func Silent(durationMS int64, sampleRate, bitDepth int) Segment {
	n := samplesForMS(durationMS, sampleRate)
	return Segment{
		data:       make([]int, n),
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
	}
}

// SilentLike returns a silence segment with the same duration and format as s.
func (s Segment) SilentLike() Segment {
	return Segment{
		data:       make([]int, len(s.data)),
		sampleRate: s.sampleRate,
		bitDepth:   s.bitDepth,
	}
}

// Slice returns the sub-segment covering [startMS, endMS), clamped to the
// segment bounds.
func (s Segment) Slice(startMS, endMS int64) Segment {
	start := samplesForMS(startMS, s.sampleRate)
	end := samplesForMS(endMS, s.sampleRate)
	if start < 0 {
		start = 0
	}
	if end > len(s.data) {
		end = len(s.data)
	}
	if start >= end {
		return Segment{sampleRate: s.sampleRate, bitDepth: s.bitDepth}
	}
	return Segment{
		data:       s.data[start:end],
		sampleRate: s.sampleRate,
		bitDepth:   s.bitDepth,
	}
}

// Append concatenates other onto s and returns the result. Appending the
// empty segment is a no-op; appending onto the empty segment adopts the
// other's format. Differing sample formats are an error: session clips are
// expected to share one recording format, and resampling silently would
// desynchronize the merged timeline.
func (s Segment) Append(other Segment) (Segment, error) {
	if other.Empty() && other.sampleRate == 0 {
		return s, nil
	}
	if s.Empty() && s.sampleRate == 0 {
		return other, nil
	}
	if s.sampleRate != other.sampleRate || s.bitDepth != other.bitDepth {
		return Segment{}, services.Wrap(services.ErrValidation, "audio", "append",
			fmt.Sprintf("format mismatch: %dHz/%dbit vs %dHz/%dbit",
				s.sampleRate, s.bitDepth, other.sampleRate, other.bitDepth), nil)
	}
	joined := make([]int, 0, len(s.data)+len(other.data))
	joined = append(joined, s.data...)
	joined = append(joined, other.data...)
	return Segment{data: joined, sampleRate: s.sampleRate, bitDepth: s.bitDepth}, nil
}

// DurationMS returns the segment length in milliseconds.
func (s Segment) DurationMS() int64 {
	if s.sampleRate == 0 {
		return 0
	}
	return int64(len(s.data)) * 1000 / int64(s.sampleRate)
}

// Empty reports whether the segment holds no samples.
func (s Segment) Empty() bool { return len(s.data) == 0 }

// SampleRate returns the segment's sample rate in Hz.
func (s Segment) SampleRate() int { return s.sampleRate }

// BitDepth returns the segment's bit depth.
func (s Segment) BitDepth() int { return s.bitDepth }

// Samples returns the number of PCM samples in the segment.
func (s Segment) Samples() int { return len(s.data) }

// WriteWAV encodes the segment as a mono PCM WAV file at path.
func (s Segment) WriteWAV(path string) error {
	if s.sampleRate == 0 || s.bitDepth == 0 {
		return services.Wrap(services.ErrValidation, "audio", "write wav", "segment has no sample format", nil)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	encoder := wav.NewEncoder(f, s.sampleRate, s.bitDepth, 1, 1)
	buf := &gaudio.IntBuffer{
		Data:           s.data,
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: s.sampleRate},
		SourceBitDepth: s.bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		encoder.Close()
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return f.Close()
}

func samplesForMS(ms int64, sampleRate int) int {
	return int(ms * int64(sampleRate) / 1000)
}
