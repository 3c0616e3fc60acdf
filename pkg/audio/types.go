// ABOUTME: Wire-level PCM format descriptor and sample math
// ABOUTME: Shared by the container reader, codec, transport and device layers
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Format describes raw interleaved PCM audio the way the container header
// carries it: little-endian samples, BlockAlign = Channels * BitsPerSample/8.
type Format struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	BlockAlign    uint16
}

// Validate checks the block-align invariant and that the sample width is one
// the playback path can express (8, 16 or 24 bit).
func (f Format) Validate() error {
	if f.SampleRate == 0 || f.Channels == 0 {
		return fmt.Errorf("invalid format: rate=%d channels=%d", f.SampleRate, f.Channels)
	}

	bytesPerSample := f.BitsPerSample / 8
	if bytesPerSample < 1 || bytesPerSample > 3 || f.BitsPerSample%8 != 0 {
		return fmt.Errorf("invalid format: %d bits per sample", f.BitsPerSample)
	}

	if f.BlockAlign != f.Channels*bytesPerSample {
		return fmt.Errorf("invalid format: block align %d, expected %d",
			f.BlockAlign, f.Channels*bytesPerSample)
	}

	return nil
}

// BytesPerSample returns the storage size of one sample of one channel.
func (f Format) BytesPerSample() int {
	return int(f.BitsPerSample) / 8
}

// FrameBytes converts a frame count (samples per channel) to bytes.
func (f Format) FrameBytes(frames int) int {
	return frames * int(f.BlockAlign)
}

// FramesForDuration returns the number of frames covering ms milliseconds.
func (f Format) FramesForDuration(ms int) int {
	return int(f.SampleRate) * ms / 1000
}

// FrameSource is the pull side of the streaming graph. Produce returns one
// frame of interleaved PCM bytes, or io.EOF once the stream is exhausted.
type FrameSource interface {
	Produce() ([]byte, error)
}

// FrameSink is the push side of the streaming graph.
type FrameSink interface {
	Accept(frame []byte) error
}

// ReaderSource adapts an io.Reader of raw PCM into a FrameSource emitting
// fixed-size frames.
type ReaderSource struct {
	r          io.Reader
	frameBytes int
	buf        []byte
}

// NewReaderSource creates a FrameSource reading frameBytes-sized frames.
// The slice returned by Produce is reused between calls.
func NewReaderSource(r io.Reader, frameBytes int) *ReaderSource {
	return &ReaderSource{
		r:          r,
		frameBytes: frameBytes,
		buf:        make([]byte, frameBytes),
	}
}

// Produce reads the next full frame. A partial trailing read is discarded and
// reported as io.EOF.
func (s *ReaderSource) Produce() ([]byte, error) {
	_, err := io.ReadFull(s.r, s.buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	return s.buf, nil
}

// S16LEToSamples unpacks little-endian 16-bit PCM bytes into int16 samples.
// A trailing odd byte is ignored.
func S16LEToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return samples
}

// SamplesToS16LE packs int16 samples into little-endian bytes.
func SamplesToS16LE(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	return data
}
