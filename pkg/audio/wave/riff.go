// ABOUTME: RIFF/WAVE import through go-audio
// ABOUTME: Streams the data chunk back out as interleaved little-endian PCM
package wave

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// riffChunkSamples is how many samples are pulled from the decoder per
// refill. A multiple of common channel counts so chunks stay frame-aligned.
const riffChunkSamples = 4800

// riffStream adapts a go-audio wav decoder to a plain byte reader of
// interleaved little-endian PCM at the file's native bit depth.
type riffStream struct {
	file    *os.File
	dec     *wav.Decoder
	ints    *goaudio.IntBuffer
	pending []byte
	sample  int // bytes per sample
}

func newRIFFStream(file *os.File) (Format, io.ReadCloser, error) {
	dec := wav.NewDecoder(file)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return Format{}, nil, fmt.Errorf("%w: not a PCM RIFF/WAVE file", ErrMalformed)
	}
	if err := dec.FwdToPCM(); err != nil {
		return Format{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	f := Format{
		SampleRate:    dec.SampleRate,
		Channels:      dec.NumChans,
		BitsPerSample: dec.BitDepth,
		BlockAlign:    dec.NumChans * dec.BitDepth / 8,
	}
	if err := f.Validate(); err != nil {
		return Format{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return f, &riffStream{
		file:   file,
		dec:    dec,
		ints:   &goaudio.IntBuffer{Data: make([]int, riffChunkSamples)},
		sample: int(f.BitsPerSample) / 8,
	}, nil
}

func (s *riffStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		n, err := s.dec.PCMBuffer(s.ints)
		if n == 0 {
			if err != nil && err != io.EOF {
				return 0, err
			}

			return 0, io.EOF
		}
		s.pending = packSamples(s.ints.Data[:n], s.sample)
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

func (s *riffStream) Close() error {
	return s.file.Close()
}

// packSamples writes decoder ints back out as little-endian PCM bytes at
// the source width. 8-bit WAV audio is unsigned, wider widths are signed.
func packSamples(data []int, bytesPerSample int) []byte {
	out := make([]byte, len(data)*bytesPerSample)
	for i, v := range data {
		off := i * bytesPerSample
		switch bytesPerSample {
		case 1:
			out[off] = byte(v)
		case 2:
			out[off] = byte(v)
			out[off+1] = byte(v >> 8)
		case 3:
			out[off] = byte(v)
			out[off+1] = byte(v >> 8)
			out[off+2] = byte(v >> 16)
		}
	}

	return out
}
