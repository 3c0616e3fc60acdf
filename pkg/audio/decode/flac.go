// ABOUTME: FLAC import through mewkiz/flac
// ABOUTME: Planar frame samples are interleaved and packed at native width
package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
)

type flacStream struct {
	stream  *flac.Stream
	format  audio.Format
	pending []byte
}

func openFLAC(path string) (audio.Format, io.ReadCloser, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return audio.Format{}, nil, fmt.Errorf("decode flac %s: %w", path, err)
	}

	info := stream.Info
	f := audio.Format{
		SampleRate:    info.SampleRate,
		Channels:      uint16(info.NChannels),
		BitsPerSample: uint16(info.BitsPerSample),
		BlockAlign:    uint16(info.NChannels) * uint16(info.BitsPerSample) / 8,
	}
	if err := f.Validate(); err != nil {
		_ = stream.Close()

		return audio.Format{}, nil, fmt.Errorf("decode flac %s: %w", path, err)
	}

	return f, &flacStream{stream: stream, format: f}, nil
}

func (s *flacStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		fr, err := s.stream.ParseNext()
		if err != nil {
			return 0, err
		}

		channels := make([][]int32, len(fr.Subframes))
		for i, sub := range fr.Subframes {
			channels[i] = sub.Samples
		}
		s.pending = interleave(channels, s.format.BytesPerSample())
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

func (s *flacStream) Close() error {
	return s.stream.Close()
}

// interleave turns planar per-channel samples into interleaved little-endian
// PCM bytes at the given sample width.
func interleave(channels [][]int32, bytesPerSample int) []byte {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil
	}

	frames := len(channels[0])
	out := make([]byte, frames*len(channels)*bytesPerSample)
	off := 0
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			v := ch[i]
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
			off += bytesPerSample
		}
	}

	return out
}
