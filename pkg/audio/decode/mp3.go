// ABOUTME: MP3 import through go-mp3
// ABOUTME: go-mp3 always emits 16-bit stereo at the file's sample rate
package decode

import (
	"fmt"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
)

type mp3Stream struct {
	file *os.File
	dec  *mp3.Decoder
}

func openMP3(path string) (audio.Format, io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return audio.Format{}, nil, err
	}

	dec, err := mp3.NewDecoder(file)
	if err != nil {
		_ = file.Close()

		return audio.Format{}, nil, fmt.Errorf("decode mp3 %s: %w", path, err)
	}

	f := audio.Format{
		SampleRate:    uint32(dec.SampleRate()),
		Channels:      2,
		BitsPerSample: 16,
		BlockAlign:    4,
	}

	return f, &mp3Stream{file: file, dec: dec}, nil
}

func (s *mp3Stream) Read(p []byte) (int, error) {
	return s.dec.Read(p)
}

func (s *mp3Stream) Close() error {
	return s.file.Close()
}
