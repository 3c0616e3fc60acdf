// ABOUTME: Source file import: dispatches a path to the right decoder
// ABOUTME: Everything comes back out as interleaved little-endian PCM
package decode

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/audio/wave"
)

// Open opens an audio file and returns its format plus a reader of
// interleaved little-endian PCM at the file's native width. MP3 and FLAC
// are decoded on the fly; .wav and raw container files pass through the
// wave package. The caller owns the returned ReadCloser.
func Open(path string) (audio.Format, io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return openMP3(path)
	case ".flac":
		return openFLAC(path)
	case ".wav", ".pcm", ".raw":
		return wave.OpenFile(path)
	default:
		return audio.Format{}, nil, fmt.Errorf("decode: unsupported source %q", filepath.Ext(path))
	}
}
