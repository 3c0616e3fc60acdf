// ABOUTME: Container reading: the fixed raw PCM header and RIFF/WAVE import
// ABOUTME: Pure extraction of a format descriptor plus a payload reader
package wave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
)

// Format is the descriptor the container carries.
type Format = audio.Format

// HeaderSize is the fixed size of the raw container header: sampleRate u32,
// channels u16, bitsPerSample u16, blockAlign u16, little-endian, followed
// immediately by interleaved PCM payload.
const HeaderSize = 10

// ErrMalformed is returned when a container header is truncated or its
// fields violate the block-align invariant.
var ErrMalformed = errors.New("wave: malformed container header")

// ReadHeader extracts the format descriptor from the fixed raw header.
// After a successful return, r is positioned at the first payload byte.
func ReadHeader(r io.Reader) (Format, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Format{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	f := Format{
		SampleRate:    binary.LittleEndian.Uint32(header[0:4]),
		Channels:      binary.LittleEndian.Uint16(header[4:6]),
		BitsPerSample: binary.LittleEndian.Uint16(header[6:8]),
		BlockAlign:    binary.LittleEndian.Uint16(header[8:10]),
	}
	if err := f.Validate(); err != nil {
		return Format{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return f, nil
}

// WriteHeader emits the fixed raw header for the descriptor.
func WriteHeader(w io.Writer, f Format) error {
	if err := f.Validate(); err != nil {
		return err
	}

	var header [HeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], f.SampleRate)
	binary.LittleEndian.PutUint16(header[4:6], f.Channels)
	binary.LittleEndian.PutUint16(header[6:8], f.BitsPerSample)
	binary.LittleEndian.PutUint16(header[8:10], f.BlockAlign)

	_, err := w.Write(header[:])

	return err
}

// Decode reads the raw header and hands back the descriptor and the payload
// reader (the rest of r).
func Decode(r io.Reader) (Format, io.Reader, error) {
	f, err := ReadHeader(r)
	if err != nil {
		return Format{}, nil, err
	}

	return f, r, nil
}

// OpenFile opens a container file, sniffing RIFF/WAVE against the raw
// layout. Standard .wav files are imported through go-audio; anything else
// must start with the raw header. The caller owns the returned ReadCloser.
func OpenFile(path string) (Format, io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return Format{}, nil, err
	}

	var magic [4]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil {
		_ = file.Close()

		return Format{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()

		return Format{}, nil, err
	}

	if string(magic[:]) == "RIFF" {
		f, stream, err := newRIFFStream(file)
		if err != nil {
			_ = file.Close()

			return Format{}, nil, err
		}

		return f, stream, nil
	}

	f, err := ReadHeader(file)
	if err != nil {
		_ = file.Close()

		return Format{}, nil, err
	}

	return f, file, nil
}
