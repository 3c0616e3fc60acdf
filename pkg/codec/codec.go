// ABOUTME: Frame-granular codec interfaces and the lossless passthrough codec
// ABOUTME: One frame per encode call, one packet per decode call
package codec

import (
	"errors"
	"fmt"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
)

var (
	// ErrFrameSize is returned by Encode when the input is not exactly one
	// frame's worth of samples.
	ErrFrameSize = errors.New("codec: input is not exactly one frame")

	// ErrBadPacket is returned by Decode for empty or malformed packets.
	ErrBadPacket = errors.New("codec: malformed packet")
)

// Encoder compresses exactly one frame of interleaved int16 samples per
// call. The frame size is fixed for the lifetime of the encoder.
type Encoder interface {
	// Encode returns the compressed packet for one frame.
	Encode(pcm []int16) ([]byte, error)
	// FrameSize returns the frame size in samples per channel.
	FrameSize() int
}

// Decoder expands exactly one compressed packet into one frame of
// interleaved int16 samples per call.
type Decoder interface {
	Decode(packet []byte) ([]int16, error)
	FrameSize() int
}

// Passthrough is a lossless identity codec: packets are the little-endian
// byte image of the samples. Useful for tests and trusted local links.
type Passthrough struct {
	frameSize int
	channels  int
}

// NewPassthrough creates a passthrough codec for the given frame geometry.
func NewPassthrough(frameSize, channels int) *Passthrough {
	return &Passthrough{frameSize: frameSize, channels: channels}
}

func (p *Passthrough) FrameSize() int { return p.frameSize }

func (p *Passthrough) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != p.frameSize*p.channels {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrFrameSize, len(pcm), p.frameSize*p.channels)
	}

	return audio.SamplesToS16LE(pcm), nil
}

func (p *Passthrough) Decode(packet []byte) ([]int16, error) {
	want := p.frameSize * p.channels * 2
	if len(packet) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBadPacket, len(packet), want)
	}

	return audio.S16LEToSamples(packet), nil
}
