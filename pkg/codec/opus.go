// ABOUTME: Opus frame codec over libopus
// ABOUTME: Frame size is fixed at construction and must match the transport
package codec

import (
	"fmt"
	"log"

	"gopkg.in/hraban/opus.v2"
)

// maxPacketBytes is the largest packet libopus can emit.
const maxPacketBytes = 4000

// OpusEncoder encodes fixed-size PCM frames to Opus packets.
type OpusEncoder struct {
	encoder   *opus.Encoder
	channels  int
	frameSize int // samples per channel
}

// NewOpusEncoder creates an encoder. frameSize is in samples per channel and
// must be one of the Opus frame durations at the given rate (e.g. 960 for
// 20ms at 48kHz). Bitrate defaults to 64 kbps per channel.
func NewOpusEncoder(sampleRate, channels, frameSize int) (*OpusEncoder, error) {
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}

	if err := enc.SetBitrate(64000 * channels); err != nil {
		log.Printf("Warning: failed to set Opus bitrate: %v", err)
	}

	return &OpusEncoder{
		encoder:   enc,
		channels:  channels,
		frameSize: frameSize,
	}, nil
}

func (e *OpusEncoder) FrameSize() int { return e.frameSize }

// Encode compresses exactly one frame of interleaved samples.
func (e *OpusEncoder) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != e.frameSize*e.channels {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrFrameSize, len(pcm), e.frameSize*e.channels)
	}

	packet := make([]byte, maxPacketBytes)
	n, err := e.encoder.Encode(pcm, packet)
	if err != nil {
		return nil, fmt.Errorf("opus encode failed: %w", err)
	}

	return packet[:n], nil
}

// OpusDecoder decodes Opus packets to fixed-size PCM frames.
type OpusDecoder struct {
	decoder   *opus.Decoder
	channels  int
	frameSize int
}

// NewOpusDecoder creates a decoder with the same frame geometry as the
// sending encoder.
func NewOpusDecoder(sampleRate, channels, frameSize int) (*OpusDecoder, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}

	return &OpusDecoder{
		decoder:   dec,
		channels:  channels,
		frameSize: frameSize,
	}, nil
}

func (d *OpusDecoder) FrameSize() int { return d.frameSize }

// Decode expands one packet into one frame of interleaved samples.
func (d *OpusDecoder) Decode(packet []byte) ([]int16, error) {
	if len(packet) == 0 {
		return nil, ErrBadPacket
	}

	pcm := make([]int16, d.frameSize*d.channels)
	n, err := d.decoder.Decode(packet, pcm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPacket, err)
	}

	return pcm[:n*d.channels], nil
}
