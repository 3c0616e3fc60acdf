// ABOUTME: Tests for the Opus frame codec
// ABOUTME: Lossy round trips must preserve frame shape, not exact samples
package codec

import (
	"errors"
	"math"
	"testing"
)

func TestNewOpusEncoderInvalidRate(t *testing.T) {
	// Opus supports 8, 12, 16, 24 and 48 kHz only.
	if _, err := NewOpusEncoder(44100, 2, 882); err == nil {
		t.Fatal("expected error for 44100 Hz")
	}
}

func TestOpusEncodeRejectsPartialFrame(t *testing.T) {
	enc, err := NewOpusEncoder(48000, 2, 960)
	if err != nil {
		t.Fatalf("create encoder: %v", err)
	}

	if _, err := enc.Encode(make([]int16, 959*2)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("expected ErrFrameSize, got %v", err)
	}
}

func TestOpusRoundTripPreservesShape(t *testing.T) {
	const (
		rate      = 48000
		channels  = 2
		frameSize = 960 // 20ms
	)

	enc, err := NewOpusEncoder(rate, channels, frameSize)
	if err != nil {
		t.Fatalf("create encoder: %v", err)
	}
	dec, err := NewOpusDecoder(rate, channels, frameSize)
	if err != nil {
		t.Fatalf("create decoder: %v", err)
	}

	// 440 Hz sine, interleaved stereo.
	pcm := make([]int16, frameSize*channels)
	for i := 0; i < frameSize; i++ {
		s := int16(10000 * math.Sin(2*math.Pi*440*float64(i)/rate))
		pcm[i*2] = s
		pcm[i*2+1] = s
	}

	packet, err := enc.Encode(pcm)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(packet) == 0 || len(packet) >= len(pcm)*2 {
		t.Fatalf("packet of %d bytes, want non-empty and compressed", len(packet))
	}

	decoded, err := dec.Decode(packet)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != frameSize*channels {
		t.Fatalf("decoded %d samples, want %d", len(decoded), frameSize*channels)
	}
}

func TestOpusDecodeRejectsEmptyPacket(t *testing.T) {
	dec, err := NewOpusDecoder(48000, 2, 960)
	if err != nil {
		t.Fatalf("create decoder: %v", err)
	}

	if _, err := dec.Decode(nil); !errors.Is(err, ErrBadPacket) {
		t.Fatalf("empty packet: expected ErrBadPacket, got %v", err)
	}
	if _, err := dec.Decode([]byte{}); !errors.Is(err, ErrBadPacket) {
		t.Fatalf("zero-length packet: expected ErrBadPacket, got %v", err)
	}
}
