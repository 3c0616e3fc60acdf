// ABOUTME: Tests for the passthrough codec and frame-size contracts
// ABOUTME: Round trips must preserve sample count and order
package codec

import (
	"errors"
	"testing"
)

func TestPassthroughRoundTrip(t *testing.T) {
	c := NewPassthrough(240, 2)

	pcm := make([]int16, 480)
	for i := range pcm {
		pcm[i] = int16(i - 240)
	}

	packet, err := c.Encode(pcm)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := c.Decode(packet)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(pcm) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(pcm))
	}
	for i := range pcm {
		if decoded[i] != pcm[i] {
			t.Fatalf("sample %d = %d, want %d", i, decoded[i], pcm[i])
		}
	}
}

func TestPassthroughRejectsPartialFrame(t *testing.T) {
	c := NewPassthrough(240, 2)

	if _, err := c.Encode(make([]int16, 479)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("expected ErrFrameSize, got %v", err)
	}
}

func TestPassthroughRejectsMalformedPacket(t *testing.T) {
	c := NewPassthrough(240, 2)

	for _, n := range []int{0, 1, 959, 961} {
		if _, err := c.Decode(make([]byte, n)); !errors.Is(err, ErrBadPacket) {
			t.Fatalf("packet of %d bytes: expected ErrBadPacket, got %v", n, err)
		}
	}
}
