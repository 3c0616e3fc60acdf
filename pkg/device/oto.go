// ABOUTME: Portable playback binding over the oto library
// ABOUTME: No hardware negotiation; the request is echoed back as granted
package device

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// PortableBinding plays through oto. It has no notion of hardware periods,
// so Negotiate grants the requested geometry unchanged. 24-bit formats are
// not supported by oto and are rejected.
type PortableBinding struct{}

func (PortableBinding) Open(name string) (Handle, error) {
	// oto always talks to the system default output; any other name cannot
	// be resolved by this backend.
	if name != "" && name != "default" {
		return nil, fmt.Errorf("portable backend cannot resolve device %q", name)
	}

	return &otoHandle{}, nil
}

type otoHandle struct {
	ctx    *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	closed bool
}

func (h *otoHandle) Negotiate(req HardwareRequest) (HardwareParams, error) {
	var format oto.Format
	switch req.Encoding {
	case EncodingU8:
		format = oto.FormatUnsignedInt8
	case EncodingS16LE:
		format = oto.FormatSignedInt16LE
	default:
		return HardwareParams{}, fmt.Errorf("%w: portable backend has no 24-bit output", ErrUnsupportedFormat)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   req.Rate,
		ChannelCount: req.Channels,
		Format:       format,
	})
	if err != nil {
		return HardwareParams{}, fmt.Errorf("create oto context: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	h.ctx = ctx
	h.player = player
	h.pw = pw

	return HardwareParams{
		Channels:     req.Channels,
		Rate:         req.Rate,
		PeriodFrames: req.PeriodFrames,
		Periods:      req.Periods,
		BufferFrames: req.PeriodFrames * req.Periods,
	}, nil
}

func (h *otoHandle) WriteFrames(buf []byte, frames int) (int, error) {
	if h.pw == nil {
		return 0, fmt.Errorf("portable backend not negotiated")
	}

	// The pipe blocks until the player consumes the bytes, which is the
	// backpressure the device layer expects from a native write.
	if _, err := h.pw.Write(buf); err != nil {
		return 0, err
	}

	return frames, nil
}

func (h *otoHandle) Drain() error {
	if h.player == nil {
		return nil
	}

	_ = h.pw.Close()
	for h.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	return nil
}

func (h *otoHandle) Drop() error {
	if h.player == nil {
		return nil
	}

	_ = h.pw.CloseWithError(io.ErrClosedPipe)

	return h.closePlayer()
}

func (h *otoHandle) Close() error {
	if h.player == nil || h.closed {
		return nil
	}
	_ = h.pw.Close()

	return h.closePlayer()
}

func (h *otoHandle) closePlayer() error {
	if h.closed {
		return nil
	}
	h.closed = true

	err := h.player.Close()
	h.ctx.Suspend()

	return err
}
