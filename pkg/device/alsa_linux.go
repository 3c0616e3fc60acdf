//go:build linux && (amd64 || arm64)

// ABOUTME: ALSA-backed binding, the default on Linux
// ABOUTME: Maps the device layer's request/params onto the ioctl binding
package device

import (
	"github.com/pcmcast/pcmcast-go/internal/alsa"
)

// ALSABinding opens direct-hardware ALSA playback devices.
type ALSABinding struct{}

// DefaultBinding returns the ALSA binding.
func DefaultBinding() Binding { return ALSABinding{} }

func (ALSABinding) Open(name string) (Handle, error) {
	pcm, err := alsa.Open(name)
	if err != nil {
		return nil, err
	}

	return &alsaHandle{pcm: pcm}, nil
}

type alsaHandle struct {
	pcm *alsa.PCM
}

func (h *alsaHandle) Negotiate(req HardwareRequest) (HardwareParams, error) {
	var format uint32
	switch req.Encoding {
	case EncodingU8:
		format = alsa.FormatU8
	case EncodingS24LE:
		format = alsa.FormatS243LE
	default:
		format = alsa.FormatS16LE
	}

	granted, err := h.pcm.Negotiate(alsa.Request{
		Format:       format,
		Channels:     uint32(req.Channels),
		Rate:         uint32(req.Rate),
		PeriodFrames: uint32(req.PeriodFrames),
		Periods:      uint32(req.Periods),
	})
	if err != nil {
		return HardwareParams{}, err
	}

	return HardwareParams{
		Channels:     int(granted.Channels),
		Rate:         int(granted.Rate),
		PeriodFrames: int(granted.PeriodFrames),
		Periods:      int(granted.Periods),
		BufferFrames: int(granted.BufferFrames),
		RateDir:      int(granted.RateDir),
		PeriodDir:    int(granted.PeriodDir),
	}, nil
}

func (h *alsaHandle) WriteFrames(buf []byte, frames int) (int, error) {
	n, err := h.pcm.WriteFrames(buf, uint32(frames))

	return int(n), err
}

func (h *alsaHandle) Drain() error { return h.pcm.Drain() }
func (h *alsaHandle) Drop() error  { return h.pcm.Drop() }
func (h *alsaHandle) Close() error { return h.pcm.Close() }
