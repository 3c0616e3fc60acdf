//go:build linux && (amd64 || arm64)

// ABOUTME: Direct-hardware ALSA playback binding over /dev/snd ioctls
// ABOUTME: Owns the device file descriptor and the negotiation protocol
package alsa

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PCM is one open playback substream. It is not safe for concurrent use;
// the device layer above serializes access.
type PCM struct {
	file      *os.File
	subdevice uint32
}

// Request asks for a hardware configuration. Rate and PeriodFrames are
// treated as "near" values: the driver may snap them to supported ones.
type Request struct {
	Format       uint32 // FormatU8, FormatS16LE, FormatS243LE
	Channels     uint32
	Rate         uint32
	PeriodFrames uint32
	Periods      uint32
}

// Params is the configuration the driver actually granted. RateDir and
// PeriodDir record the rounding direction relative to the request
// (-1 below, 0 exact, +1 above).
type Params struct {
	Channels     uint32
	Rate         uint32
	PeriodFrames uint32
	Periods      uint32
	BufferFrames uint32
	RateDir      int32
	PeriodDir    int32
}

// Open resolves a playback device name and acquires its file handle.
// Accepted names: "default" (hw:0,0) or "hw:card,device". Like tinyalsa,
// only direct hardware PCM nodes are supported, not the plugin layer.
func Open(name string) (*PCM, error) {
	card, device, err := parseName(name)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/dev/snd/pcmC%dD%dp", card, device)

	// Open non-blocking first so a busy device fails instead of hanging,
	// then restore blocking I/O for the write path.
	file, err := os.OpenFile(path, os.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open PCM device %s: %w", path, err)
	}

	flags, err := unix.FcntlInt(file.Fd(), unix.F_GETFL, 0)
	if err == nil {
		_, err = unix.FcntlInt(file.Fd(), unix.F_SETFL, flags&^syscall.O_NONBLOCK)
	}
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("set blocking mode on %s: %w", path, err)
	}

	var info sndPcmInfo
	if err := ioctl(file.Fd(), sndrvPcmIoctlInfo, uintptr(unsafe.Pointer(&info))); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("ioctl INFO failed: %w", err)
	}

	return &PCM{file: file, subdevice: info.Subdevice}, nil
}

func parseName(name string) (card, device uint64, err error) {
	if name == "" || name == "default" {
		return 0, 0, nil
	}

	rest, ok := strings.CutPrefix(name, "hw:")
	if !ok {
		return 0, 0, fmt.Errorf("invalid PCM name %q: expected \"default\" or \"hw:card,device\"", name)
	}

	parts := strings.Split(rest, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid PCM name %q: expected \"hw:card,device\"", name)
	}

	if card, err = strconv.ParseUint(parts[0], 10, 32); err != nil {
		return 0, 0, fmt.Errorf("invalid card number %q: %w", parts[0], err)
	}
	if device, err = strconv.ParseUint(parts[1], 10, 32); err != nil {
		return 0, 0, fmt.Errorf("invalid device number %q: %w", parts[1], err)
	}

	return card, device, nil
}

// Negotiate runs the HW_PARAMS/SW_PARAMS exchange and prepares the stream.
// The first attempt pins rate and period size exactly; if the driver
// refuses, a second attempt asks for nearest-at-least values instead.
func (p *PCM) Negotiate(req Request) (Params, error) {
	hw, err := p.hwParams(req, true)
	if errors.Is(err, unix.EINVAL) {
		hw, err = p.hwParams(req, false)
	}
	if err != nil {
		return Params{}, fmt.Errorf("ioctl HW_PARAMS failed: %w", err)
	}

	granted := Params{
		Channels:     paramGetInt(hw, paramChannels),
		Rate:         paramGetInt(hw, paramRate),
		PeriodFrames: paramGetInt(hw, paramPeriodSize),
		Periods:      paramGetInt(hw, paramPeriods),
		RateDir:      direction(req.Rate, paramGetInt(hw, paramRate)),
		PeriodDir:    direction(req.PeriodFrames, paramGetInt(hw, paramPeriodSize)),
	}
	granted.BufferFrames = granted.PeriodFrames * granted.Periods

	if granted.Channels == 0 || granted.Rate == 0 || granted.PeriodFrames == 0 {
		return Params{}, fmt.Errorf("driver finalized invalid configuration (channels=%d rate=%d period=%d)",
			granted.Channels, granted.Rate, granted.PeriodFrames)
	}

	sw := sndPcmSwParams{
		TstampMode:     1, // SNDRV_PCM_TSTAMP_ENABLE
		PeriodStep:     1,
		AvailMin:       sndPcmUframesT(granted.PeriodFrames),
		StartThreshold: sndPcmUframesT(granted.PeriodFrames),
		StopThreshold:  sndPcmUframesT(granted.BufferFrames),
	}
	if err := ioctl(p.file.Fd(), sndrvPcmIoctlSwParams, uintptr(unsafe.Pointer(&sw))); err != nil {
		return Params{}, fmt.Errorf("ioctl SW_PARAMS failed: %w", err)
	}

	if err := ioctl(p.file.Fd(), sndrvPcmIoctlPrepare, 0); err != nil {
		return Params{}, fmt.Errorf("ioctl PREPARE failed: %w", err)
	}

	return granted, nil
}

func (p *PCM) hwParams(req Request, exact bool) (*sndPcmHwParams, error) {
	hw := &sndPcmHwParams{}
	paramInit(hw)

	paramSetMask(hw, paramAccess, accessRWInterleaved)
	paramSetMask(hw, paramFormat, req.Format)
	paramSetMask(hw, paramSubformat, 0) // SNDRV_PCM_SUBFORMAT_STD
	paramSetInt(hw, paramChannels, req.Channels)

	if exact {
		paramSetInt(hw, paramPeriods, req.Periods)
		paramSetInt(hw, paramRate, req.Rate)
		paramSetInt(hw, paramPeriodSize, req.PeriodFrames)
	} else {
		paramSetMin(hw, paramPeriods, req.Periods)
		paramSetMin(hw, paramRate, req.Rate)
		paramSetMin(hw, paramPeriodSize, req.PeriodFrames)
	}

	if err := ioctl(p.file.Fd(), sndrvPcmIoctlHwParams, uintptr(unsafe.Pointer(hw))); err != nil {
		return nil, err
	}

	return hw, nil
}

func direction(requested, granted uint32) int32 {
	switch {
	case granted < requested:
		return -1
	case granted > requested:
		return 1
	default:
		return 0
	}
}

// WriteFrames issues one blocking interleaved write of frames frames from
// buf. It returns the number of frames the kernel accepted. A failing call
// returns the native errno wrapped in the error chain; EPIPE means underrun.
func (p *PCM) WriteFrames(buf []byte, frames uint32) (uint32, error) {
	if frames == 0 {
		return 0, nil
	}

	xfer := sndXferi{
		Buf:    uintptr(unsafe.Pointer(&buf[0])),
		Frames: sndPcmUframesT(frames),
	}
	if err := ioctl(p.file.Fd(), sndrvPcmIoctlWriteiFrames, uintptr(unsafe.Pointer(&xfer))); err != nil {
		return 0, fmt.Errorf("ioctl WRITEI failed: %w", err)
	}

	return uint32(xfer.Result), nil
}

// Prepare readies the stream for I/O again, e.g. after an underrun.
func (p *PCM) Prepare() error {
	if err := ioctl(p.file.Fd(), sndrvPcmIoctlPrepare, 0); err != nil {
		return fmt.Errorf("ioctl PREPARE failed: %w", err)
	}

	return nil
}

// Drain blocks until all queued frames have been played.
func (p *PCM) Drain() error {
	if err := ioctl(p.file.Fd(), sndrvPcmIoctlDrain, 0); err != nil {
		return fmt.Errorf("ioctl DRAIN failed: %w", err)
	}

	return nil
}

// Drop discards all queued frames immediately. Dropping a stream that never
// started is a no-op rather than an error.
func (p *PCM) Drop() error {
	err := ioctl(p.file.Fd(), sndrvPcmIoctlDrop, 0)
	if err != nil && !errors.Is(err, unix.EBADFD) {
		return fmt.Errorf("ioctl DROP failed: %w", err)
	}

	return nil
}

// Close releases the device handle. The kernel stops the stream and frees
// hardware state when the descriptor closes.
func (p *PCM) Close() error {
	if p == nil || p.file == nil {
		return nil
	}

	err := p.file.Close()
	p.file = nil

	return err
}
