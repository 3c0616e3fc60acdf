// ABOUTME: PCM output device state machine over a native driver binding
// ABOUTME: Owns one hardware handle per open/close cycle and the write loop
package device

import (
	"fmt"
	"io"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
)

// Encoding selects the native sample encoding, keyed by bytes per sample.
type Encoding int

const (
	EncodingU8    Encoding = iota // unsigned 8-bit
	EncodingS16LE                 // signed 16-bit little-endian
	EncodingS24LE                 // signed 24-bit little-endian, packed 3 bytes
)

// HardwareRequest is the configuration handed to a native binding.
// Rate and PeriodFrames are requests; the driver may snap them.
type HardwareRequest struct {
	Encoding     Encoding
	Channels     int
	Rate         int
	PeriodFrames int
	Periods      int
}

// HardwareParams is what the driver granted. The *Dir fields record the
// rounding direction relative to the request (-1 below, 0 exact, +1 above).
type HardwareParams struct {
	Channels     int
	Rate         int
	PeriodFrames int
	Periods      int
	BufferFrames int
	RateDir      int
	PeriodDir    int
}

// Handle is one open native playback stream.
type Handle interface {
	Negotiate(req HardwareRequest) (HardwareParams, error)
	// WriteFrames issues one blocking interleaved write and returns the
	// number of frames accepted.
	WriteFrames(buf []byte, frames int) (int, error)
	Drain() error
	Drop() error
	Close() error
}

// Binding resolves platform device names to open handles.
type Binding interface {
	Open(name string) (Handle, error)
}

// Period is the transfer block size the driver granted, in frames, together
// with the rounding direction it used and the granted sample rate. The rate
// is reported so callers can decide whether to adopt it; the descriptor they
// configured with is never rewritten behind their back.
type Period struct {
	FrameCount uint64
	Dir        int32
	Rate       uint32
}

// State is the lifecycle position of a Device.
type State int

const (
	StateClosed State = iota
	StateOpened
	StateConfigured
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpened:
		return "opened"
	case StateConfigured:
		return "configured"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Defaults for the period request when the caller has no preference.
// 1024 frames x 4 periods is the common driver sweet spot.
const (
	defaultPeriodFrames = 1024
	defaultPeriods      = 4
)

// Device mediates all access to exactly one native playback handle.
//
// Methods are not safe for concurrent use; Close may be called only after
// WriteLoop has returned unless the underlying binding documents otherwise.
type Device struct {
	binding Binding
	handle  Handle
	state   State

	format       audio.Format
	period       Period
	periodFrames int // caller preference, 0 for driver default

	transfer []byte
	silence  byte
}

// New creates a closed Device over the given binding.
func New(binding Binding) *Device {
	return &Device{binding: binding, state: StateClosed}
}

// NewDefault creates a Device over the platform's default binding
// (ALSA on Linux, the portable backend elsewhere).
func NewDefault() *Device {
	return New(DefaultBinding())
}

// State returns the current lifecycle position.
func (d *Device) State() State { return d.state }

// Period returns the negotiated period. Valid once Configure has succeeded.
func (d *Device) Period() Period { return d.period }

// SetPeriodFrames overrides the period size requested from the driver.
// Must be called before Configure.
func (d *Device) SetPeriodFrames(frames int) { d.periodFrames = frames }

// Open resolves the named playback device and acquires its handle.
func (d *Device) Open(name string) error {
	if d.state != StateClosed {
		return fmt.Errorf("%w: open from %s", ErrInvalidState, d.state)
	}

	handle, err := d.binding.Open(name)
	if err != nil {
		return &OpenError{Name: name, Err: err}
	}

	d.handle = handle
	d.state = StateOpened

	return nil
}

// Configure negotiates hardware parameters for the format and returns the
// granted Period. An unsupported sample width fails before the driver is
// touched and leaves the device Opened. A driver-level negotiation failure
// releases the handle and leaves the device Closed; the handle is never
// leaked on a failure path.
func (d *Device) Configure(format audio.Format) (Period, error) {
	if d.state != StateOpened {
		return Period{}, fmt.Errorf("%w: configure from %s", ErrInvalidState, d.state)
	}

	encoding, err := encodingFor(format)
	if err != nil {
		return Period{}, err
	}

	req := HardwareRequest{
		Encoding:     encoding,
		Channels:     int(format.Channels),
		Rate:         int(format.SampleRate),
		PeriodFrames: d.periodFrames,
		Periods:      defaultPeriods,
	}
	if req.PeriodFrames == 0 {
		req.PeriodFrames = defaultPeriodFrames
	}

	granted, err := d.handle.Negotiate(req)
	if err != nil {
		_ = d.handle.Close()
		d.handle = nil
		d.state = StateClosed

		return Period{}, fmt.Errorf("device: configure: %w", err)
	}

	d.format = format
	d.period = Period{
		FrameCount: uint64(granted.PeriodFrames),
		Dir:        int32(granted.PeriodDir),
		Rate:       uint32(granted.Rate),
	}

	d.transfer = make([]byte, granted.PeriodFrames*int(format.BlockAlign))
	if encoding == EncodingU8 {
		d.silence = 0x80 // unsigned midpoint
	} else {
		d.silence = 0x00
	}

	d.state = StateConfigured

	return d.period, nil
}

func encodingFor(format audio.Format) (Encoding, error) {
	switch format.BitsPerSample / 8 {
	case 1:
		return EncodingU8, nil
	case 2:
		return EncodingS16LE, nil
	case 3:
		return EncodingS24LE, nil
	default:
		return 0, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, format.BitsPerSample)
	}
}

// WriteLoop streams src to the device in period-sized blocks until the
// source is exhausted. A short final read is zero-padded to a full period
// (silence byte for unsigned formats) so the last transfer is always whole.
// A failed native write aborts the loop with a WriteError; it is not retried.
func (d *Device) WriteLoop(src io.Reader) error {
	if d.state != StateConfigured && d.state != StateStreaming {
		return fmt.Errorf("%w: write loop from %s", ErrInvalidState, d.state)
	}

	d.state = StateStreaming
	frames := int(d.period.FrameCount)

	for {
		n, err := io.ReadFull(src, d.transfer)
		switch {
		case err == io.EOF:
			return nil
		case err == io.ErrUnexpectedEOF:
			for i := n; i < len(d.transfer); i++ {
				d.transfer[i] = d.silence
			}
			if _, werr := d.handle.WriteFrames(d.transfer, frames); werr != nil {
				return newWriteError(werr)
			}

			return nil
		case err != nil:
			return fmt.Errorf("device: read source: %w", err)
		}

		if _, werr := d.handle.WriteFrames(d.transfer, frames); werr != nil {
			return newWriteError(werr)
		}
	}
}

// Accept pushes one frame of PCM bytes straight to the hardware, so the
// device can stand in as a sink node outside the write loop. The frame must
// be a whole number of hardware frames.
func (d *Device) Accept(frame []byte) error {
	if d.state != StateConfigured && d.state != StateStreaming {
		return fmt.Errorf("%w: accept from %s", ErrInvalidState, d.state)
	}
	if len(frame)%int(d.format.BlockAlign) != 0 {
		return fmt.Errorf("device: frame of %d bytes is not block-aligned", len(frame))
	}

	d.state = StateStreaming
	if _, err := d.handle.WriteFrames(frame, len(frame)/int(d.format.BlockAlign)); err != nil {
		return newWriteError(err)
	}

	return nil
}

// Close stops the stream and releases the native handle. With drop set,
// pending hardware-buffered samples are discarded; otherwise Close blocks
// until they have finished playing. The handle is released unconditionally,
// even when the drain or drop fails. Closing a closed device is a no-op.
func (d *Device) Close(drop bool) error {
	if d.state == StateClosed {
		return nil
	}

	var opErr error
	if d.state == StateConfigured || d.state == StateStreaming {
		if drop {
			opErr = d.handle.Drop()
		} else {
			opErr = d.handle.Drain()
		}
	}

	closeErr := d.handle.Close()
	d.handle = nil
	d.state = StateClosed

	if opErr != nil {
		return fmt.Errorf("device: close: %w", opErr)
	}
	if closeErr != nil {
		return fmt.Errorf("device: close: %w", closeErr)
	}

	return nil
}
