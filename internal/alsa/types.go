//go:build linux && (amd64 || arm64)

// ABOUTME: Kernel ABI struct layouts for the ALSA PCM interface
// ABOUTME: Field order and padding must match the C headers exactly
package alsa

// sndPcmUframesT is an unsigned long in the ALSA headers; 64-bit here.
type sndPcmUframesT = uint64

// sndMask is a bitmask for enumerated hardware parameters.
type sndMask struct {
	Bits [8]uint32
}

// sndInterval is a value range for numeric hardware parameters.
type sndInterval struct {
	MinVal uint32
	MaxVal uint32
	Flags  uint32
}

// Flag bits of sndInterval.Flags, mirroring the C bitfields in order.
const (
	intervalOpenMin = 1 << 0
	intervalOpenMax = 1 << 1
	intervalInteger = 1 << 2
	intervalEmpty   = 1 << 3
)

// sndPcmInfo describes an open PCM substream.
type sndPcmInfo struct {
	Device          uint32
	Subdevice       uint32
	Stream          int32
	Card            int32
	Id              [64]byte
	Name            [80]byte
	Subname         [32]byte
	DevClass        int32
	DevSubclass     int32
	SubdevicesCount uint32
	SubdevicesAvail uint32
	Sync            [16]byte
	Reserved        [64]byte
}

// sndPcmHwParams carries the hardware parameter negotiation state.
type sndPcmHwParams struct {
	Flags     uint32
	Masks     [3]sndMask
	Mres      [5]sndMask
	Intervals [12]sndInterval
	Ires      [9]sndInterval
	Rmask     uint32
	Cmask     uint32
	Info      uint32
	Msbits    uint32
	RateNum   uint32
	RateDen   uint32
	FifoSize  sndPcmUframesT
	Reserved  [64]byte
}

// sndPcmSwParams carries the software parameters. The 4-byte pad after
// SleepMin aligns the following unsigned longs on 64-bit systems.
type sndPcmSwParams struct {
	TstampMode       uint32
	PeriodStep       uint32
	SleepMin         uint32
	_                [4]byte
	AvailMin         sndPcmUframesT
	XferAlign        sndPcmUframesT
	StartThreshold   sndPcmUframesT
	StopThreshold    sndPcmUframesT
	SilenceThreshold sndPcmUframesT
	SilenceSize      sndPcmUframesT
	Boundary         sndPcmUframesT
	Reserved         [64]byte
}

// sndXferi is the argument of the interleaved read/write ioctls.
type sndXferi struct {
	Result int64
	Buf    uintptr
	Frames sndPcmUframesT
}
