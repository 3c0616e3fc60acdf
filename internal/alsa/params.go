//go:build linux && (amd64 || arm64)

// ABOUTME: Hardware parameter mask/interval helpers for negotiation
// ABOUTME: Mirrors the refine protocol the kernel expects in HW_PARAMS
package alsa

// Hardware parameter indices from sound/asound.h. The first three are masks,
// the rest are intervals stored at index param-paramFirstInterval.
const (
	paramAccess    = 0
	paramFormat    = 1
	paramSubformat = 2

	paramFirstMask = paramAccess
	paramLastMask  = paramSubformat

	paramSampleBits = 8
	paramFrameBits  = 9
	paramChannels   = 10
	paramRate       = 11
	paramPeriodTime = 12
	paramPeriodSize = 13
	paramPeriodBytes = 14
	paramPeriods    = 15
	paramBufferTime = 16
	paramBufferSize = 17
	paramBufferBytes = 18
	paramTickTime   = 19

	paramFirstInterval = paramSampleBits
	paramLastInterval  = paramTickTime
)

// Access and format values used by this binding.
const (
	accessRWInterleaved = 3

	FormatS8     = 0
	FormatU8     = 1
	FormatS16LE  = 2
	FormatS24LE  = 6  // 24-bit in a 32-bit container
	FormatS243LE = 32 // packed 3-byte 24-bit
)

// paramInit opens every parameter to its full range so the kernel refines
// only what we constrain.
func paramInit(p *sndPcmHwParams) {
	*p = sndPcmHwParams{}

	for n := paramFirstMask; n <= paramLastMask; n++ {
		for i := range p.Masks[n].Bits {
			p.Masks[n].Bits[i] = ^uint32(0)
		}
	}

	for n := paramFirstInterval; n <= paramLastInterval; n++ {
		iv := &p.Intervals[n-paramFirstInterval]
		iv.MinVal = 0
		iv.MaxVal = ^uint32(0)
		iv.Flags = 0
	}

	p.Rmask = ^uint32(0)
	p.Cmask = 0
	p.Info = ^uint32(0)
}

// paramSetMask restricts a mask parameter to a single value.
func paramSetMask(p *sndPcmHwParams, n int, bit uint32) {
	m := &p.Masks[n-paramFirstMask]
	for i := range m.Bits {
		m.Bits[i] = 0
	}
	m.Bits[bit>>5] |= 1 << (bit & 31)
}

// paramSetInt pins an interval parameter to an exact integer value.
func paramSetInt(p *sndPcmHwParams, n int, val uint32) {
	iv := &p.Intervals[n-paramFirstInterval]
	iv.MinVal = val
	iv.MaxVal = val
	iv.Flags = intervalInteger
}

// paramSetMin asks for at least val, letting the driver choose the nearest
// supported value at or above it.
func paramSetMin(p *sndPcmHwParams, n int, val uint32) {
	iv := &p.Intervals[n-paramFirstInterval]
	if iv.MinVal < val {
		iv.MinVal = val
	}
}

// paramGetInt reads a refined interval value. After a successful HW_PARAMS
// the interval has collapsed, so min and max agree.
func paramGetInt(p *sndPcmHwParams, n int) uint32 {
	return p.Intervals[n-paramFirstInterval].MinVal
}
