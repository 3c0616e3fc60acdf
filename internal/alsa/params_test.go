//go:build linux && (amd64 || arm64)

// ABOUTME: Tests for hardware parameter helpers and ioctl encoding
// ABOUTME: Pins struct sizes and request numbers to the kernel ABI
package alsa

import (
	"testing"
	"unsafe"
)

func TestStructSizesMatchKernelABI(t *testing.T) {
	if got := unsafe.Sizeof(sndPcmHwParams{}); got != 608 {
		t.Errorf("sndPcmHwParams size = %d, want 608", got)
	}
	if got := unsafe.Sizeof(sndPcmSwParams{}); got != 136 {
		t.Errorf("sndPcmSwParams size = %d, want 136", got)
	}
	if got := unsafe.Sizeof(sndXferi{}); got != 24 {
		t.Errorf("sndXferi size = %d, want 24", got)
	}
	if got := unsafe.Sizeof(sndPcmInfo{}); got != 288 {
		t.Errorf("sndPcmInfo size = %d, want 288", got)
	}
}

func TestIoctlRequestNumbers(t *testing.T) {
	// Reference values from sound/asound.h on a 64-bit kernel.
	cases := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"INFO", sndrvPcmIoctlInfo, 0x81204101},
		{"HW_PARAMS", sndrvPcmIoctlHwParams, 0xC2604111},
		{"SW_PARAMS", sndrvPcmIoctlSwParams, 0xC0884113},
		{"HW_FREE", sndrvPcmIoctlHwFree, 0x4112},
		{"PREPARE", sndrvPcmIoctlPrepare, 0x4140},
		{"START", sndrvPcmIoctlStart, 0x4142},
		{"DROP", sndrvPcmIoctlDrop, 0x4143},
		{"DRAIN", sndrvPcmIoctlDrain, 0x4144},
		{"WRITEI_FRAMES", sndrvPcmIoctlWriteiFrames, 0x40184150},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %#x, want %#x", c.name, c.got, c.want)
		}
	}
}

func TestParamInitOpensAllRanges(t *testing.T) {
	var hw sndPcmHwParams
	paramInit(&hw)

	for n := paramFirstMask; n <= paramLastMask; n++ {
		for i, bits := range hw.Masks[n].Bits {
			if bits != ^uint32(0) {
				t.Fatalf("mask %d word %d = %#x, want all ones", n, i, bits)
			}
		}
	}

	iv := hw.Intervals[paramRate-paramFirstInterval]
	if iv.MinVal != 0 || iv.MaxVal != ^uint32(0) {
		t.Errorf("rate interval = [%d, %d], want full range", iv.MinVal, iv.MaxVal)
	}

	if hw.Rmask != ^uint32(0) || hw.Cmask != 0 {
		t.Errorf("rmask/cmask = %#x/%#x, want all-ones/zero", hw.Rmask, hw.Cmask)
	}
}

func TestParamSetMaskRestrictsToSingleBit(t *testing.T) {
	var hw sndPcmHwParams
	paramInit(&hw)
	paramSetMask(&hw, paramAccess, accessRWInterleaved)

	m := hw.Masks[paramAccess]
	for i, bits := range m.Bits {
		want := uint32(0)
		if i == 0 {
			want = 1 << accessRWInterleaved
		}
		if bits != want {
			t.Errorf("access mask word %d = %#x, want %#x", i, bits, want)
		}
	}
}

func TestParamSetIntPinsInterval(t *testing.T) {
	var hw sndPcmHwParams
	paramInit(&hw)
	paramSetInt(&hw, paramRate, 48000)

	iv := hw.Intervals[paramRate-paramFirstInterval]
	if iv.MinVal != 48000 || iv.MaxVal != 48000 {
		t.Errorf("rate interval = [%d, %d], want pinned to 48000", iv.MinVal, iv.MaxVal)
	}
	if iv.Flags&intervalInteger == 0 {
		t.Error("rate interval not marked integer")
	}

	if got := paramGetInt(&hw, paramRate); got != 48000 {
		t.Errorf("paramGetInt = %d, want 48000", got)
	}
}

func TestParamSetMinOnlyRaisesFloor(t *testing.T) {
	var hw sndPcmHwParams
	paramInit(&hw)
	paramSetMin(&hw, paramPeriodSize, 960)

	iv := hw.Intervals[paramPeriodSize-paramFirstInterval]
	if iv.MinVal != 960 {
		t.Errorf("period min = %d, want 960", iv.MinVal)
	}
	if iv.MaxVal != ^uint32(0) {
		t.Errorf("period max = %d, want unconstrained", iv.MaxVal)
	}
}

func TestDirection(t *testing.T) {
	if d := direction(44100, 44100); d != 0 {
		t.Errorf("exact rate: dir = %d, want 0", d)
	}
	if d := direction(44100, 48000); d != 1 {
		t.Errorf("snapped up: dir = %d, want 1", d)
	}
	if d := direction(48000, 44100); d != -1 {
		t.Errorf("snapped down: dir = %d, want -1", d)
	}
}

func TestParseName(t *testing.T) {
	card, dev, err := parseName("default")
	if err != nil || card != 0 || dev != 0 {
		t.Errorf("default -> (%d,%d,%v), want (0,0,nil)", card, dev, err)
	}

	card, dev, err = parseName("hw:1,3")
	if err != nil || card != 1 || dev != 3 {
		t.Errorf("hw:1,3 -> (%d,%d,%v), want (1,3,nil)", card, dev, err)
	}

	for _, bad := range []string{"plughw:0,0", "hw:0", "hw:x,y"} {
		if _, _, err := parseName(bad); err == nil {
			t.Errorf("parseName(%q): expected error", bad)
		}
	}
}
