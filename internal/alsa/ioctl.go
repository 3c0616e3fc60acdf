//go:build linux && (amd64 || arm64)

// ABOUTME: ioctl request encoding and the raw ioctl entry point
// ABOUTME: Request numbers follow sound/asound.h, type 'A'
package alsa

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux generic ioctl encoding: dir<<30 | size<<16 | type<<8 | nr.
const (
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, size, nr uintptr) uintptr {
	return dir<<30 | size<<16 | 'A'<<8 | nr
}

func ioN(nr uintptr) uintptr            { return ioc(0, 0, nr) }
func ioR(nr, size uintptr) uintptr      { return ioc(iocRead, size, nr) }
func ioW(nr, size uintptr) uintptr      { return ioc(iocWrite, size, nr) }
func ioWR(nr, size uintptr) uintptr     { return ioc(iocRead|iocWrite, size, nr) }

var (
	sndrvPcmIoctlInfo         = ioR(0x01, unsafe.Sizeof(sndPcmInfo{}))
	sndrvPcmIoctlHwRefine     = ioWR(0x10, unsafe.Sizeof(sndPcmHwParams{}))
	sndrvPcmIoctlHwParams     = ioWR(0x11, unsafe.Sizeof(sndPcmHwParams{}))
	sndrvPcmIoctlHwFree       = ioN(0x12)
	sndrvPcmIoctlSwParams     = ioWR(0x13, unsafe.Sizeof(sndPcmSwParams{}))
	sndrvPcmIoctlPrepare      = ioN(0x40)
	sndrvPcmIoctlStart        = ioN(0x42)
	sndrvPcmIoctlDrop         = ioN(0x43)
	sndrvPcmIoctlDrain        = ioN(0x44)
	sndrvPcmIoctlWriteiFrames = ioW(0x50, unsafe.Sizeof(sndXferi{}))
)

// ioctl issues the request, retrying on EINTR. A failing call returns the
// raw unix.Errno so callers can carry the native code upward.
func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
		if errno == 0 {
			return nil
		}
		if errors.Is(errno, unix.EINTR) {
			continue
		}

		return errno
	}
}
