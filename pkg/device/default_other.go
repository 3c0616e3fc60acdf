//go:build !linux || (!amd64 && !arm64)

// ABOUTME: Default binding selection off Linux
// ABOUTME: Falls back to the portable oto backend
package device

// DefaultBinding returns the portable backend; the ALSA binding only exists
// on 64-bit Linux.
func DefaultBinding() Binding { return PortableBinding{} }
