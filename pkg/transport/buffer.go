// ABOUTME: Bounded playback byte queue between receiver and device write loop
// ABOUTME: Single writer, single reader; serializes its own access
package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
)

// ErrBufferFull is returned by Append when a frame would exceed capacity.
// Overflow means the buffer was sized below the stream's throughput; the
// frame is never silently dropped.
var ErrBufferFull = errors.New("transport: playback buffer full")

// PlaybackBuffer is a bounded FIFO of PCM bytes. The receive loop appends
// decoded frames, the device write loop drains it through io.Reader. Append
// and Read may run on different goroutines without external locking.
type PlaybackBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	start  int
	length int
	closed bool
}

// NewPlaybackBuffer creates a buffer holding at most capacity bytes.
func NewPlaybackBuffer(capacity int) *PlaybackBuffer {
	b := &PlaybackBuffer{buf: make([]byte, capacity)}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// NewPlaybackBufferForLatency sizes the buffer to hold latencyMs
// milliseconds of audio in the given format.
func NewPlaybackBufferForLatency(format audio.Format, latencyMs int) *PlaybackBuffer {
	return NewPlaybackBuffer(format.FrameBytes(format.FramesForDuration(latencyMs)))
}

// Cap returns the fixed capacity in bytes.
func (b *PlaybackBuffer) Cap() int { return len(b.buf) }

// Len returns the number of buffered bytes.
func (b *PlaybackBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Append adds one frame of bytes to the tail of the queue.
func (b *PlaybackBuffer) Append(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("transport: append to closed playback buffer")
	}
	if b.length+len(frame) > len(b.buf) {
		return fmt.Errorf("%w: %d buffered + %d frame > %d capacity",
			ErrBufferFull, b.length, len(frame), len(b.buf))
	}

	end := (b.start + b.length) % len(b.buf)
	n := copy(b.buf[end:], frame)
	copy(b.buf, frame[n:])
	b.length += len(frame)

	b.cond.Signal()

	return nil
}

// Accept makes the buffer a FrameSink.
func (b *PlaybackBuffer) Accept(frame []byte) error { return b.Append(frame) }

// Read drains buffered bytes in FIFO order, blocking while the buffer is
// empty. Once the buffer is closed and drained, Read returns io.EOF.
func (b *PlaybackBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.length == 0 && !b.closed {
		b.cond.Wait()
	}

	if b.length == 0 {
		return 0, io.EOF
	}

	total := 0
	for total < len(p) && b.length > 0 {
		chunk := len(b.buf) - b.start
		if chunk > b.length {
			chunk = b.length
		}
		n := copy(p[total:], b.buf[b.start:b.start+chunk])
		b.start = (b.start + n) % len(b.buf)
		b.length -= n
		total += n
	}

	return total, nil
}

// Close marks the end of the stream. Blocked readers wake up and drain what
// remains, then see io.EOF. Further appends fail.
func (b *PlaybackBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}
