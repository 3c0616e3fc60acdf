// ABOUTME: UDP transport receiver: datagram in, decoded frame into the buffer
// ABOUTME: Decode failures are absorbed; fatal socket errors end the loop
package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"syscall"
	"time"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/codec"
)

// maxDatagram comfortably exceeds the largest packet the codecs emit.
const maxDatagram = 64 * 1024

// FatalReceiveError reports a transport-layer failure that makes the socket
// unusable and terminates the receive loop.
type FatalReceiveError struct {
	Err error
}

func (e *FatalReceiveError) Error() string {
	return fmt.Sprintf("transport: receive failed: %v", e.Err)
}

func (e *FatalReceiveError) Unwrap() error { return e.Err }

// Receiver listens for inbound datagrams from any endpoint, decodes each as
// exactly one frame and appends the PCM bytes to the playback sink in
// arrival order. No peer filtering and no reordering: a datagram that
// arrives late is played late.
type Receiver struct {
	conn *net.UDPConn
	dec  codec.Decoder
	sink audio.FrameSink
	log  *log.Logger
}

// NewReceiver binds the listen address ("host:port", port 0 for ephemeral).
func NewReceiver(listen string, dec codec.Decoder, sink audio.FrameSink) (*Receiver, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %q: %w", listen, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %q: %w", listen, err)
	}

	return &Receiver{
		conn: conn,
		dec:  dec,
		sink: sink,
		log:  log.Default(),
	}, nil
}

// SetLogger routes non-fatal loop errors to the given logger.
func (r *Receiver) SetLogger(l *log.Logger) { r.log = l }

// LocalAddr returns the bound address, useful when listening on port 0.
func (r *Receiver) LocalAddr() net.Addr { return r.conn.LocalAddr() }

// Run blocks on the receive-decode-buffer loop until ctx is cancelled or a
// fatal transport error occurs. Malformed datagrams are logged and skipped;
// the corresponding playback interval is dropped, never filled with decoder
// garbage. Cancellation is observed at every iteration boundary and returns
// nil; no appends happen after it is observed.
func (r *Receiver) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			// Unblock the pending read; the loop sees the deadline error
			// and then the cancelled context.
			_ = r.conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	packet := make([]byte, maxDatagram)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, from, err := r.conn.ReadFromUDP(packet)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if fatal(err) {
				return &FatalReceiveError{Err: err}
			}
			r.log.Printf("receive error from socket, continuing: %v", err)

			continue
		}

		if ctx.Err() != nil {
			return nil
		}

		samples, err := r.dec.Decode(packet[:n])
		if err != nil {
			r.log.Printf("dropping undecodable %d-byte datagram from %s: %v", n, from, err)

			continue
		}

		if err := r.sink.Accept(audio.SamplesToS16LE(samples)); err != nil {
			// Buffer overflow is a sizing bug, not a transient: surface it.
			return fmt.Errorf("transport: buffer frame: %w", err)
		}
	}
}

// Close releases the socket. A Run in flight terminates with a fatal error
// unless its context was already cancelled.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

// fatal reports whether the socket is no longer usable. Connection resets
// surfaced on a connectionless socket and closed descriptors are final;
// anything else is worth another read.
func fatal(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	return false
}
