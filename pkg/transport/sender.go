// ABOUTME: UDP transport sender: one encoded frame per outbound datagram
// ABOUTME: No acknowledgement, no retry, no sequence numbers
package transport

import (
	"fmt"
	"io"
	"net"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/codec"
)

// SendError reports a transport-layer transmit failure. It aborts the send
// loop; a broken path is not expected to heal mid-stream.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("transport: send failed: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Sender reads fixed-duration frames from a PCM source, encodes each and
// transmits the packet as a single datagram to a fixed destination. Loss
// and reordering are tolerated by the receiver's framing, not corrected
// here; the wire format deliberately carries no sequence numbers (adding
// them is the documented extension point).
type Sender struct {
	conn   *net.UDPConn
	enc    codec.Encoder
	format audio.Format
}

// NewSender resolves the destination and binds an unconnected local port.
// The format must carry 16-bit samples; that is what the frame codecs eat.
func NewSender(dest string, enc codec.Encoder, format audio.Format) (*Sender, error) {
	if format.BytesPerSample() != 2 {
		return nil, fmt.Errorf("transport: sender requires 16-bit samples, got %d bits", format.BitsPerSample)
	}

	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %q: %w", dest, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %q: %w", dest, err)
	}

	return &Sender{conn: conn, enc: enc, format: format}, nil
}

// FrameBytes returns the size in bytes of one uncompressed frame.
func (s *Sender) FrameBytes() int {
	return s.format.FrameBytes(s.enc.FrameSize())
}

// Run drives the encode-and-send loop until src is exhausted, returning the
// number of datagrams sent. Trailing data smaller than one frame is
// discarded. A transmit failure aborts the loop with a SendError.
func (s *Sender) Run(src audio.FrameSource) (int, error) {
	sent := 0

	for {
		frame, err := src.Produce()
		if err == io.EOF {
			return sent, nil
		}
		if err != nil {
			return sent, fmt.Errorf("transport: read source: %w", err)
		}

		packet, err := s.enc.Encode(audio.S16LEToSamples(frame))
		if err != nil {
			return sent, fmt.Errorf("transport: encode frame: %w", err)
		}

		if _, err := s.conn.Write(packet); err != nil {
			return sent, &SendError{Err: err}
		}
		sent++
	}
}

// Send reads raw PCM from r and streams it frame by frame.
func (s *Sender) Send(r io.Reader) (int, error) {
	return s.Run(audio.NewReaderSource(r, s.FrameBytes()))
}

// Close releases the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
