// ABOUTME: Sender loop tests over loopback UDP with the passthrough codec
// ABOUTME: One datagram per full frame; trailing partials are discarded
package transport

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/codec"
)

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestSenderEmitsOneDatagramPerFullFrame(t *testing.T) {
	const (
		frameSize = 240
		channels  = 2
	)

	server := listenLoopback(t)
	f := audio.Format{SampleRate: 48000, Channels: channels, BitsPerSample: 16, BlockAlign: 4}

	s, err := NewSender(server.LocalAddr().String(), codec.NewPassthrough(frameSize, channels), f)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	defer s.Close()

	// 10 full frames plus a 100-frame partial tail.
	payload := make([]byte, f.FrameBytes(10*frameSize+100))
	sent, err := s.Send(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent != 10 {
		t.Errorf("sent %d datagrams, want 10", sent)
	}

	buf := make([]byte, 64*1024)
	for i := 0; i < 10; i++ {
		_ = server.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := server.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("datagram %d never arrived: %v", i, err)
		}
		if n != f.FrameBytes(frameSize) {
			t.Errorf("datagram %d is %d bytes, want %d", i, n, f.FrameBytes(frameSize))
		}
	}
}

func TestSenderDiscardsSubFrameSource(t *testing.T) {
	server := listenLoopback(t)
	f := audio.Format{SampleRate: 48000, Channels: 1, BitsPerSample: 16, BlockAlign: 2}

	s, err := NewSender(server.LocalAddr().String(), codec.NewPassthrough(240, 1), f)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	defer s.Close()

	sent, err := s.Send(bytes.NewReader(make([]byte, f.FrameBytes(239))))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent %d datagrams from a sub-frame source, want 0", sent)
	}
}

func TestSenderRejectsNon16BitFormat(t *testing.T) {
	f := audio.Format{SampleRate: 48000, Channels: 2, BitsPerSample: 24, BlockAlign: 6}
	if _, err := NewSender("127.0.0.1:9", codec.NewPassthrough(240, 2), f); err == nil {
		t.Fatal("expected error for 24-bit source format")
	}
}

func TestSenderAbortsOnClosedSocket(t *testing.T) {
	server := listenLoopback(t)
	f := audio.Format{SampleRate: 48000, Channels: 1, BitsPerSample: 16, BlockAlign: 2}

	s, err := NewSender(server.LocalAddr().String(), codec.NewPassthrough(240, 1), f)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	_ = s.Close()

	_, err = s.Send(bytes.NewReader(make([]byte, f.FrameBytes(480))))
	var se *SendError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SendError, got %v", err)
	}
}
