// ABOUTME: Entry point for the pcmcast receiver
// ABOUTME: Listens for codec-framed UDP audio and plays it on a PCM device
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcmcast/pcmcast-go/internal/discovery"
	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/codec"
	"github.com/pcmcast/pcmcast-go/pkg/device"
	"github.com/pcmcast/pcmcast-go/pkg/transport"
)

var (
	listenAddr = flag.String("listen", ":4733", "UDP listen address")
	deviceName = flag.String("device", "default", "Playback device name")
	sampleRate = flag.Int("rate", 48000, "Sample rate in Hz")
	channels   = flag.Int("channels", 2, "Channel count")
	frameMs    = flag.Int("frame-ms", 20, "Codec frame duration in milliseconds")
	bufferMs   = flag.Int("buffer-ms", 150, "Playback buffer size in milliseconds")
	codecName  = flag.String("codec", "opus", "Frame codec: opus or pcm")
	name       = flag.String("name", "", "mDNS instance name (default: hostname-pcmcast)")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
)

func main() {
	flag.Parse()

	format := audio.Format{
		SampleRate:    uint32(*sampleRate),
		Channels:      uint16(*channels),
		BitsPerSample: 16,
		BlockAlign:    uint16(*channels) * 2,
	}
	if err := format.Validate(); err != nil {
		log.Fatalf("Invalid format: %v", err)
	}
	frameSize := format.FramesForDuration(*frameMs)

	dec, err := newDecoder(*codecName, format, frameSize)
	if err != nil {
		log.Fatalf("Failed to create decoder: %v", err)
	}

	dev := device.NewDefault()
	if err := dev.Open(*deviceName); err != nil {
		log.Fatalf("Failed to open device %q: %v", *deviceName, err)
	}

	period, err := dev.Configure(format)
	if err != nil {
		log.Fatalf("Failed to configure device: %v", err)
	}
	log.Printf("Device %q configured: %d Hz, %d channels, period %d frames",
		*deviceName, period.Rate, *channels, period.FrameCount)
	if period.Rate != format.SampleRate {
		log.Printf("Warning: driver snapped rate to %d Hz (requested %d)", period.Rate, format.SampleRate)
	}

	buffer := transport.NewPlaybackBufferForLatency(format, *bufferMs)

	recv, err := transport.NewReceiver(*listenAddr, dec, buffer)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *listenAddr, err)
	}
	log.Printf("Listening on %s (%s, %dms frames, %dms buffer)",
		recv.LocalAddr(), *codecName, *frameMs, *bufferMs)

	if !*noMDNS {
		adv, err := advertise(recv.LocalAddr())
		if err != nil {
			log.Printf("mDNS advertisement disabled: %v", err)
		} else {
			defer func() { _ = adv.Shutdown() }()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recvErr := make(chan error, 1)
	go func() {
		recvErr <- recv.Run(ctx)
		buffer.Close()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	go func() {
		<-sigChan
		log.Printf("Shutdown signal received")
		interrupted = true
		cancel()
	}()

	// Blocks until the buffer is closed and drained.
	if err := dev.WriteLoop(buffer); err != nil {
		log.Printf("Playback stopped: %v", err)
		interrupted = true
		cancel()
	}

	if err := <-recvErr; err != nil {
		log.Printf("Receive loop failed: %v", err)
	}
	_ = recv.Close()

	// Drop buffered hardware samples on interrupt, let them finish otherwise.
	if err := dev.Close(interrupted); err != nil {
		log.Printf("Error closing device: %v", err)
	}

	log.Printf("Receiver stopped")
}

func newDecoder(name string, format audio.Format, frameSize int) (codec.Decoder, error) {
	switch name {
	case "opus":
		return codec.NewOpusDecoder(int(format.SampleRate), int(format.Channels), frameSize)
	case "pcm":
		return codec.NewPassthrough(frameSize, int(format.Channels)), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

func advertise(addr net.Addr) (*discovery.Advertiser, error) {
	instance := *name
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		instance = fmt.Sprintf("%s-pcmcast", hostname)
	}

	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("unexpected listen address %v", addr)
	}

	return discovery.Advertise(instance, udpAddr.Port)
}
