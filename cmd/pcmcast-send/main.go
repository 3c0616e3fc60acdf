// ABOUTME: Entry point for the pcmcast sender
// ABOUTME: Decodes a local audio file and streams it to a receiver over UDP
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pcmcast/pcmcast-go/internal/discovery"
	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/audio/decode"
	"github.com/pcmcast/pcmcast-go/pkg/codec"
	"github.com/pcmcast/pcmcast-go/pkg/transport"
)

var (
	dest      = flag.String("dest", "", "Receiver address host:port (empty: discover via mDNS)")
	file      = flag.String("file", "", "Audio file to stream (.wav, .mp3, .flac, .pcm)")
	codecName = flag.String("codec", "opus", "Frame codec: opus or pcm")
	frameMs   = flag.Int("frame-ms", 20, "Codec frame duration in milliseconds")
	burst     = flag.Bool("burst", false, "Send as fast as possible instead of real-time pacing")
	lookupSec = flag.Int("lookup-timeout", 3, "mDNS lookup timeout in seconds")
)

func main() {
	flag.Parse()

	if *file == "" {
		log.Fatalf("No input: -file is required")
	}

	format, stream, err := decode.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *file, err)
	}
	defer stream.Close()

	log.Printf("Source %s: %d Hz, %d channels, %d bits",
		*file, format.SampleRate, format.Channels, format.BitsPerSample)

	frameSize := format.FramesForDuration(*frameMs)
	enc, err := newEncoder(*codecName, format, frameSize)
	if err != nil {
		log.Fatalf("Failed to create encoder: %v", err)
	}

	addr := *dest
	if addr == "" {
		addr, err = discoverReceiver()
		if err != nil {
			log.Fatalf("Receiver discovery failed: %v", err)
		}
	}

	sender, err := transport.NewSender(addr, enc, format)
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}
	defer sender.Close()

	log.Printf("Streaming to %s (%s, %dms frames)", addr, *codecName, *frameMs)

	var src audio.FrameSource = audio.NewReaderSource(stream, sender.FrameBytes())
	if !*burst {
		src = newPacedSource(src, time.Duration(*frameMs)*time.Millisecond)
	}

	start := time.Now()
	sent, err := sender.Run(src)
	if err != nil {
		log.Fatalf("Stream aborted after %d datagrams: %v", sent, err)
	}

	log.Printf("Done: %d datagrams in %v", sent, time.Since(start).Round(time.Millisecond))
}

func newEncoder(name string, format audio.Format, frameSize int) (codec.Encoder, error) {
	switch name {
	case "opus":
		return codec.NewOpusEncoder(int(format.SampleRate), int(format.Channels), frameSize)
	case "pcm":
		return codec.NewPassthrough(frameSize, int(format.Channels)), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

func discoverReceiver() (string, error) {
	log.Printf("Looking for receivers via mDNS...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*lookupSec)*time.Second)
	defer cancel()

	receivers, err := discovery.Lookup(ctx, time.Duration(*lookupSec)*time.Second)
	if err != nil && len(receivers) == 0 {
		return "", err
	}
	if len(receivers) == 0 {
		return "", fmt.Errorf("no receiver found after %ds", *lookupSec)
	}

	r := receivers[0]
	log.Printf("Discovered receiver %q at %s", r.Instance, r.Addr())

	return r.Addr(), nil
}

// pacedSource releases one frame per tick so a file plays out in real time
// instead of flooding the receiver's buffer.
type pacedSource struct {
	src    audio.FrameSource
	ticker *time.Ticker
}

func newPacedSource(src audio.FrameSource, interval time.Duration) *pacedSource {
	return &pacedSource{src: src, ticker: time.NewTicker(interval)}
}

func (p *pacedSource) Produce() ([]byte, error) {
	frame, err := p.src.Produce()
	if err != nil {
		p.ticker.Stop()

		return nil, err
	}
	<-p.ticker.C

	return frame, nil
}
