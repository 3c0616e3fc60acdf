// ABOUTME: Source import dispatch and sample interleaving tests
// ABOUTME: MP3/FLAC paths need real files; the shared plumbing is tested here
package decode

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pcmcast/pcmcast-go/pkg/audio"
	"github.com/pcmcast/pcmcast-go/pkg/audio/wave"
)

func TestOpenRejectsUnknownExtension(t *testing.T) {
	if _, _, err := Open("tone.ogg"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestOpenDispatchesRawContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.pcm")
	f := audio.Format{SampleRate: 48000, Channels: 1, BitsPerSample: 16, BlockAlign: 2}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := wave.WriteHeader(file, f); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := file.Write([]byte{1, 0, 2, 0}); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, stream, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Close()

	if got != f {
		t.Errorf("format %+v, want %+v", got, f)
	}
	data, err := io.ReadAll(stream)
	if err != nil || !bytes.Equal(data, []byte{1, 0, 2, 0}) {
		t.Errorf("payload %v (%v)", data, err)
	}
}

func TestOpenMissingMP3(t *testing.T) {
	if _, _, err := Open(filepath.Join(t.TempDir(), "absent.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestInterleaveStereo16(t *testing.T) {
	left := []int32{1, 2, 3}
	right := []int32{-1, -2, -3}

	got := interleave([][]int32{left, right}, 2)
	want := []byte{
		1, 0, 0xFF, 0xFF,
		2, 0, 0xFE, 0xFF,
		3, 0, 0xFD, 0xFF,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("interleaved %v, want %v", got, want)
	}
}

func TestInterleaveMono24(t *testing.T) {
	got := interleave([][]int32{{0x123456, -1}}, 3)
	want := []byte{0x56, 0x34, 0x12, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("interleaved %v, want %v", got, want)
	}
}

func TestInterleaveEmpty(t *testing.T) {
	if got := interleave(nil, 2); got != nil {
		t.Errorf("interleave(nil) = %v, want nil", got)
	}
}
