package flac_test

import (
	"io"
	"math/rand"
	"os"
	"testing"

	flac "github.com/kzio/flaccore"
	"github.com/kzio/flaccore/frame"
	"github.com/kzio/flaccore/meta"
)

// encodeToTemp encodes left/right through a fresh Encoder backed by a real
// (seekable) temp file, so Close can patch STREAMINFO's sample count and MD5
// digest back in, and returns the file's path.
func encodeToTemp(t *testing.T, left, right []int32) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "roundtrip-*.flac")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	enc, err := flac.NewEncoder(f)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.WriteSamples(left, right); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Encoder.Close: %v", err)
	}
	return f.Name()
}

func decodeAll(t *testing.T, path string) (left, right []int32) {
	t.Helper()
	s, err := flac.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for {
		f, err := s.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ParseNext: %v", err)
		}
		if len(f.Subframes) != 2 {
			t.Fatalf("expected 2 subframes, got %d", len(f.Subframes))
		}
		left = append(left, f.Subframes[0].Samples...)
		right = append(right, f.Subframes[1].Samples...)
	}
	return left, right
}

func checkRoundTrip(t *testing.T, name string, left, right []int32) {
	t.Helper()
	path := encodeToTemp(t, left, right)
	gotLeft, gotRight := decodeAll(t, path)
	if len(gotLeft) != len(left) || len(gotRight) != len(right) {
		t.Fatalf("%s: sample count mismatch: want %d/%d, got %d/%d", name, len(left), len(right), len(gotLeft), len(gotRight))
	}
	for i := range left {
		if gotLeft[i] != left[i] {
			t.Fatalf("%s: left[%d]: want %d, got %d", name, i, left[i], gotLeft[i])
		}
		if gotRight[i] != right[i] {
			t.Fatalf("%s: right[%d]: want %d, got %d", name, i, right[i], gotRight[i])
		}
	}
}

func TestRoundTripSilence(t *testing.T) {
	n := frame.BlockSize*2 + 17
	left := make([]int32, n)
	right := make([]int32, n)
	checkRoundTrip(t, "silence", left, right)
}

func TestRoundTripDCOffset(t *testing.T) {
	n := frame.BlockSize + 500
	left := make([]int32, n)
	right := make([]int32, n)
	for i := range left {
		left[i] = 1234
		right[i] = -4321
	}
	checkRoundTrip(t, "dc-offset", left, right)
}

func TestRoundTripRamp(t *testing.T) {
	n := frame.BlockSize*3 + 1
	left := make([]int32, n)
	right := make([]int32, n)
	for i := range left {
		left[i] = int32(i%65535) - 32768
		right[i] = int32((n - i) % 65535 - 32768)
	}
	checkRoundTrip(t, "ramp", left, right)
}

func TestRoundTripWhiteNoise(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	n := frame.BlockSize*2 + 777
	left := make([]int32, n)
	right := make([]int32, n)
	for i := range left {
		left[i] = int32(rnd.Intn(65536) - 32768)
		right[i] = int32(rnd.Intn(65536) - 32768)
	}
	checkRoundTrip(t, "white-noise", left, right)
}

func TestRoundTripShortFinalBlock(t *testing.T) {
	n := 37 // smaller than a single block, exercises the tail-only path.
	left := make([]int32, n)
	right := make([]int32, n)
	for i := range left {
		left[i] = int32(i)
		right[i] = int32(-i)
	}
	checkRoundTrip(t, "short-final-block", left, right)
}

func TestRoundTripTinyFinalBlock(t *testing.T) {
	// A final block of length <= 4 narrows the Fixed predictor order search
	// (order k is only valid when the block length > k); exercise every
	// length in that range.
	for tail := 1; tail <= 4; tail++ {
		n := frame.BlockSize + tail
		left := make([]int32, n)
		right := make([]int32, n)
		for i := range left {
			left[i] = int32(i)
			right[i] = int32(-i)
		}
		checkRoundTrip(t, "tiny-final-block", left, right)
	}
}

func TestStreamInfoPatchedAfterClose(t *testing.T) {
	n := frame.BlockSize + 3
	left := make([]int32, n)
	right := make([]int32, n)
	path := encodeToTemp(t, left, right)

	s, err := flac.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Info.NSamples != uint64(n) {
		t.Errorf("NSamples: want %d, got %d", n, s.Info.NSamples)
	}
	var zero [16]byte
	if s.Info.MD5sum == zero {
		t.Error("MD5sum was not patched back into STREAMINFO")
	}
}

func TestBadMagicRejected(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "badmagic-*.flac")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("nope"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	if _, err := flac.New(f); err == nil {
		t.Fatal("expected an error for a bad magic marker, got nil")
	}
}

func TestUnsupportedSampleSizeRejected(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "badsamplesize-*.flac")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("fLaC"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := meta.EncodeHeader(f, meta.Header{Type: meta.TypeStreamInfo, Length: 34, IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	si := &meta.StreamInfo{
		BlockSizeMin:  frame.BlockSize,
		BlockSizeMax:  frame.BlockSize,
		SampleRate:    frame.SampleRate,
		NChannels:     frame.NumChannels,
		BitsPerSample: 12, // not a whole number of bytes
	}
	if err := meta.EncodeStreamInfo(f, si); err != nil {
		t.Fatalf("EncodeStreamInfo: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	if _, err := flac.New(f); err == nil {
		t.Fatal("expected an error for an unsupported sample size, got nil")
	}
}
