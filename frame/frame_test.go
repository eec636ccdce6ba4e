package frame_test

import (
	"bytes"
	"testing"

	"github.com/kzio/flaccore/frame"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []frame.Header{
		{BlockSize: 4096, SampleRate: 44100, Channels: frame.ChannelsLR, BitsPerSample: 16, Num: 0},
		{BlockSize: 4096, SampleRate: 44100, Channels: frame.ChannelsLR, BitsPerSample: 16, Num: 1},
		{BlockSize: 2048, SampleRate: 44100, Channels: frame.ChannelsLR, BitsPerSample: 16, Num: 300},
		{BlockSize: 192, SampleRate: 44100, Channels: frame.ChannelsMono, BitsPerSample: 16, Num: 70000},
	}
	for i, want := range cases {
		buf := &bytes.Buffer{}
		if err := frame.EncodeHeader(buf, want); err != nil {
			t.Fatalf("case %d: EncodeHeader: %v", i, err)
		}
		got, err := frame.DecodeHeader(buf, 0, 0)
		if err != nil {
			t.Fatalf("case %d: DecodeHeader: %v", i, err)
		}
		if got.BlockSize != want.BlockSize || got.SampleRate != want.SampleRate ||
			got.Channels != want.Channels || got.BitsPerSample != want.BitsPerSample ||
			got.Num != want.Num {
			t.Errorf("case %d: round-trip mismatch: want %+v, got %+v", i, want, *got)
		}
	}
}

func TestEncodeDecodeFrameConstant(t *testing.T) {
	samples := make([]int32, 16)
	for i := range samples {
		samples[i] = 42
	}
	left := &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredConstant},
		NSamples:  len(samples),
		Samples:   samples,
	}
	right := &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredConstant},
		NSamples:  len(samples),
		Samples:   samples,
	}

	hdr := frame.Header{
		BlockSize:     uint16(len(samples)),
		SampleRate:    44100,
		Channels:      frame.ChannelsLR,
		BitsPerSample: 16,
		Num:           0,
	}

	buf := &bytes.Buffer{}
	if err := frame.EncodeFrame(buf, hdr, []*frame.Subframe{left, right}); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	got, err := frame.DecodeFrame(buf, 0, 0)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(got.Subframes) != 2 {
		t.Fatalf("expected 2 subframes, got %d", len(got.Subframes))
	}
	for ch, sf := range got.Subframes {
		for i, s := range sf.Samples {
			if s != 42 {
				t.Errorf("channel %d sample %d: want 42, got %d", ch, i, s)
			}
		}
	}
}

func TestEncodeDecodeFrameFixed(t *testing.T) {
	samples := make([]int32, 64)
	for i := range samples {
		samples[i] = int32(i % 100)
	}
	left := &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredFixed, Order: 2},
		NSamples:  len(samples),
		Samples:   samples,
	}
	right := &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredFixed, Order: 2},
		NSamples:  len(samples),
		Samples:   samples,
	}

	hdr := frame.Header{
		BlockSize:     uint16(len(samples)),
		SampleRate:    44100,
		Channels:      frame.ChannelsLR,
		BitsPerSample: 16,
		Num:           5,
	}

	buf := &bytes.Buffer{}
	if err := frame.EncodeFrame(buf, hdr, []*frame.Subframe{left, right}); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	got, err := frame.DecodeFrame(buf, 0, 0)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for ch, sf := range got.Subframes {
		if len(sf.Samples) != len(samples) {
			t.Fatalf("channel %d: expected %d samples, got %d", ch, len(samples), len(sf.Samples))
		}
		for i, s := range sf.Samples {
			if s != samples[i] {
				t.Errorf("channel %d sample %d: want %d, got %d", ch, i, samples[i], s)
			}
		}
	}
	if got.Header.Num != 5 {
		t.Errorf("expected frame number 5, got %d", got.Header.Num)
	}
}

// TestUndecorrelateTolerance exercises decoder tolerance for the three
// inter-channel decorrelation modes, a configuration the encoder never
// emits (Non-goal) but that a conforming decoder must still undo correctly.
func TestUndecorrelateTolerance(t *testing.T) {
	left := []int32{100, 200, 300, 400}
	right := []int32{90, 150, 330, 420}

	side := make([]int32, len(left))
	mid := make([]int32, len(left))
	for i := range left {
		side[i] = left[i] - right[i]
		mid[i] = (left[i] + right[i]) >> 1
	}

	cases := []struct {
		name       string
		assignment frame.Channels
		s0, s1     []int32
	}{
		{"left-side", frame.ChannelsLeftSide, left, side},
		{"side-right", frame.ChannelsSideRight, side, right},
		{"mid-side", frame.ChannelsMidSide, mid, side},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotLeft, gotRight, err := frame.Undecorrelate(c.assignment, c.s0, c.s1)
			if err != nil {
				t.Fatalf("Undecorrelate: %v", err)
			}
			for i := range left {
				if gotLeft[i] != left[i] {
					t.Errorf("left[%d]: want %d, got %d", i, left[i], gotLeft[i])
				}
				if gotRight[i] != right[i] {
					t.Errorf("right[%d]: want %d, got %d", i, right[i], gotRight[i])
				}
			}
		})
	}
}
