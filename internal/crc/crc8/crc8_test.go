package crc8

import "testing"

func TestSplitWritesAgree(t *testing.T) {
	// Bytes shaped like the start of a fixed-block FLAC frame header
	// (block size 4096, 44.1kHz, stereo, frame 0): one Write of the whole
	// slice and two Writes of its halves must yield the same checksum.
	h1 := New()
	h2 := New()
	data := []byte{0xFF, 0xF8, 0xC9, 0x10, 0x00}
	h1.Write(data)
	h2.Write(data[:2])
	h2.Write(data[2:])
	d1 := h1.(*digest).Sum8()
	d2 := h2.(*digest).Sum8()
	if d1 != d2 {
		t.Errorf("split writes produced different checksums: %#x != %#x", d1, d2)
	}
}

func TestResetZero(t *testing.T) {
	h := New().(*digest)
	h.Write([]byte{1, 2, 3})
	h.Reset()
	if h.Sum8() != 0 {
		t.Errorf("Sum8() after Reset() = %#x, want 0", h.Sum8())
	}
}
