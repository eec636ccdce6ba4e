package frame

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/kzio/flaccore/internal/crc/crc8"
	"github.com/kzio/flaccore/internal/utf8"
)

// Header is a frame header: block size, sample rate, channel assignment,
// sample size, the frame/sample number, and (implicitly) an 8-bit CRC that
// EncodeHeader/DecodeHeader compute over the header bytes.
//
// Fields mirror a frame header's on-wire layout directly, restructured as a
// matched Encode/Decode pair against icza/bitio.
type Header struct {
	// VariableBlockSize selects between a fixed-sample-count stream (frame
	// number, Num counts frames) and a variable-sample-count stream (sample
	// number, Num counts samples). The encoder only ever produces fixed
	// streams (Non-goal); the decoder tolerates both.
	VariableBlockSize bool
	// BlockSize is the number of samples in this frame's subblocks.
	BlockSize uint16
	// SampleRate in Hz.
	SampleRate uint32
	// Channels is the channel assignment for this frame.
	Channels Channels
	// BitsPerSample is the sample size in bits.
	BitsPerSample uint8
	// Num is the frame number (VariableBlockSize == false) or starting
	// sample number (VariableBlockSize == true).
	Num uint64
}

// blockSizeCode returns the 4-bit block-size code for a block of n samples,
// and the width (0, 8, or 16) of the block-size suffix field that code
// implies.
func blockSizeCode(n uint16) (code uint64, suffixBits uint8) {
	switch {
	case n == 192:
		return 1, 0
	case n == 576, n == 1152, n == 2304, n == 4608:
		for i, v := range [...]uint16{576, 1152, 2304, 4608} {
			if v == n {
				return uint64(2 + i), 0
			}
		}
	case n == 256, n == 512, n == 1024, n == 2048, n == 4096, n == 8192, n == 16384, n == 32768:
		for i, v := range [...]uint16{256, 512, 1024, 2048, 4096, 8192, 16384, 32768} {
			if v == n {
				return uint64(8 + i), 0
			}
		}
	case n <= 256:
		return 6, 8
	default:
		return 7, 16
	}
	return 7, 16
}

var fixedSampleRates = [...]uint32{1: 88200, 2: 176400, 3: 192000, 4: 8000, 5: 16000, 6: 22050, 7: 24000, 8: 32000, 9: 44100, 10: 48000, 11: 96000}

func sampleRateCode(rate uint32) (code uint64, suffixBits uint8, suffixScale uint32, err error) {
	for code, v := range fixedSampleRates {
		if code == 0 {
			continue
		}
		if v == rate {
			return uint64(code), 0, 0, nil
		}
	}
	switch {
	case rate%1000 == 0 && rate/1000 < 256:
		return 12, 8, 1000, nil
	case rate < 65536:
		return 13, 16, 1, nil
	case rate%10 == 0 && rate/10 < 65536:
		return 14, 16, 10, nil
	default:
		return 0, 0, 0, errors.Errorf("frame.sampleRateCode: sample rate %d cannot be represented in a frame header", rate)
	}
}

func sampleSizeCode(bps uint8) (uint64, error) {
	switch bps {
	case 8:
		return 1, nil
	case 12:
		return 2, nil
	case 16:
		return 4, nil
	case 20:
		return 5, nil
	case 24:
		return 6, nil
	default:
		return 0, errors.Errorf("frame.sampleSizeCode: unsupported bits-per-sample %d", bps)
	}
}

// EncodeHeader writes hdr's frame header, including its trailing CRC-8, to w.
//
func EncodeHeader(w io.Writer, hdr Header) error {
	h := crc8.New()
	mw := io.MultiWriter(h, w)
	bw := bitio.NewWriter(mw)

	if err := bw.WriteBits(SyncCode, 14); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	if err := bw.WriteBits(0, 1); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	if err := bw.WriteBool(hdr.VariableBlockSize); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	blockCode, blockSuffixBits := blockSizeCode(hdr.BlockSize)
	if err := bw.WriteBits(blockCode, 4); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	rateCode, rateSuffixBits, rateScale, err := sampleRateCode(hdr.SampleRate)
	if err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	if err := bw.WriteBits(rateCode, 4); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	if err := bw.WriteBits(uint64(hdr.Channels), 4); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	sizeCode, err := sampleSizeCode(hdr.BitsPerSample)
	if err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	if err := bw.WriteBits(sizeCode, 3); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	if err := bw.WriteBits(0, 1); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	if err := utf8.Encode(bw, hdr.Num); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	if blockSuffixBits > 0 {
		if err := bw.WriteBits(uint64(hdr.BlockSize-1), blockSuffixBits); err != nil {
			return errors.Wrap(err, "frame.EncodeHeader")
		}
	}
	if rateSuffixBits > 0 {
		if err := bw.WriteBits(uint64(hdr.SampleRate/rateScale), rateSuffixBits); err != nil {
			return errors.Wrap(err, "frame.EncodeHeader")
		}
	}

	if _, err := bw.Align(); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}

	if _, err := w.Write(h.Sum(nil)); err != nil {
		return errors.Wrap(err, "frame.EncodeHeader")
	}
	return nil
}

// DecodeHeader reads and validates a frame header, including its CRC-8.
// fallbackSampleRate and fallbackBitsPerSample supply the values to use when
// the header defers to STREAMINFO (sample rate code 0000, sample size code
// 000); callers read these from the stream's STREAMINFO metadata block
// before decoding any frame.
//
func DecodeHeader(r io.Reader, fallbackSampleRate uint32, fallbackBitsPerSample uint8) (*Header, error) {
	h := crc8.New()
	tr := io.TeeReader(r, h)
	br := bitio.NewReader(tr)

	sync, err := br.ReadBits(14)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}
	if sync != SyncCode {
		return nil, errors.Wrapf(ErrSyncLost, "frame.DecodeHeader: got sync code %014b", sync)
	}

	reserved1, err := br.ReadBool()
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}
	if reserved1 {
		return nil, errors.Wrap(ErrReservedCode, "frame.DecodeHeader: non-zero reserved bit")
	}

	variable, err := br.ReadBool()
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}

	blockBits, err := br.ReadBits(4)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}

	rateBits, err := br.ReadBits(4)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}

	chanBits, err := br.ReadBits(4)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}
	if chanBits > 10 {
		return nil, errors.Wrapf(ErrReservedCode, "frame.DecodeHeader: channel assignment %04b", chanBits)
	}

	sizeBits, err := br.ReadBits(3)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}

	reserved2, err := br.ReadBool()
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}
	if reserved2 {
		return nil, errors.Wrap(ErrReservedCode, "frame.DecodeHeader: non-zero reserved bit")
	}

	num, err := utf8.Decode(br)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}

	hdr := &Header{VariableBlockSize: variable, Channels: Channels(chanBits), Num: num}

	switch {
	case blockBits == 0:
		return nil, errors.Wrap(ErrReservedCode, "frame.DecodeHeader: block size code 0000 is reserved")
	case blockBits == 1:
		hdr.BlockSize = 192
	case blockBits >= 2 && blockBits <= 5:
		hdr.BlockSize = uint16(576) << (blockBits - 2)
	case blockBits == 6:
		x, err := br.ReadBits(8)
		if err != nil {
			return nil, errors.Wrap(err, "frame.DecodeHeader")
		}
		hdr.BlockSize = uint16(x) + 1
	case blockBits == 7:
		x, err := br.ReadBits(16)
		if err != nil {
			return nil, errors.Wrap(err, "frame.DecodeHeader")
		}
		hdr.BlockSize = uint16(x) + 1
	default:
		hdr.BlockSize = uint16(256) << (blockBits - 8)
	}

	switch {
	case rateBits == 0:
		hdr.SampleRate = fallbackSampleRate
	case rateBits <= 11:
		hdr.SampleRate = fixedSampleRates[rateBits]
	case rateBits == 12:
		x, err := br.ReadBits(8)
		if err != nil {
			return nil, errors.Wrap(err, "frame.DecodeHeader")
		}
		hdr.SampleRate = uint32(x) * 1000
	case rateBits == 13:
		x, err := br.ReadBits(16)
		if err != nil {
			return nil, errors.Wrap(err, "frame.DecodeHeader")
		}
		hdr.SampleRate = uint32(x)
	case rateBits == 14:
		x, err := br.ReadBits(16)
		if err != nil {
			return nil, errors.Wrap(err, "frame.DecodeHeader")
		}
		hdr.SampleRate = uint32(x) * 10
	default:
		return nil, errors.Wrap(ErrReservedCode, "frame.DecodeHeader: sample rate code 1111 is invalid")
	}

	switch sizeBits {
	case 0:
		hdr.BitsPerSample = fallbackBitsPerSample
	case 1:
		hdr.BitsPerSample = 8
	case 2:
		hdr.BitsPerSample = 12
	case 3, 7:
		return nil, errors.Wrapf(ErrReservedCode, "frame.DecodeHeader: sample size code %03b", sizeBits)
	case 4:
		hdr.BitsPerSample = 16
	case 5:
		hdr.BitsPerSample = 20
	case 6:
		hdr.BitsPerSample = 24
	}

	if _, err := br.Align(); err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}

	want := h.Sum(nil)[0]
	var got [1]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errors.Wrap(err, "frame.DecodeHeader")
	}
	if got[0] != want {
		return nil, errors.Wrapf(ErrSyncLost, "frame.DecodeHeader: crc-8 mismatch, want %#02x got %#02x", want, got[0])
	}

	return hdr, nil
}
