package meta

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// StreamInfo contains information about the FLAC audio stream. It must be
// present as the first metadata block of a FLAC stream and describes the
// properties that every frame in the stream shares.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_streaminfo
type StreamInfo struct {
	// Minimum block size (in samples) used in the stream; between 16 and
	// 65535 samples. BlockSizeMin == BlockSizeMax implies a fixed-blocksize
	// stream.
	BlockSizeMin uint16
	// Maximum block size (in samples) used in the stream.
	BlockSizeMax uint16
	// Minimum frame size in bytes; a 0 value implies unknown.
	FrameSizeMin uint32
	// Maximum frame size in bytes; a 0 value implies unknown.
	FrameSizeMax uint32
	// Sample rate in Hz; between 1 and 655350 Hz.
	SampleRate uint32
	// Number of channels; between 1 and 8 channels.
	NChannels uint8
	// Sample size in bits-per-sample; between 4 and 32 bits.
	BitsPerSample uint8
	// Total number of inter-channel samples in the stream. A 0 value implies
	// unknown.
	NSamples uint64
	// MD5 checksum of the unencoded audio data.
	MD5sum [16]byte
}

const (
	streamInfoSampleRateMask    = 0xFFFFF00000000000 // 20 bits
	streamInfoChannelCountMask  = 0x00000E0000000000 // 3 bits
	streamInfoBitsPerSampleMask = 0x000001F000000000 // 5 bits
	streamInfoSampleCountMask   = 0x0000000FFFFFFFFF // 36 bits
)

// EncodeStreamInfo writes a STREAMINFO metadata block body (without its
// preceding block header) to w.
//
// Bit layout mirrors DecodeStreamInfo, run in reverse.
func EncodeStreamInfo(w io.Writer, si *StreamInfo) error {
	if err := binary.Write(w, binary.BigEndian, si.BlockSizeMin); err != nil {
		return errors.Wrap(err, "meta.EncodeStreamInfo")
	}

	var bits uint64
	bits |= uint64(si.BlockSizeMax) << 48
	bits |= uint64(si.FrameSizeMin&0xFFFFFF) << 24
	bits |= uint64(si.FrameSizeMax & 0xFFFFFF)
	if err := binary.Write(w, binary.BigEndian, bits); err != nil {
		return errors.Wrap(err, "meta.EncodeStreamInfo")
	}

	bits = 0
	bits |= (uint64(si.SampleRate) << 44) & streamInfoSampleRateMask
	bits |= (uint64(si.NChannels-1) << 41) & streamInfoChannelCountMask
	bits |= (uint64(si.BitsPerSample-1) << 36) & streamInfoBitsPerSampleMask
	bits |= si.NSamples & streamInfoSampleCountMask
	if err := binary.Write(w, binary.BigEndian, bits); err != nil {
		return errors.Wrap(err, "meta.EncodeStreamInfo")
	}

	if _, err := w.Write(si.MD5sum[:]); err != nil {
		return errors.Wrap(err, "meta.EncodeStreamInfo")
	}
	return nil
}

// DecodeStreamInfo parses a STREAMINFO metadata block body. r should be
// limited to the block's declared length by the caller.
//
func DecodeStreamInfo(r io.Reader) (*StreamInfo, error) {
	si := &StreamInfo{}
	if err := binary.Read(r, binary.BigEndian, &si.BlockSizeMin); err != nil {
		return nil, errors.Wrap(err, "meta.DecodeStreamInfo")
	}
	if si.BlockSizeMin < 16 {
		return nil, errors.Errorf("meta.DecodeStreamInfo: invalid min block size; expected >= 16, got %d", si.BlockSizeMin)
	}

	const (
		maxBlockSizeMask = 0xFFFF000000000000 // 16 bits
		minFrameSizeMask = 0x0000FFFFFF000000 // 24 bits
		maxFrameSizeMask = 0x0000000000FFFFFF // 24 bits
	)
	var bits uint64
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return nil, errors.Wrap(err, "meta.DecodeStreamInfo")
	}
	si.BlockSizeMax = uint16(bits & maxBlockSizeMask >> 48)
	if si.BlockSizeMax < 16 {
		return nil, errors.Errorf("meta.DecodeStreamInfo: invalid max block size; expected >= 16, got %d", si.BlockSizeMax)
	}
	si.FrameSizeMin = uint32(bits & minFrameSizeMask >> 24)
	si.FrameSizeMax = uint32(bits & maxFrameSizeMask)

	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return nil, errors.Wrap(err, "meta.DecodeStreamInfo")
	}
	si.SampleRate = uint32(bits & streamInfoSampleRateMask >> 44)
	if si.SampleRate == 0 || si.SampleRate > 655350 {
		return nil, errors.Errorf("meta.DecodeStreamInfo: invalid sample rate; expected > 0 and <= 655350, got %d", si.SampleRate)
	}
	si.NChannels = uint8(bits&streamInfoChannelCountMask>>41) + 1
	si.BitsPerSample = uint8(bits&streamInfoBitsPerSampleMask>>36) + 1
	si.NSamples = bits & streamInfoSampleCountMask

	if _, err := io.ReadFull(r, si.MD5sum[:]); err != nil {
		return nil, errors.Wrap(err, "meta.DecodeStreamInfo")
	}
	return si, nil
}
