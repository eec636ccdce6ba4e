// Package bits provides the FLAC-specific bit-level helpers layered on top of
// github.com/icza/bitio: two's-complement sign extension, zig-zag mapping,
// unary coding and Rice coding. Byte alignment and raw bit packing are left to
// bitio.Reader/bitio.Writer directly.
package bits

import (
	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// SignExtend interprets x as a signed n-bit two's-complement integer and
// widens it to a 32-bit signed integer.
func SignExtend(x uint64, n uint) int32 {
	signBit := uint64(1) << (n - 1)
	if x&signBit == 0 {
		return int32(x)
	}
	return int32(x | ^uint64(0)<<n)
}

// EncodeZigZag maps a signed integer to an unsigned integer so that small
// magnitudes (of either sign) map to small unsigned values.
//
//	 0 => 0
//	-1 => 1
//	 1 => 2
//	-2 => 3
func EncodeZigZag(x int32) uint32 {
	if x < 0 {
		return uint32(-x)<<1 - 1
	}
	return uint32(x) << 1
}

// DecodeZigZag is the inverse of EncodeZigZag.
func DecodeZigZag(x uint32) int32 {
	return int32(x>>1) ^ -int32(x&1)
}

// WriteUnary writes x as a unary coded integer: x zero bits followed by a
// terminating one bit.
func WriteUnary(bw *bitio.Writer, x uint64) error {
	for ; x >= 8; x -= 8 {
		if err := bw.WriteByte(0x0); err != nil {
			return errors.Wrap(err, "bits.WriteUnary")
		}
	}
	if err := bw.WriteBits(1, uint8(x+1)); err != nil {
		return errors.Wrap(err, "bits.WriteUnary")
	}
	return nil
}

// ReadUnary reads a unary coded integer: the number of leading zero bits
// before a terminating one bit.
func ReadUnary(br *bitio.Reader) (uint64, error) {
	var x uint64
	for {
		b, err := br.ReadBool()
		if err != nil {
			return 0, errors.Wrap(err, "bits.ReadUnary")
		}
		if b {
			return x, nil
		}
		x++
	}
}

// WriteRiceSigned writes the signed residual v using Rice coding with
// parameter k: the zig-zag mapped magnitude is split into a unary-coded
// quotient and a k-bit binary remainder.
func WriteRiceSigned(bw *bitio.Writer, k uint, v int32) error {
	folded := EncodeZigZag(v)
	high := folded >> k
	if err := WriteUnary(bw, uint64(high)); err != nil {
		return err
	}
	if k == 0 {
		return nil
	}
	low := folded & (^uint32(0) >> (32 - k))
	if err := bw.WriteBits(uint64(low), uint8(k)); err != nil {
		return errors.Wrap(err, "bits.WriteRiceSigned")
	}
	return nil
}

// ReadRiceSigned reads a Rice-coded signed residual with parameter k.
func ReadRiceSigned(br *bitio.Reader, k uint) (int32, error) {
	high, err := ReadUnary(br)
	if err != nil {
		return 0, err
	}
	var low uint64
	if k > 0 {
		low, err = br.ReadBits(uint8(k))
		if err != nil {
			return 0, errors.Wrap(err, "bits.ReadRiceSigned")
		}
	}
	folded := uint32(high)<<k | uint32(low)
	return DecodeZigZag(folded), nil
}
