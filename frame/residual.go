package frame

import (
	"math"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	iobits "github.com/kzio/flaccore/internal/bits"
)

// ResidualCodingMethod selects the width of the per-partition Rice parameter.
type ResidualCodingMethod uint8

const (
	// ResidualCodingMethodRice1 codes each partition's Rice parameter in 4
	// bits (escape sentinel 15). Decoder-only: the encoder always prefers
	// Rice2's wider parameter range.
	ResidualCodingMethodRice1 ResidualCodingMethod = 0
	// ResidualCodingMethodRice2 codes each partition's Rice parameter in 5
	// bits (escape sentinel 31). This is the only method the encoder emits.
	ResidualCodingMethodRice2 ResidualCodingMethod = 1
)

func (m ResidualCodingMethod) paramSize() uint8 {
	if m == ResidualCodingMethodRice1 {
		return 4
	}
	return 5
}

func (m ResidualCodingMethod) escape() uint64 {
	if m == ResidualCodingMethodRice1 {
		return 0xF
	}
	return 0x1F
}

// RicePartition is a single partition of a partitioned-Rice-coded residual.
type RicePartition struct {
	// Param is the Rice parameter for this partition. Unused when Escape is
	// set.
	Param uint
	// Escape indicates the partition stores its residual samples as
	// unencoded signed integers of EscapeWidth bits instead of Rice coding
	// them (decoder tolerance only; the encoder never emits this).
	Escape      bool
	EscapeWidth uint
}

// RiceSubframe carries the partitioned-Rice layout chosen for a Fixed or LPC
// subframe's residual.
type RiceSubframe struct {
	PartOrder  uint8
	Partitions []RicePartition
}

// chooseRiceParam picks the Rice parameter for a residual signal following
// the encoder's closed-form heuristic: p = max(0, ceil(log2(ln2 * E))) where
// E = ceil(mean(|r|)), or 0 when E == 0.
//
// This closed-form choice, rather than a brute-force scan over k=0..14 for
// the minimal encoded length, keeps encoder output reproducible directly
// from the formula.
func chooseRiceParam(residuals []int32) uint {
	if len(residuals) == 0 {
		return 0
	}
	var sum float64
	for _, r := range residuals {
		if r < 0 {
			sum += float64(-r)
		} else {
			sum += float64(r)
		}
	}
	mean := sum / float64(len(residuals))
	e := math.Ceil(mean)
	if e <= 0 {
		return 0
	}
	p := math.Ceil(math.Log2(math.Ln2 * e))
	if p < 0 {
		return 0
	}
	return uint(p)
}

// riceResidualBits returns the number of bits needed to Rice-code residuals
// with parameter k.
func riceResidualBits(residuals []int32, k uint) int {
	bits := 0
	for _, r := range residuals {
		folded := iobits.EncodeZigZag(r)
		bits += int(folded>>k) + 1 + int(k)
	}
	return bits
}

// encodeResidual writes the 2-bit residual coding method followed by a
// single Rice2 partition (partition_order always 0, per Non-goals) for the
// given residual signal.
//
// Always emits method Rice2 with partition order 0.
func encodeResidual(bw *bitio.Writer, residuals []int32) (k uint, err error) {
	if err := bw.WriteBits(uint64(ResidualCodingMethodRice2), 2); err != nil {
		return 0, errors.Wrap(err, "frame.encodeResidual")
	}
	// 4-bit partition order, always 0.
	if err := bw.WriteBits(0, 4); err != nil {
		return 0, errors.Wrap(err, "frame.encodeResidual")
	}
	k = chooseRiceParam(residuals)
	if k >= 31 {
		return 0, errors.New("frame.encodeResidual: rice parameter overflow")
	}
	if err := bw.WriteBits(uint64(k), 5); err != nil {
		return 0, errors.Wrap(err, "frame.encodeResidual")
	}
	for _, r := range residuals {
		if err := iobits.WriteRiceSigned(bw, k, r); err != nil {
			return 0, errors.Wrap(err, "frame.encodeResidual")
		}
	}
	return k, nil
}

// decodeResidual reads a Residual (method + partitioned Rice data) for a
// subframe of the given predictor order and block size.
//
// Covers both Rice coding methods (method 0's 4-bit parameters and method
// 1's 5-bit parameters, including the per-partition escape code) and every
// partition order, since a conforming decoder must tolerate any of them.
func decodeResidual(br *bitio.Reader, order int, blockSize int) ([]int32, error) {
	methodBits, err := br.ReadBits(2)
	if err != nil {
		return nil, errors.Wrap(err, "frame.decodeResidual")
	}
	switch methodBits {
	case 0:
		return decodePartitionedRice(br, ResidualCodingMethodRice1, order, blockSize)
	case 1:
		return decodePartitionedRice(br, ResidualCodingMethodRice2, order, blockSize)
	default:
		return nil, errors.Wrap(ErrReservedCode, "frame.decodeResidual: reserved residual coding method")
	}
}

func decodePartitionedRice(br *bitio.Reader, method ResidualCodingMethod, order int, blockSize int) ([]int32, error) {
	partOrderBits, err := br.ReadBits(4)
	if err != nil {
		return nil, errors.Wrap(err, "frame.decodePartitionedRice")
	}
	partOrder := uint(partOrderBits)
	nparts := 1 << partOrder
	if blockSize%nparts != 0 {
		return nil, errors.Wrap(ErrPartitionMismatch, "frame.decodePartitionedRice")
	}

	residuals := make([]int32, 0, blockSize-order)
	paramSize := method.paramSize()
	escape := method.escape()
	for i := 0; i < nparts; i++ {
		var n int
		if partOrder == 0 {
			n = blockSize - order
		} else if i != 0 {
			n = blockSize / nparts
		} else {
			n = blockSize/nparts - order
		}

		param, err := br.ReadBits(paramSize)
		if err != nil {
			return nil, errors.Wrap(err, "frame.decodePartitionedRice")
		}
		if uint64(param) == escape {
			w, err := br.ReadBits(5)
			if err != nil {
				return nil, errors.Wrap(err, "frame.decodePartitionedRice")
			}
			for j := 0; j < n; j++ {
				if w == 0 {
					residuals = append(residuals, 0)
					continue
				}
				x, err := br.ReadBits(uint8(w))
				if err != nil {
					return nil, errors.Wrap(err, "frame.decodePartitionedRice")
				}
				residuals = append(residuals, iobits.SignExtend(x, uint(w)))
			}
			continue
		}
		for j := 0; j < n; j++ {
			r, err := iobits.ReadRiceSigned(br, uint(param))
			if err != nil {
				return nil, errors.Wrap(err, "frame.decodePartitionedRice")
			}
			residuals = append(residuals, r)
		}
	}
	return residuals, nil
}
