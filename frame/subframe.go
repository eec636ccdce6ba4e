package frame

import (
	"github.com/icza/bitio"
	"github.com/pkg/errors"

	iobits "github.com/kzio/flaccore/internal/bits"
)

// Pred identifies the prediction method used to encode a subframe's samples.
type Pred uint8

// Subframe prediction methods.
const (
	PredConstant Pred = iota
	PredVerbatim
	PredFixed
	PredLPC
)

// SubHeader is the 8-bit shared subframe header: type code plus optional
// wasted-bits-per-sample count.
type SubHeader struct {
	Pred Pred
	// Order is the predictor order for Fixed (0-4) and LPC (1-32).
	Order int
	// Wasted is the number of wasted (shifted-out) low bits per sample. The
	// encoder never produces a non-zero value (Non-goal); the decoder must
	// still undo it when present.
	Wasted uint
}

// Subframe holds one channel's encoded block: a header tag plus the fields
// relevant to that tag, following "polymorphism over subframes" — a single
// tagged struct rather than an interface hierarchy.
type Subframe struct {
	SubHeader
	NSamples int
	// Samples holds the full reconstructed (decode) or source (encode)
	// sample block.
	Samples []int32

	ResidualCodingMethod ResidualCodingMethod
	RiceSubframe         *RiceSubframe

	// LPC-only fields, populated on decode tolerance.
	LPCPrecision int
	LPCShift     uint
	LPCCoeffs    []int32
}

// EncodeSubframe writes subframe to bw using the frame's bits-per-sample.
//
func EncodeSubframe(bw *bitio.Writer, bps uint, sf *Subframe) error {
	if err := encodeSubHeader(bw, sf.SubHeader); err != nil {
		return err
	}
	switch sf.Pred {
	case PredConstant:
		return encodeConstant(bw, bps, sf)
	case PredVerbatim:
		return encodeVerbatim(bw, bps, sf)
	case PredFixed:
		return encodeFixed(bw, bps, sf)
	default:
		return errors.Errorf("frame.EncodeSubframe: unsupported prediction method %v", sf.Pred)
	}
}

func encodeSubHeader(bw *bitio.Writer, sh SubHeader) error {
	if err := bw.WriteBits(0x0, 1); err != nil {
		return errors.Wrap(err, "frame.encodeSubHeader")
	}
	var typeBits uint64
	switch sh.Pred {
	case PredConstant:
		typeBits = 0x00
	case PredVerbatim:
		typeBits = 0x01
	case PredFixed:
		typeBits = 0x08 | uint64(sh.Order)
	case PredLPC:
		typeBits = 0x20 | uint64(sh.Order-1)
	}
	if err := bw.WriteBits(typeBits, 6); err != nil {
		return errors.Wrap(err, "frame.encodeSubHeader")
	}
	hasWasted := sh.Wasted > 0
	if err := bw.WriteBool(hasWasted); err != nil {
		return errors.Wrap(err, "frame.encodeSubHeader")
	}
	if hasWasted {
		if err := iobits.WriteUnary(bw, uint64(sh.Wasted-1)); err != nil {
			return errors.Wrap(err, "frame.encodeSubHeader")
		}
	}
	return nil
}

func encodeConstant(bw *bitio.Writer, bps uint, sf *Subframe) error {
	if err := bw.WriteBits(uint64(uint32(sf.Samples[0])), uint8(bps)); err != nil {
		return errors.Wrap(err, "frame.encodeConstant")
	}
	return nil
}

func encodeVerbatim(bw *bitio.Writer, bps uint, sf *Subframe) error {
	for _, s := range sf.Samples {
		if err := bw.WriteBits(uint64(uint32(s)), uint8(bps)); err != nil {
			return errors.Wrap(err, "frame.encodeVerbatim")
		}
	}
	return nil
}

func encodeFixed(bw *bitio.Writer, bps uint, sf *Subframe) error {
	for i := 0; i < sf.Order; i++ {
		if err := bw.WriteBits(uint64(uint32(sf.Samples[i])), uint8(bps)); err != nil {
			return errors.Wrap(err, "frame.encodeFixed")
		}
	}
	residuals := fixedResidual(sf.Samples, sf.Order)
	if _, err := encodeResidual(bw, residuals); err != nil {
		return errors.Wrap(err, "frame.encodeFixed")
	}
	return nil
}

// DecodeSubframe reads one subframe of nsamples samples at the given
// bits-per-sample.
//
// Dispatches on the subframe header's predictor type to one of the
// Constant/Fixed/Verbatim/LPC decode paths.
func DecodeSubframe(br *bitio.Reader, bps uint, nsamples int) (*Subframe, error) {
	sh, err := decodeSubHeader(br)
	if err != nil {
		return nil, err
	}
	effectiveBps := bps - sh.Wasted

	sf := &Subframe{SubHeader: sh, NSamples: nsamples}
	switch sh.Pred {
	case PredConstant:
		sf.Samples, err = decodeConstant(br, effectiveBps, nsamples)
	case PredVerbatim:
		sf.Samples, err = decodeVerbatim(br, effectiveBps, nsamples)
	case PredFixed:
		sf.Samples, err = decodeFixed(br, effectiveBps, sh.Order, nsamples)
	case PredLPC:
		sf.Samples, sf.LPCPrecision, sf.LPCShift, sf.LPCCoeffs, err = decodeLPC(br, effectiveBps, sh.Order, nsamples)
	default:
		return nil, errors.Errorf("frame.DecodeSubframe: unhandled prediction method %v", sh.Pred)
	}
	if err != nil {
		return nil, err
	}
	if sh.Wasted > 0 {
		for i, s := range sf.Samples {
			sf.Samples[i] = s << sh.Wasted
		}
	}
	return sf, nil
}

func decodeSubHeader(br *bitio.Reader) (SubHeader, error) {
	padding, err := br.ReadBool()
	if err != nil {
		return SubHeader{}, errors.Wrap(err, "frame.decodeSubHeader")
	}
	if padding {
		return SubHeader{}, errors.Wrap(ErrReservedCode, "frame.decodeSubHeader: non-zero padding bit")
	}
	typeBits, err := br.ReadBits(6)
	if err != nil {
		return SubHeader{}, errors.Wrap(err, "frame.decodeSubHeader")
	}

	var sh SubHeader
	switch {
	case typeBits == 0:
		sh.Pred = PredConstant
	case typeBits == 1:
		sh.Pred = PredVerbatim
	case typeBits < 8:
		return SubHeader{}, errors.Wrapf(ErrReservedCode, "frame.decodeSubHeader: subframe type %06b", typeBits)
	case typeBits < 16:
		order := int(typeBits & 0x07)
		if order > 4 {
			return SubHeader{}, errors.Wrapf(ErrReservedCode, "frame.decodeSubHeader: fixed order %d", order)
		}
		sh.Pred = PredFixed
		sh.Order = order
	case typeBits < 32:
		return SubHeader{}, errors.Wrapf(ErrReservedCode, "frame.decodeSubHeader: subframe type %06b", typeBits)
	default:
		sh.Pred = PredLPC
		sh.Order = int(typeBits&0x1F) + 1
	}

	hasWasted, err := br.ReadBool()
	if err != nil {
		return SubHeader{}, errors.Wrap(err, "frame.decodeSubHeader")
	}
	if hasWasted {
		k, err := iobits.ReadUnary(br)
		if err != nil {
			return SubHeader{}, errors.Wrap(err, "frame.decodeSubHeader")
		}
		sh.Wasted = uint(k) + 1
	}
	return sh, nil
}

func decodeConstant(br *bitio.Reader, bps uint, nsamples int) ([]int32, error) {
	x, err := br.ReadBits(uint8(bps))
	if err != nil {
		return nil, errors.Wrap(err, "frame.decodeConstant")
	}
	sample := iobits.SignExtend(x, bps)
	samples := make([]int32, nsamples)
	for i := range samples {
		samples[i] = sample
	}
	return samples, nil
}

func decodeVerbatim(br *bitio.Reader, bps uint, nsamples int) ([]int32, error) {
	samples := make([]int32, nsamples)
	for i := range samples {
		x, err := br.ReadBits(uint8(bps))
		if err != nil {
			return nil, errors.Wrap(err, "frame.decodeVerbatim")
		}
		samples[i] = iobits.SignExtend(x, bps)
	}
	return samples, nil
}

func decodeFixed(br *bitio.Reader, bps uint, order int, nsamples int) ([]int32, error) {
	warmup := make([]int32, order)
	for i := range warmup {
		x, err := br.ReadBits(uint8(bps))
		if err != nil {
			return nil, errors.Wrap(err, "frame.decodeFixed")
		}
		warmup[i] = iobits.SignExtend(x, bps)
	}
	residuals, err := decodeResidual(br, order, nsamples)
	if err != nil {
		return nil, err
	}
	return reconstruct(FixedCoeffs[order], 0, warmup, residuals), nil
}

func decodeLPC(br *bitio.Reader, bps uint, order int, nsamples int) (samples []int32, precision int, shift uint, coeffs []int32, err error) {
	warmup := make([]int32, order)
	for i := range warmup {
		x, rerr := br.ReadBits(uint8(bps))
		if rerr != nil {
			return nil, 0, 0, nil, errors.Wrap(rerr, "frame.decodeLPC")
		}
		warmup[i] = iobits.SignExtend(x, bps)
	}

	precBits, err := br.ReadBits(4)
	if err != nil {
		return nil, 0, 0, nil, errors.Wrap(err, "frame.decodeLPC")
	}
	if precBits == 0xF {
		return nil, 0, 0, nil, errors.Wrap(ErrReservedCode, "frame.decodeLPC: invalid quantized precision")
	}
	precision = int(precBits) + 1

	shiftBits, err := br.ReadBits(5)
	if err != nil {
		return nil, 0, 0, nil, errors.Wrap(err, "frame.decodeLPC")
	}
	signedShift := iobits.SignExtend(shiftBits, 5)
	if signedShift < 0 {
		return nil, 0, 0, nil, errors.New("frame.decodeLPC: negative shift not supported")
	}
	shift = uint(signedShift)

	coeffs = make([]int32, order)
	for i := range coeffs {
		x, rerr := br.ReadBits(uint8(precision))
		if rerr != nil {
			return nil, 0, 0, nil, errors.Wrap(rerr, "frame.decodeLPC")
		}
		coeffs[i] = iobits.SignExtend(x, uint(precision))
	}

	residuals, err := decodeResidual(br, order, nsamples)
	if err != nil {
		return nil, 0, 0, nil, err
	}
	samples = reconstruct(coeffs, shift, warmup, residuals)
	return samples, precision, shift, coeffs, nil
}

// BitLength returns the number of bits EncodeSubframe would emit for sf at
// the given bits-per-sample, used by the encoder orchestrator to choose the
// shortest candidate.
func BitLength(bps uint, sf *Subframe) int {
	const headerBits = 8
	switch sf.Pred {
	case PredConstant:
		return headerBits + int(bps)
	case PredVerbatim:
		return headerBits + len(sf.Samples)*int(bps)
	case PredFixed:
		residuals := fixedResidual(sf.Samples, sf.Order)
		k := chooseRiceParam(residuals)
		return headerBits + sf.Order*int(bps) + 2 + 4 + 5 + riceResidualBits(residuals, k)
	default:
		return int(^uint(0) >> 1)
	}
}
