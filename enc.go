package flac

import (
	"crypto/md5"
	"encoding/binary"
	"hash"
	"io"

	"github.com/pkg/errors"

	"github.com/kzio/flaccore/frame"
	"github.com/kzio/flaccore/meta"
)

// maxFrameNum is the largest frame number internal/utf8's coding can carry.
const maxFrameNum = 1<<36 - 1

// Encoder writes a FLAC stream for the fixed 16-bit/44.1kHz/stereo
// configuration frame.BlockSize/frame.SampleRate/frame.SampleSize/
// frame.NumChannels name; no other configuration is supported.
//
// Per-block, per-channel candidate generation (Constant, Verbatim, Fixed
// 0..4) picks whichever encoding frame.BitLength reports as shortest.
// Frame-level orchestration tracks block offsets, frame numbering, and the
// stream's final short block.
type Encoder struct {
	w  io.Writer
	ws io.WriteSeeker

	info       meta.StreamInfo
	infoOffset int64

	digest   hash.Hash
	frameNum uint64
	nsamples uint64

	left, right []int32
}

// NewEncoder writes the "fLaC" magic and a STREAMINFO metadata block (marked
// last, since the encoder never emits any other metadata block) and returns
// an Encoder ready to accept samples via WriteSamples.
//
// If w implements io.WriteSeeker, the STREAMINFO block is patched in place
// by Close once the final sample count and MD5 digest are known; otherwise
// those fields are left as written (0 / zero digest), since a forward-only
// writer cannot be rewound to fix them up.
func NewEncoder(w io.Writer) (*Encoder, error) {
	if _, err := io.WriteString(w, magic); err != nil {
		return nil, errors.Wrap(err, "flac.NewEncoder")
	}

	e := &Encoder{w: w, digest: md5.New()}
	if ws, ok := w.(io.WriteSeeker); ok {
		e.ws = ws
	}

	if err := meta.EncodeHeader(w, meta.Header{Type: meta.TypeStreamInfo, Length: 34, IsLast: true}); err != nil {
		return nil, errors.Wrap(err, "flac.NewEncoder")
	}
	if e.ws != nil {
		pos, err := e.ws.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, errors.Wrap(err, "flac.NewEncoder")
		}
		e.infoOffset = pos
	}

	e.info = meta.StreamInfo{
		BlockSizeMin:  frame.BlockSize,
		BlockSizeMax:  frame.BlockSize,
		SampleRate:    frame.SampleRate,
		NChannels:     frame.NumChannels,
		BitsPerSample: frame.SampleSize,
	}
	if err := meta.EncodeStreamInfo(w, &e.info); err != nil {
		return nil, errors.Wrap(err, "flac.NewEncoder")
	}
	return e, nil
}

// WriteSamples appends interleaved-by-channel left/right samples to the
// stream, flushing full frame.BlockSize blocks as they fill. left and right
// must have equal length.
func (e *Encoder) WriteSamples(left, right []int32) error {
	if len(left) != len(right) {
		return errors.Errorf("flac.Encoder.WriteSamples: channel length mismatch: %d left, %d right", len(left), len(right))
	}
	e.feedDigest(left, right)

	i := 0
	for i < len(left) {
		space := frame.BlockSize - len(e.left)
		n := len(left) - i
		if n > space {
			n = space
		}
		e.left = append(e.left, left[i:i+n]...)
		e.right = append(e.right, right[i:i+n]...)
		i += n
		if len(e.left) == frame.BlockSize {
			if err := e.flushBlock(); err != nil {
				return err
			}
		}
	}
	return nil
}

// feedDigest accumulates the MD5 of the unencoded audio data, as raw
// interleaved little-endian 16-bit PCM, matching the bytes a WAVE data chunk
// would carry.
func (e *Encoder) feedDigest(left, right []int32) {
	buf := make([]byte, 4*len(left))
	for i := range left {
		binary.LittleEndian.PutUint16(buf[4*i:], uint16(int16(left[i])))
		binary.LittleEndian.PutUint16(buf[4*i+2:], uint16(int16(right[i])))
	}
	e.digest.Write(buf)
}

// flushBlock encodes the accumulated samples (frame.BlockSize, or fewer for
// the stream's final block) as one frame.
func (e *Encoder) flushBlock() error {
	n := len(e.left)
	if n == 0 {
		return nil
	}
	if e.frameNum > maxFrameNum {
		return errors.Wrap(ErrEncodeOverflow, "flac.Encoder.flushBlock: frame number exceeds 36-bit range")
	}

	hdr := frame.Header{
		BlockSize:     uint16(n),
		SampleRate:    frame.SampleRate,
		Channels:      frame.ChannelsLR,
		BitsPerSample: frame.SampleSize,
		Num:           e.frameNum,
	}
	subframes := []*frame.Subframe{
		chooseSubframe(e.left),
		chooseSubframe(e.right),
	}
	if err := frame.EncodeFrame(e.w, hdr, subframes); err != nil {
		return errors.Wrap(err, "flac.Encoder.flushBlock")
	}

	e.frameNum++
	e.nsamples += uint64(n)
	e.left = e.left[:0]
	e.right = e.right[:0]
	return nil
}

// chooseSubframe builds every candidate encoding (Constant when applicable,
// Verbatim, Fixed orders 0-4) for one channel's block of samples and returns
// the one frame.BitLength reports as shortest.
func chooseSubframe(samples []int32) *frame.Subframe {
	candidates := make([]*frame.Subframe, 0, 6)

	constant := true
	for _, s := range samples[1:] {
		if s != samples[0] {
			constant = false
			break
		}
	}
	if constant {
		candidates = append(candidates, &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredConstant},
			NSamples:  len(samples),
			Samples:   samples,
		})
	}

	candidates = append(candidates, &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
		NSamples:  len(samples),
		Samples:   samples,
	})

	for order := 0; order <= 4 && order < len(samples); order++ {
		candidates = append(candidates, &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredFixed, Order: order},
			NSamples:  len(samples),
			Samples:   samples,
		})
	}

	best := candidates[0]
	bestBits := frame.BitLength(frame.SampleSize, best)
	for _, c := range candidates[1:] {
		bits := frame.BitLength(frame.SampleSize, c)
		if bits < bestBits {
			best, bestBits = c, bits
		}
	}
	return best
}

// Close flushes any partial final block and, if the underlying writer
// supports seeking, patches the STREAMINFO block with the final sample count
// and MD5 digest.
func (e *Encoder) Close() error {
	if err := e.flushBlock(); err != nil {
		return err
	}
	e.info.NSamples = e.nsamples
	sum := e.digest.Sum(nil)
	copy(e.info.MD5sum[:], sum)

	if e.ws == nil {
		return nil
	}
	cur, err := e.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "flac.Encoder.Close")
	}
	if _, err := e.ws.Seek(e.infoOffset, io.SeekStart); err != nil {
		return errors.Wrap(err, "flac.Encoder.Close")
	}
	if err := meta.EncodeStreamInfo(e.ws, &e.info); err != nil {
		return errors.Wrap(err, "flac.Encoder.Close")
	}
	if _, err := e.ws.Seek(cur, io.SeekStart); err != nil {
		return errors.Wrap(err, "flac.Encoder.Close")
	}
	return nil
}
