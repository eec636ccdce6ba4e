package frame

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/kzio/flaccore/internal/crc/crc16"
)

// Frame holds one decoded/encodable unit of audio: a header plus one
// subframe per channel. A decorrelated stereo assignment also carries two
// subframes; after DecodeFrame they hold the restored left and right
// channels.
type Frame struct {
	Header    Header
	Subframes []*Subframe
}

// EncodeFrame writes a frame built from per-channel subframes to w, followed
// by its CRC-16 footer. The encoder only ever produces ChannelsMono or
// ChannelsLR (Non-goal: no inter-channel decorrelation).
//
// A CRC-16 hash is accumulated over everything written for the frame,
// including the header, then appended as a big-endian footer.
func EncodeFrame(w io.Writer, hdr Header, subframes []*Subframe) error {
	if hdr.Channels != ChannelsLR && hdr.Channels != ChannelsMono {
		return errors.Errorf("frame.EncodeFrame: unsupported channel assignment %v", hdr.Channels)
	}
	if hdr.Channels.Count() != len(subframes) {
		return errors.Errorf("frame.EncodeFrame: channel assignment %v expects %d subframes, got %d", hdr.Channels, hdr.Channels.Count(), len(subframes))
	}

	h := crc16.New()
	buf := &bytes.Buffer{}
	hw := io.MultiWriter(buf, h)

	if err := EncodeHeader(hw, hdr); err != nil {
		return errors.Wrap(err, "frame.EncodeFrame")
	}

	bw := bitio.NewWriter(hw)
	for _, sf := range subframes {
		if err := EncodeSubframe(bw, uint(hdr.BitsPerSample), sf); err != nil {
			return errors.Wrap(err, "frame.EncodeFrame")
		}
	}
	if _, err := bw.Align(); err != nil {
		return errors.Wrap(err, "frame.EncodeFrame")
	}
	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "frame.EncodeFrame")
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "frame.EncodeFrame")
	}

	footer := h.Sum(nil)
	if _, err := w.Write(footer); err != nil {
		return errors.Wrap(err, "frame.EncodeFrame")
	}
	return nil
}

// DecodeFrame reads one frame from r. fallbackSampleRate and
// fallbackBitsPerSample are used when the frame header defers to STREAMINFO;
// they are threaded through from the stream's STREAMINFO metadata block.
//
// Decodes the header, then each channel's subframe in turn, validates the
// trailing CRC-16 footer, and undoes inter-channel decorrelation via
// Undecorrelate.
func DecodeFrame(r io.Reader, fallbackSampleRate uint32, fallbackBitsPerSample uint8) (*Frame, error) {
	h := crc16.New()
	tr := io.TeeReader(r, h)

	hdr, err := DecodeHeader(tr, fallbackSampleRate, fallbackBitsPerSample)
	if err != nil {
		return nil, errors.Wrap(err, "frame.DecodeFrame")
	}

	nsubframes := hdr.Channels.Count()
	if nsubframes == 0 {
		return nil, errors.Wrapf(ErrReservedCode, "frame.DecodeFrame: channel assignment %v", hdr.Channels)
	}

	br := bitio.NewReader(tr)
	subframes := make([]*Subframe, nsubframes)
	for i := range subframes {
		bps := hdr.BitsPerSample
		if hdr.Channels == ChannelsLeftSide && i == 1 {
			bps++
		} else if hdr.Channels == ChannelsSideRight && i == 0 {
			bps++
		} else if hdr.Channels == ChannelsMidSide && i == 1 {
			bps++
		}
		sf, err := DecodeSubframe(br, uint(bps), int(hdr.BlockSize))
		if err != nil {
			return nil, errors.Wrapf(err, "frame.DecodeFrame: subframe %d", i)
		}
		subframes[i] = sf
	}
	if _, err := br.Align(); err != nil {
		return nil, errors.Wrap(err, "frame.DecodeFrame")
	}

	sum := h.Sum(nil)
	want := uint16(sum[0])<<8 | uint16(sum[1])
	var got [2]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errors.Wrap(err, "frame.DecodeFrame")
	}
	gotVal := uint16(got[0])<<8 | uint16(got[1])
	if gotVal != want {
		return nil, errors.Wrapf(ErrSyncLost, "frame.DecodeFrame: crc-16 mismatch, want %#04x got %#04x", want, gotVal)
	}

	if hdr.Channels.Decorrelated() {
		left, right, err := Undecorrelate(hdr.Channels, subframes[0].Samples, subframes[1].Samples)
		if err != nil {
			return nil, errors.Wrap(err, "frame.DecodeFrame")
		}
		subframes[0].Samples = left
		subframes[1].Samples = right
	}

	return &Frame{Header: *hdr, Subframes: subframes}, nil
}
