// Package flac provides access to FLAC (Free Lossless Audio Codec) streams.
//
// A FLAC stream starts with the four byte marker "fLaC", followed by one or
// more metadata blocks (the first of which must be STREAMINFO), followed by
// one or more audio frames.
package flac

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/kzio/flaccore/frame"
	"github.com/kzio/flaccore/internal/bufseekio"
	"github.com/kzio/flaccore/meta"
)

// Stream contains the metadata and audio samples of a FLAC stream.
//
// Grounded on the pack's pchchv-flac/flac.go Stream/New/Parse/parseStreamInfo
// structure: STREAMINFO is parsed eagerly (every frame header may defer its
// sample rate/bits-per-sample to it), while the remaining metadata blocks are
// either skipped (New) or fully decoded and retained (Parse).
type Stream struct {
	// Info holds the fixed properties shared by every frame in the stream.
	Info *meta.StreamInfo
	// MetaBlocks holds every metadata block after STREAMINFO, fully decoded.
	// Populated only by Parse/Open, left nil by New.
	MetaBlocks []*meta.Block

	r      io.Reader
	closer io.Closer
}

const magic = "fLaC"

// Open opens the FLAC file at filePath and parses its metadata, including
// every metadata block. The stream's underlying file is closed by
// Stream.Close.
func Open(filePath string) (*Stream, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "flac.Open")
	}
	// Frame-by-frame decoding issues many small reads; buffer them through
	// bufseekio rather than hitting the OS on every bitio fill.
	s, err := Parse(bufseekio.NewReadSeeker(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// New creates a stream for accessing the audio samples of r. It parses the
// "fLaC" magic and the STREAMINFO block, and skips the body of every other
// metadata block without decoding it.
func New(r io.Reader) (*Stream, error) {
	return newStream(r, false)
}

// Parse creates a stream for accessing the audio samples of r, like New, but
// additionally decodes every metadata block body into Stream.MetaBlocks.
func Parse(r io.Reader) (*Stream, error) {
	return newStream(r, true)
}

func newStream(r io.Reader, decodeMeta bool) (*Stream, error) {
	var got [len(magic)]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errors.Wrap(err, "flac.New")
	}
	if string(got[:]) != magic {
		return nil, errors.Wrapf(ErrBadMagic, "flac.New: got %q", got)
	}

	s := &Stream{r: r}
	first := true
	for {
		block, err := meta.New(r)
		if err != nil {
			return nil, errors.Wrap(err, "flac.New")
		}
		if first {
			if block.Type != meta.TypeStreamInfo {
				return nil, errors.Wrap(ErrMissingStreamInfo, "flac.New")
			}
			first = false
		}

		switch {
		case block.Type == meta.TypeStreamInfo:
			if err := block.Parse(); err != nil {
				return nil, errors.Wrap(err, "flac.New")
			}
			si, ok := block.Body.(*meta.StreamInfo)
			if !ok {
				return nil, errors.Wrap(ErrMissingStreamInfo, "flac.New: malformed StreamInfo body")
			}
			if si.BitsPerSample%8 != 0 {
				return nil, errors.Wrapf(ErrUnsupportedSampleSize, "flac.New: sample size %d is not a whole number of bytes", si.BitsPerSample)
			}
			s.Info = si
		case decodeMeta:
			if err := block.Parse(); err != nil {
				return nil, errors.Wrap(err, "flac.New")
			}
			s.MetaBlocks = append(s.MetaBlocks, block)
		default:
			if err := block.Skip(); err != nil {
				return nil, errors.Wrap(err, "flac.New")
			}
		}

		if block.IsLast {
			break
		}
	}
	return s, nil
}

// Next reads and fully decodes the next frame, exactly as ParseNext does.
//
// The frame/meta packages do not expose a way to decode a header and defer
// its subframes to a later call (there is nowhere to resume from once the
// bit reader has moved past the header), so Next is a thin alias for
// ParseNext: both return a fully decoded frame. The two-method shape is kept
// because it is the shape the pack's decoder APIs converge on, even though
// every caller in this module (flac2wav) only ever needs ParseNext.
func (s *Stream) Next() (*frame.Frame, error) {
	return s.ParseNext()
}

// ParseNext reads and fully decodes the next frame, including its
// subframes. It returns io.EOF once every frame in the stream has been
// read.
func (s *Stream) ParseNext() (*frame.Frame, error) {
	var b [1]byte
	n, err := io.ReadFull(s.r, b[:])
	if n == 0 {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "flac.Stream.ParseNext")
	}
	r := io.MultiReader(bytes.NewReader(b[:]), s.r)
	f, err := frame.DecodeFrame(r, s.Info.SampleRate, uint8(s.Info.BitsPerSample))
	if err != nil {
		return nil, errors.Wrap(err, "flac.Stream.ParseNext")
	}
	return f, nil
}

// Close releases the resources (if any) acquired by Open.
func (s *Stream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
