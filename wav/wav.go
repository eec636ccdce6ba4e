// Package wav adapts github.com/go-audio/wav's decoder/encoder to the fixed
// 16-bit/44.1kHz/stereo PCM configuration flaccore encodes. It does not
// compute the STREAMINFO MD5 digest; the root package's Encoder does that
// from the samples passed to WriteSamples.
//
// Drives github.com/go-audio/wav/github.com/go-audio/audio directly
// (wav.NewDecoder, dec.IsValidFile, dec.SampleRate/NumChans/BitDepth,
// dec.FwdToPCM, dec.PCMBuffer, dec.EOF, audio.IntBuffer) rather than a
// hand-rolled RIFF parser.
package wav

import (
	"io"

	"github.com/go-audio/audio"
	wavcodec "github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/kzio/flaccore/frame"
)

// Source reads fixed-configuration PCM samples from a WAVE file, split by
// channel, one frame.BlockSize-sized block at a time.
type Source struct {
	dec *wavcodec.Decoder
	buf *audio.IntBuffer
}

// NewSource validates r as a 16-bit/44.1kHz/stereo WAVE file and returns a
// Source ready for ReadBlock.
func NewSource(r io.ReadSeeker) (*Source, error) {
	dec := wavcodec.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("wav.NewSource: not a valid WAVE file")
	}
	if dec.NumChans != frame.NumChannels {
		return nil, errors.Wrapf(ErrUnsupportedChannelCount, "wav.NewSource: got %d channels", dec.NumChans)
	}
	if dec.SampleRate != frame.SampleRate {
		return nil, errors.Wrapf(ErrUnsupportedSampleRate, "wav.NewSource: got %d Hz", dec.SampleRate)
	}
	if dec.BitDepth != frame.SampleSize {
		return nil, errors.Wrapf(ErrUnsupportedBitDepth, "wav.NewSource: got %d bits", dec.BitDepth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "wav.NewSource")
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: frame.NumChannels, SampleRate: frame.SampleRate},
		Data:           make([]int, frame.BlockSize*frame.NumChannels),
		SourceBitDepth: frame.SampleSize,
	}
	return &Source{dec: dec, buf: buf}, nil
}

// ReadBlock reads up to frame.BlockSize inter-channel samples, deinterleaved
// into left and right. It returns io.EOF once no samples remain.
func (s *Source) ReadBlock() (left, right []int32, err error) {
	if s.dec.EOF() {
		return nil, nil, io.EOF
	}
	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wav.Source.ReadBlock")
	}
	if n == 0 {
		return nil, nil, io.EOF
	}

	nsamples := n / frame.NumChannels
	left = make([]int32, nsamples)
	right = make([]int32, nsamples)
	for i := 0; i < nsamples; i++ {
		left[i] = int32(s.buf.Data[frame.NumChannels*i])
		right[i] = int32(s.buf.Data[frame.NumChannels*i+1])
	}
	return left, right, nil
}

// Sink writes fixed-configuration PCM samples to a WAVE file, one block at a
// time.
type Sink struct {
	enc *wavcodec.Encoder
	buf *audio.IntBuffer
}

// NewSink creates a 16-bit/44.1kHz/stereo WAVE encoder writing to w.
func NewSink(w io.WriteSeeker) *Sink {
	const wavFormatPCM = 1
	enc := wavcodec.NewEncoder(w, frame.SampleRate, frame.SampleSize, frame.NumChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: frame.NumChannels, SampleRate: frame.SampleRate},
		SourceBitDepth: frame.SampleSize,
	}
	return &Sink{enc: enc, buf: buf}
}

// WriteBlock interleaves left and right and writes them as one WAVE data
// chunk write. left and right must have equal length.
func (s *Sink) WriteBlock(left, right []int32) error {
	if len(left) != len(right) {
		return errors.Errorf("wav.Sink.WriteBlock: channel length mismatch: %d left, %d right", len(left), len(right))
	}
	data := make([]int, frame.NumChannels*len(left))
	for i := range left {
		data[frame.NumChannels*i] = int(left[i])
		data[frame.NumChannels*i+1] = int(right[i])
	}
	s.buf.Data = data
	if err := s.enc.Write(s.buf); err != nil {
		return errors.Wrap(err, "wav.Sink.WriteBlock")
	}
	return nil
}

// Close flushes the WAVE header (RIFF/data chunk sizes require the final
// byte count, written only once writing is complete).
func (s *Sink) Close() error {
	return errors.Wrap(s.enc.Close(), "wav.Sink.Close")
}
