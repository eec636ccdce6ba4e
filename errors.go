package flac

import "github.com/pkg/errors"

// Sentinel errors returned by the decoder and encoder orchestrators,
// declared at package scope and wrapped with call-site context via
// errors.Wrap as they propagate.
var (
	// ErrBadMagic is returned when a stream does not begin with the "fLaC"
	// marker.
	ErrBadMagic = errors.New("flac: invalid magic padding")
	// ErrMissingStreamInfo is returned when the first metadata block of a
	// stream is not STREAMINFO.
	ErrMissingStreamInfo = errors.New("flac: missing StreamInfo metadata block")
	// ErrUnsupportedSampleSize is returned by the decoder (New, Parse, Open)
	// when STREAMINFO declares a sample size that is not a whole number of
	// bytes.
	ErrUnsupportedSampleSize = errors.New("flac: unsupported sample size")
	// ErrUnsupportedInput names input audio outside the fixed
	// 16-bit/44.1kHz/stereo configuration. No function in this package
	// returns it; wav.NewSource reports such WAVE input with
	// wav.ErrUnsupportedChannelCount, wav.ErrUnsupportedSampleRate and
	// wav.ErrUnsupportedBitDepth.
	ErrUnsupportedInput = errors.New("flac: unsupported input format")
	// ErrEncodeOverflow is returned when a stream grows too large to encode
	// under the frame/sample numbering or length fields the format allows.
	ErrEncodeOverflow = errors.New("flac: encode overflow")
)
