package wav

import "github.com/pkg/errors"

// Sentinel errors reported when an input WAVE file falls outside the fixed
// configuration flaccore encodes; alternate sample rates/widths/channel
// counts are out of scope for the encoder.
var (
	ErrUnsupportedChannelCount = errors.New("wav: unsupported channel count")
	ErrUnsupportedSampleRate   = errors.New("wav: unsupported sample rate")
	ErrUnsupportedBitDepth     = errors.New("wav: unsupported bit depth")
)
