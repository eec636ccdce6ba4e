package frame

// Global stream configuration. The encoder is narrowed to exactly this
// configuration (block size, sample rate, sample size, channel count); the
// decoder tolerates any conforming value in these fields, per the "Global
// constants" design note: keep them in one place and derive the frame-header
// code tables from them rather than scattering magic numbers.
const (
	// BlockSize is the number of inter-channel samples per full block.
	BlockSize = 4096
	// SampleRate in Hz.
	SampleRate = 44100
	// SampleSize in bits-per-sample.
	SampleSize = 16
	// NumChannels encoded per frame.
	NumChannels = 2
)

// SyncCode is the 14-bit frame sync pattern, 11111111111110.
const SyncCode = 0x3FFE
