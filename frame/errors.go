package frame

import "github.com/pkg/errors"

// Sentinel errors returned while parsing a frame. Call sites wrap these with
// positional context via errors.Wrap/errors.Wrapf as they propagate.
var (
	// ErrSyncLost is returned when the expected 14-bit frame sync code
	// 0x3FFE is not found at the start of a frame, and also when a frame
	// header's CRC-8 or a frame's CRC-16 footer does not match.
	ErrSyncLost = errors.New("frame: sync code lost")
	// ErrReservedCode is returned when a reserved channel assignment,
	// subframe type, or residual coding method bit pattern is encountered.
	ErrReservedCode = errors.New("frame: reserved bit pattern")
	// ErrPartitionMismatch is returned when the block size is not evenly
	// divisible by the number of Rice partitions.
	ErrPartitionMismatch = errors.New("frame: block size not divisible by partition count")

	errReservedChannels = ErrReservedCode
)
