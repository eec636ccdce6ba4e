package frame

// Channels specifies the number and order of channels stored in a frame, and
// whether inter-channel decorrelation (left/side, side/right, mid/side) is in
// effect.
type Channels uint8

// Channel assignments. The first eight follow the SMPTE/ITU-R channel order
// for independently coded channels; the last three apply inter-channel
// decorrelation to a stereo pair.
const (
	ChannelsMono           Channels = iota // 1 channel: mono
	ChannelsLR                             // 2 channels: left, right
	ChannelsLRC                            // 3 channels: left, right, center
	ChannelsLRLsRs                         // 4 channels: left, right, left surround, right surround
	ChannelsLRCLsRs                        // 5 channels: left, right, center, left surround, right surround
	ChannelsLRCLfeLsRs                     // 6 channels: left, right, center, LFE, left surround, right surround
	ChannelsLRCLfeCsSlSr                   // 7 channels: left, right, center, LFE, center surround, side left, side right
	ChannelsLRCLfeLsRsSlSr                 // 8 channels: left, right, center, LFE, left surround, right surround, side left, side right
	ChannelsLeftSide                       // left/side stereo:  left, side (difference)
	ChannelsSideRight                      // side/right stereo: side (difference), right
	ChannelsMidSide                        // mid/side stereo:   mid (average), side (difference)
)

var channelCounts = [...]int{2: 3, 3: 4, 4: 5, 5: 6, 6: 7, 7: 8, 8: 2, 9: 2, 10: 2}

// Count returns the number of subframes carried by the given channel
// assignment.
func (c Channels) Count() int {
	switch c {
	case ChannelsMono:
		return 1
	case ChannelsLR, ChannelsLeftSide, ChannelsSideRight, ChannelsMidSide:
		return 2
	default:
		if int(c) < len(channelCounts) {
			return channelCounts[c]
		}
		return 0
	}
}

// Decorrelated reports whether the assignment stores a mid/side or
// left-side/side-right pair rather than independent channels.
func (c Channels) Decorrelated() bool {
	return c == ChannelsLeftSide || c == ChannelsSideRight || c == ChannelsMidSide
}

// Undecorrelate reconstructs the independent left/right channel pair from the
// two decoded subframe sample slices s0 and s1, given the channel assignment.
//
// Grounded on the reference decoder's decode_subframes reconstruction
// arithmetic: the encoder never emits a decorrelated assignment (Non-goal),
// but the decoder must undo it when present in conforming input.
func Undecorrelate(c Channels, s0, s1 []int32) (left, right []int32, err error) {
	switch c {
	case ChannelsLeftSide:
		// channel 0 is left, channel 1 is side = left - right.
		left = s0
		right = make([]int32, len(s0))
		for i := range s0 {
			right[i] = s0[i] - s1[i]
		}
	case ChannelsSideRight:
		// channel 0 is side = left - right, channel 1 is right.
		right = s1
		left = make([]int32, len(s1))
		for i := range s1 {
			left[i] = s0[i] + s1[i]
		}
	case ChannelsMidSide:
		// channel 0 is mid = (left+right)>>1 (floor), channel 1 is side = left-right.
		left = make([]int32, len(s0))
		right = make([]int32, len(s0))
		for i := range s0 {
			side := s1[i]
			mid := s0[i]
			r := mid - (side >> 1)
			l := r + side
			left[i] = l
			right[i] = r
		}
	default:
		return nil, errReservedChannels
	}
	return left, right, nil
}
