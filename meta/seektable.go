package meta

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// SeekTable contains one or more precalculated audio frame seek points.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_seektable
type SeekTable struct {
	// One or more seek points.
	Points []SeekPoint
}

// A SeekPoint specifies the byte offset and initial sample number of a given
// target frame.
//
// ref: https://www.xiph.org/flac/format.html#seekpoint
type SeekPoint struct {
	// Sample number of the first sample in the target frame, or
	// 0xFFFFFFFFFFFFFFFF for a placeholder point.
	SampleNum uint64
	// Offset in bytes from the first byte of the first frame header to the
	// first byte of the target frame's header.
	Offset uint64
	// Number of samples in the target frame.
	NSamples uint16
}

// PlaceholderPoint is the sample number used for placeholder points; the
// remaining fields of such a SeekPoint are undefined.
const PlaceholderPoint = 0xFFFFFFFFFFFFFFFF

// parseSeekTable reads and parses the body of a SeekTable metadata block.
// The number of points is implied by the block length: Header.Length / 18.
//
func (block *Block) parseSeekTable() (*SeekTable, error) {
	st := &SeekTable{}
	var hasPrev bool
	var prevSampleNum uint64
	for {
		var point SeekPoint
		if err := binary.Read(block.lr, binary.BigEndian, &point); err != nil {
			if err == io.EOF {
				return st, nil
			}
			return nil, err
		}
		if hasPrev && prevSampleNum >= point.SampleNum && point.SampleNum != PlaceholderPoint {
			return nil, errors.Errorf("meta.Block.parseSeekTable: seek point sample number %d not in ascending order", point.SampleNum)
		}
		prevSampleNum = point.SampleNum
		hasPrev = true
		st.Points = append(st.Points, point)
	}
}
