package meta

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// VorbisComment contains a list of name-value pairs.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_vorbis_comment
type VorbisComment struct {
	// Vendor name.
	Vendor string
	// A list of tags, each represented by a name-value pair.
	Tags [][2]string
}

// parseVorbisComment reads and parses the body of a VorbisComment metadata
// block.
//
// Uses the Tags [][2]string representation and guards against a maliciously
// large declared tag count.
func (block *Block) parseVorbisComment() error {
	var vendorLen uint32
	if err := binary.Read(block.lr, binary.LittleEndian, &vendorLen); err != nil {
		return err
	}
	buf := make([]byte, vendorLen)
	if _, err := io.ReadFull(block.lr, buf); err != nil {
		return err
	}
	vc := &VorbisComment{Vendor: string(buf)}

	var tagCount uint32
	if err := binary.Read(block.lr, binary.LittleEndian, &tagCount); err != nil {
		return err
	}
	// Each tag needs at least 4 bytes (its length prefix); reject a count
	// that could not possibly fit within the block's declared length.
	if int64(tagCount)*4 > block.Length {
		return errors.Wrapf(ErrDeclaredBlockTooBig, "meta.Block.parseVorbisComment: %d tags declared", tagCount)
	}

	vc.Tags = make([][2]string, tagCount)
	for i := range vc.Tags {
		var vectorLen uint32
		if err := binary.Read(block.lr, binary.LittleEndian, &vectorLen); err != nil {
			return err
		}
		buf = make([]byte, vectorLen)
		if _, err := io.ReadFull(block.lr, buf); err != nil {
			return err
		}
		vector := string(buf)
		pos := strings.Index(vector, "=")
		if pos == -1 {
			return errors.Errorf("meta.Block.parseVorbisComment: unable to locate '=' in vector %q", vector)
		}
		vc.Tags[i] = [2]string{vector[:pos], vector[pos+1:]}
	}

	block.Body = vc
	return nil
}
