package meta

import "io"

// verifyPadding verifies the body of a Padding metadata block. It must
// contain only zero bytes.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_padding
func (block *Block) verifyPadding() error {
	buf := make([]byte, 4096)
	for {
		n, err := block.lr.Read(buf)
		if n > 0 && !isAllZero(buf[:n]) {
			return errReservedNotZero
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
