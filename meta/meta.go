// Package meta contains functions for parsing FLAC metadata blocks.
package meta

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Type identifies the body type carried by a metadata block.
type Type uint8

// Metadata block types.
const (
	TypeStreamInfo    Type = 0
	TypePadding       Type = 1
	TypeApplication   Type = 2
	TypeSeekTable     Type = 3
	TypeVorbisComment Type = 4
	TypeCueSheet      Type = 5
	TypePicture       Type = 6
)

func (t Type) String() string {
	m := map[Type]string{
		TypeStreamInfo:    "stream info",
		TypePadding:       "padding",
		TypeApplication:   "application",
		TypeSeekTable:     "seek table",
		TypeVorbisComment: "vorbis comment",
		TypeCueSheet:      "cue sheet",
		TypePicture:       "picture",
	}
	if s, ok := m[t]; ok {
		return s
	}
	return "reserved"
}

// ErrReservedType is returned when a metadata block header declares a
// reserved or invalid block type.
var ErrReservedType = errors.New("meta: reserved block type")

// Header precedes every metadata block body on the wire and describes its
// type, declared body length in bytes, and whether it is the last metadata
// block before the frame data begins.
//
// Embedded directly into Block rather than held by pointer.
type Header struct {
	// Type identifies the metadata block body that follows.
	Type Type
	// Length is the size of the block body in bytes (does not include the
	// header itself).
	Length int64
	// IsLast reports whether this is the final metadata block before the
	// first audio frame.
	IsLast bool
}

// Block is a metadata block: a header plus a lazily-parsed body.
//
// The header is embedded and the raw body reader is retained for Parse/Skip.
type Block struct {
	Header
	// Body holds the parsed block body: *StreamInfo, *Application,
	// *SeekTable, *VorbisComment, or nil for Padding, CueSheet, and Picture
	// (the latter two are discarded unparsed; see Parse). It is populated
	// by Parse and left nil after New or Skip.
	Body interface{}
	// lr is the reader limited to Header.Length bytes of body data.
	lr io.Reader
}

const (
	blockHeaderIsLastMask = 0x80000000 // 1 bit
	blockHeaderTypeMask   = 0x7F000000 // 7 bits
	blockHeaderLengthMask = 0x00FFFFFF // 24 bits
)

// New reads a metadata block header from r and returns a Block whose body
// has not yet been parsed. Call Parse to decode the body or Skip to discard
// it; exactly one of the two must be called before reading the next block.
func New(r io.Reader) (*Block, error) {
	var bits uint32
	if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
		return nil, errors.Wrap(err, "meta.New")
	}

	block := &Block{}
	block.IsLast = bits&blockHeaderIsLastMask != 0
	block.Type = Type(bits & blockHeaderTypeMask >> 24)
	if block.Type > TypePicture {
		return nil, errors.Wrapf(ErrReservedType, "meta.New: block type %d", block.Type)
	}
	block.Length = int64(bits & blockHeaderLengthMask)
	block.lr = io.LimitReader(r, block.Length)
	return block, nil
}

// EncodeHeader writes a metadata block header to w.
//
// Run in reverse of New.
func EncodeHeader(w io.Writer, h Header) error {
	var bits uint32
	if h.IsLast {
		bits |= blockHeaderIsLastMask
	}
	bits |= uint32(h.Type) << 24 & blockHeaderTypeMask
	bits |= uint32(h.Length) & blockHeaderLengthMask
	return errors.Wrap(binary.Write(w, binary.BigEndian, bits), "meta.EncodeHeader")
}

// Parse reads and decodes a metadata block, header and body, from r.
func Parse(r io.Reader) (*Block, error) {
	block, err := New(r)
	if err != nil {
		return nil, err
	}
	if err := block.Parse(); err != nil {
		return nil, err
	}
	return block, nil
}

// Parse decodes block's body from its limited reader, dispatching on the
// block's declared type. CueSheet and Picture bodies are not decoded into a
// structured type (Non-goal); they are discarded the same way Skip discards
// any block's body.
func (block *Block) Parse() error {
	var err error
	switch block.Type {
	case TypeStreamInfo:
		block.Body, err = DecodeStreamInfo(block.lr)
	case TypePadding:
		err = block.verifyPadding()
	case TypeApplication:
		block.Body, err = block.parseApplication()
	case TypeSeekTable:
		block.Body, err = block.parseSeekTable()
	case TypeVorbisComment:
		err = block.parseVorbisComment()
	case TypeCueSheet, TypePicture:
		_, err = io.Copy(io.Discard, block.lr)
	default:
		return errors.Wrapf(ErrReservedType, "meta.Block.Parse: block type %d", block.Type)
	}
	if err != nil {
		return errors.Wrap(err, "meta.Block.Parse")
	}
	return nil
}

// Skip discards block's body without decoding it.
func (block *Block) Skip() error {
	_, err := io.Copy(io.Discard, block.lr)
	return errors.Wrap(err, "meta.Block.Skip")
}

// readByte reads a single byte from r.
func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// isAllZero returns true if every byte in buf is 0.
func isAllZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// getStringFromSZ converts buf to a string, truncating at the first NUL
// byte if present.
func getStringFromSZ(buf []byte) string {
	if pos := bytes.IndexByte(buf, 0); pos != -1 {
		buf = buf[:pos]
	}
	return string(buf)
}

// RegisteredApplications maps a registered application ID to a description.
//
// ref: https://www.xiph.org/flac/id.html
var RegisteredApplications = map[string]string{
	"ATCH": "FlacFile",
	"BSOL": "beSolo",
	"BUGS": "Bugs Player",
	"Cues": "GoldWave cue points",
	"Fica": "CUE Splitter",
	"Ftol": "flac-tools",
	"MOTB": "MOTB MetaCzar",
	"MPSE": "MP3 Stream Editor",
	"MuML": "MusicML: Music Metadata Language",
	"RIFF": "Sound Devices RIFF chunk storage",
	"SFFL": "Sound Font FLAC",
	"SONY": "Sony Creative Software",
	"SQEZ": "flacsqueeze",
	"TtWv": "TwistedWave",
	"UITS": "UITS Embedding tools",
	"aiff": "FLAC AIFF chunk storage",
	"imag": "flac-image application for storing arbitrary files in APPLICATION metadata blocks",
	"peem": "Parseable Embedded Extensible Metadata",
	"qfst": "QFLAC Studio",
	"riff": "FLAC RIFF chunk storage",
	"tune": "TagTuner",
	"xbat": "XBAT",
	"xmcd": "xmcd",
}
