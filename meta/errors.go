package meta

import "github.com/pkg/errors"

// errReservedNotZero is returned when a reserved bit or byte range in a
// metadata block body is non-zero.
var errReservedNotZero = errors.New("meta: reserved bits must be zero")

// ErrDeclaredBlockTooBig is returned when a block body declares an internal
// length (e.g. a Vorbis comment tag count) that could not possibly fit
// within the block's own declared Header.Length, guarding against
// allocating memory based on untrusted counts.
var ErrDeclaredBlockTooBig = errors.New("meta: declared block body exceeds block length")
