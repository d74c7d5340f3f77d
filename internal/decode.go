package internal

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrInvalidUtf8 is the cause of every decode failure, re-exported by the
// root package.
var ErrInvalidUtf8 = errors.New("invalid utf-8")

// DecodeUtf8 turns a chunk of bytes into a string, refusing any byte sequence
// that is not valid UTF-8.
//
// Chunks are decoded independently from each other: a multi-byte codepoint
// split across two chunks makes both of them invalid.
func DecodeUtf8(buf []byte) (string, error) {
	if utf8.Valid(buf) {
		return string(buf), nil
	}

	offset := FirstInvalidByte(buf)

	return "", errors.Wrapf(ErrInvalidUtf8, "invalid utf-8 sequence from index %d (%d bytes)", offset, len(buf))
}

// FirstInvalidByte returns the offset of the first byte that does not start a
// valid UTF-8 sequence, or -1 if the whole buffer is valid.
func FirstInvalidByte(buf []byte) int {
	for idx := 0; idx < len(buf); {
		r, size := utf8.DecodeRune(buf[idx:])

		if r == utf8.RuneError && size <= 1 {
			return idx
		}

		idx += size
	}

	return -1
}
