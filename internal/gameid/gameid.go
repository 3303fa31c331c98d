// Package gameid mints the opaque identifiers game sessions are addressed
// by: 128 bits, time-ordered, rendered as 26 characters of Crockford
// base32. Lexicographic order of the encoded form follows creation time,
// so listings sort newest-last for free.
package gameid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
)

// Crockford's base32: no i, l, o or u.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// ID addresses one game session. The zero value is not a valid ID.
type ID string

func (id ID) String() string { return string(id) }

// New mints an ID from the system clock and crypto/rand.
func New() ID {
	id, err := NewAt(time.Now(), rand.Reader)
	if err != nil {
		// crypto/rand failing means the platform is broken.
		panic("gameid: " + err.Error())
	}
	return id
}

// NewAt mints an ID for the given instant, drawing entropy from r. Tests
// pin both inputs to get reproducible IDs.
func NewAt(now time.Time, r io.Reader) (ID, error) {
	var raw [16]byte

	// UUIDv7 layout: 48-bit millisecond timestamp, then random bits with
	// the version and variant nibbles fixed.
	ms := now.UnixMilli()
	raw[0] = byte(ms >> 40)
	raw[1] = byte(ms >> 32)
	raw[2] = byte(ms >> 24)
	raw[3] = byte(ms >> 16)
	raw[4] = byte(ms >> 8)
	raw[5] = byte(ms)

	if _, err := io.ReadFull(r, raw[6:]); err != nil {
		return "", fmt.Errorf("reading entropy: %w", err)
	}
	raw[6] = (raw[6] & 0x0f) | 0x70
	raw[8] = (raw[8] & 0x3f) | 0x80

	return ID(encode(raw)), nil
}

// Parse validates the wire form of an ID. It accepts exactly what New
// produces; anything else is a client error.
func Parse(s string) (ID, error) {
	if len(s) != encodedLen {
		return "", fmt.Errorf("game id must be %d characters, got %d", encodedLen, len(s))
	}
	if s[0] > '7' {
		return "", fmt.Errorf("game id first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return "", fmt.Errorf("game id has invalid character %c at position %d", s[i], i)
		}
	}
	// The final character carries two zero padding bits, so its alphabet
	// index is always a multiple of 4.
	if strings.IndexByte(alphabet, s[encodedLen-1])&0x03 != 0 {
		return "", fmt.Errorf("game id last character %c is not canonical", s[encodedLen-1])
	}
	return ID(s), nil
}

// encode renders 128 bits as 26 base32 characters, five bits per
// character from the top, with two zero bits of padding at the tail.
func encode(raw [16]byte) string {
	var out [encodedLen]byte
	for i := range out {
		offset := i * 5
		byteIdx := offset / 8
		bitIdx := offset % 8

		var v byte
		if bitIdx <= 3 {
			v = (raw[byteIdx] >> (3 - bitIdx)) & 0x1f
		} else {
			v = (raw[byteIdx] << (bitIdx - 3)) & 0x1f
			if byteIdx+1 < len(raw) {
				v |= raw[byteIdx+1] >> (11 - bitIdx)
			}
		}
		out[i] = alphabet[v]
	}
	return string(out[:])
}
