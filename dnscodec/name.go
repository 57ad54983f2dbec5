// SPDX-License-Identifier: GPL-3.0-or-later

package dnscodec

import (
	"errors"
	"strings"
)

// Errors emitted while decoding.
var (
	// ErrTruncatedMessage means a read would run past the end of the message.
	ErrTruncatedMessage = errors.New("truncated DNS message")

	// ErrPointerOutOfRange means a compression pointer does not target
	// an offset strictly before the pointer itself.
	ErrPointerOutOfRange = errors.New("compression pointer out of range")

	// ErrCompressionLoop means decoding one name took more label steps
	// than the ceiling allows.
	ErrCompressionLoop = errors.New("compression pointer loop")

	// ErrNameTooLong means the decoded name exceeds 255 octets.
	ErrNameTooLong = errors.New("name too long")
)

// maxNameSteps bounds the label-decoding steps per name so that
// adversarial or corrupted pointer chains terminate.
const maxNameSteps = 128

// decodeName reads one possibly-compressed name starting at off.
//
// It returns the dotted name and the caller's next cursor position: the
// offset just past the terminating zero label or, when a compression
// pointer was followed, just past the first pointer. Later pointers never
// move the cursor again.
func decodeName(msg []byte, off int) (string, int, error) {
	var (
		labels  []string
		nameLen int
		next    = -1 // caller cursor, fixed by the first pointer
	)

	for steps := 0; ; steps++ {
		if steps >= maxNameSteps {
			return "", 0, ErrCompressionLoop
		}
		if off >= len(msg) {
			return "", 0, ErrTruncatedMessage
		}

		length := int(msg[off])
		switch {
		case length&0xC0 == 0xC0:
			// The low 6 bits of this octet and the whole next octet
			// form a 14-bit pointer into the message.
			if off+1 >= len(msg) {
				return "", 0, ErrTruncatedMessage
			}
			target := (length&0x3F)<<8 | int(msg[off+1])
			if target >= off {
				return "", 0, ErrPointerOutOfRange
			}
			if next < 0 {
				next = off + 2
			}
			off = target

		case length == 0:
			if next < 0 {
				next = off + 1
			}
			return strings.Join(labels, "."), next, nil

		default:
			if off+1+length > len(msg) {
				return "", 0, ErrTruncatedMessage
			}
			nameLen += length + 1
			if nameLen > maxNameSize {
				return "", 0, ErrNameTooLong
			}
			labels = append(labels, asciiLabel(msg[off+1:off+1+length]))
			off += 1 + length
		}
	}
}

// asciiLabel copies a label, dropping octets outside the ASCII range
// instead of failing on them.
func asciiLabel(raw []byte) string {
	out := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c < 0x80 {
			out = append(out, c)
		}
	}
	return string(out)
}
