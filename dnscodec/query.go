// SPDX-License-Identifier: GPL-3.0-or-later

package dnscodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// ErrInvalidHostname means the query name cannot be encoded as a DNS name.
var ErrInvalidHostname = errors.New("invalid hostname")

const (
	// TypeA is the IPv4 address record type.
	TypeA uint16 = 1

	// ClassINET is the Internet class.
	ClassINET uint16 = 1
)

const (
	// headerSize is the fixed DNS header size in octets.
	headerSize = 12

	// flagsQuery marks a standard query with recursion desired.
	flagsQuery uint16 = 0x0100

	// maxLabelSize is the largest wire-encodable label.
	maxLabelSize = 63

	// maxNameSize is the largest wire-encodable name.
	maxNameSize = 255
)

// Query is a DNS query.
//
// Construct using [NewQuery] or set the MANDATORY fields.
type Query struct {
	// ID is the OPTIONAL query transaction ID.
	ID uint16

	// Name is the MANDATORY domain name to query.
	Name string

	// Type is the query type.
	Type uint16
}

// NewQuery constructs a new [*Query] with safe defaults.
//
// By default, the query uses a randomized ID and asks for IPv4
// address records.
func NewQuery(name string) *Query {
	return &Query{
		ID:   dns.Id(),
		Name: name,
		Type: TypeA,
	}
}

// Clone returns a deep copy of the query.
func (q *Query) Clone() *Query {
	return &Query{
		ID:   q.ID,
		Name: q.Name,
		Type: q.Type,
	}
}

// Pack serializes the query into wire format: a 12-octet header with the
// query flags set and a single question, followed by that question (the
// encoded name, the query type, and the Internet class).
//
// The name is IDNA-normalized before encoding. A name that does not
// normalize, an empty name, an empty label, or a label longer than 63
// octets fails with [ErrInvalidHostname] rather than being truncated.
func (q *Query) Pack() ([]byte, error) {
	punyName, err := idna.Lookup.ToASCII(strings.TrimSuffix(q.Name, "."))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHostname, err)
	}

	out := make([]byte, 0, headerSize+len(punyName)+6)
	out = binary.BigEndian.AppendUint16(out, q.ID)
	out = binary.BigEndian.AppendUint16(out, flagsQuery)
	out = binary.BigEndian.AppendUint16(out, 1) // QDCOUNT
	out = binary.BigEndian.AppendUint16(out, 0) // ANCOUNT
	out = binary.BigEndian.AppendUint16(out, 0) // NSCOUNT
	out = binary.BigEndian.AppendUint16(out, 0) // ARCOUNT

	out, err = appendName(out, punyName)
	if err != nil {
		return nil, err
	}
	out = binary.BigEndian.AppendUint16(out, q.Type)
	out = binary.BigEndian.AppendUint16(out, ClassINET)
	return out, nil
}

// appendName appends the length-prefixed label encoding of name,
// terminated by the zero-length root label.
func appendName(out []byte, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidHostname)
	}
	if len(name)+2 > maxNameSize {
		return nil, fmt.Errorf("%w: name exceeds %d octets", ErrInvalidHostname, maxNameSize)
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return nil, fmt.Errorf("%w: empty label", ErrInvalidHostname)
		}
		if len(label) > maxLabelSize {
			return nil, fmt.Errorf("%w: label exceeds %d octets", ErrInvalidHostname, maxLabelSize)
		}
		for i := 0; i < len(label); i++ {
			if label[i] >= 0x80 {
				return nil, fmt.Errorf("%w: non-ASCII label", ErrInvalidHostname)
			}
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	return append(out, 0), nil
}
