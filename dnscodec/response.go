// SPDX-License-Identifier: GPL-3.0-or-later

package dnscodec

import (
	"encoding/binary"
	"errors"
	"net"
	"strconv"

	"github.com/miekg/dns"
)

// ErrNoData indicates that the response carries no pertinent answer.
//
// The error message uses the same suffix used by the Go standard library.
var ErrNoData = errors.New("no answer from DNS server")

// rrHeaderSize is the fixed part of a resource record after the owner
// name: type, class, TTL, and payload length.
const rrHeaderSize = 10

// Question is one parsed question-section entry.
type Question struct {
	// Name is the question name in dotted form.
	Name string

	// Type is the question type.
	Type uint16

	// Class is the question class.
	Class uint16
}

// Answer is one decoded address record.
type Answer struct {
	// Name is the owner name of the record.
	Name string

	// Addr is the IPv4 address in dotted decimal form.
	Addr string

	// TTL is the record time to live in seconds.
	TTL uint32
}

// Response is a decoded DNS response.
//
// Construct using [ParseResponse].
type Response struct {
	// ID is the transaction ID echoed by the server.
	ID uint16

	// Rcode is the response code from the header flags.
	Rcode int

	// Question is the first question echoed by the server.
	Question Question

	// Answers holds the address records in message order. It is empty
	// when the server answered without address records, which is not
	// an error by itself.
	Answers []Answer
}

// ParseResponse decodes a raw DNS response message.
//
// Records that are not IPv4 address records are skipped structurally:
// the cursor advances past their declared payload and nothing is emitted
// for them. A message whose section counts promise more data than the
// buffer holds fails with [ErrTruncatedMessage]. Authority and additional
// sections are not walked.
func ParseResponse(raw []byte) (*Response, error) {
	if len(raw) < headerSize {
		return nil, ErrTruncatedMessage
	}

	resp := &Response{
		ID:    binary.BigEndian.Uint16(raw[0:2]),
		Rcode: int(binary.BigEndian.Uint16(raw[2:4]) & 0x000F),
	}
	qdcount := binary.BigEndian.Uint16(raw[4:6])
	ancount := binary.BigEndian.Uint16(raw[6:8])
	off := headerSize

	// Question section: retain the first entry, skip the rest. The
	// echoed question is informational; transaction ID verification
	// belongs to the caller.
	for i := uint16(0); i < qdcount; i++ {
		name, next, err := decodeName(raw, off)
		if err != nil {
			return nil, err
		}
		if next+4 > len(raw) {
			return nil, ErrTruncatedMessage
		}
		if i == 0 {
			resp.Question = Question{
				Name:  name,
				Type:  binary.BigEndian.Uint16(raw[next : next+2]),
				Class: binary.BigEndian.Uint16(raw[next+2 : next+4]),
			}
		}
		off = next + 4
	}

	// Answer section.
	for i := uint16(0); i < ancount; i++ {
		name, next, err := decodeName(raw, off)
		if err != nil {
			return nil, err
		}
		if next+rrHeaderSize > len(raw) {
			return nil, ErrTruncatedMessage
		}
		rtype := binary.BigEndian.Uint16(raw[next : next+2])
		ttl := binary.BigEndian.Uint32(raw[next+4 : next+8])
		rdlength := int(binary.BigEndian.Uint16(raw[next+8 : next+10]))
		off = next + rrHeaderSize
		if off+rdlength > len(raw) {
			return nil, ErrTruncatedMessage
		}
		rdata := raw[off : off+rdlength]
		off += rdlength

		// Anything but an A record with a 4-octet payload is skipped.
		if rtype != TypeA || rdlength != net.IPv4len {
			continue
		}
		resp.Answers = append(resp.Answers, Answer{
			Name: name,
			Addr: net.IP(rdata).String(),
			TTL:  ttl,
		})
	}

	return resp, nil
}

// RcodeName returns the symbolic name of the response code, for
// example NOERROR or NXDOMAIN.
func (r *Response) RcodeName() string {
	if name, ok := dns.RcodeToString[r.Rcode]; ok {
		return name
	}
	return "RCODE" + strconv.Itoa(r.Rcode)
}

// RecordsA returns all the decoded addresses in the response.
//
// If the response does not contain any address record, this
// function returns [ErrNoData].
func (r *Response) RecordsA() ([]string, error) {
	out := make([]string, 0, len(r.Answers))
	for _, ans := range r.Answers {
		out = append(out, ans.Addr)
	}
	if len(out) < 1 {
		return nil, ErrNoData
	}
	return out, nil
}
