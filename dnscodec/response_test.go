// SPDX-License-Identifier: GPL-3.0-or-later

package dnscodec

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/bassosimone/runtimex"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// responseHeader appends a 12-octet header with the response bit set.
func responseHeader(id uint16, flags uint16, qd, an, ns, ar uint16) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, id)
	out = binary.BigEndian.AppendUint16(out, flags)
	out = binary.BigEndian.AppendUint16(out, qd)
	out = binary.BigEndian.AppendUint16(out, an)
	out = binary.BigEndian.AppendUint16(out, ns)
	out = binary.BigEndian.AppendUint16(out, ar)
	return out
}

// exampleQuestion is the encoded question for "example.com" type A class IN.
var exampleQuestion = []byte{
	0x07, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
	0x03, 'c', 'o', 'm',
	0x00,
	0x00, 0x01,
	0x00, 0x01,
}

// appendRR appends a resource record whose owner name points back at the
// question name (offset 12).
func appendRR(out []byte, rtype uint16, ttl uint32, rdata []byte) []byte {
	out = append(out, 0xC0, 0x0C)
	out = binary.BigEndian.AppendUint16(out, rtype)
	out = binary.BigEndian.AppendUint16(out, ClassINET)
	out = binary.BigEndian.AppendUint32(out, ttl)
	out = binary.BigEndian.AppendUint16(out, uint16(len(rdata)))
	return append(out, rdata...)
}

func TestParseResponseEndToEnd(t *testing.T) {
	raw := responseHeader(0x1234, 0x8180, 1, 1, 0, 0)
	raw = append(raw, exampleQuestion...)
	raw = appendRR(raw, TypeA, 300, []byte{93, 184, 216, 34})

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), resp.ID)
	require.Equal(t, 0, resp.Rcode)
	require.Equal(t, "NOERROR", resp.RcodeName())
	require.Equal(t, Question{Name: "example.com", Type: TypeA, Class: ClassINET}, resp.Question)
	require.Equal(t, []Answer{{Name: "example.com", Addr: "93.184.216.34", TTL: 300}}, resp.Answers)

	addrs, err := resp.RecordsA()
	require.NoError(t, err)
	require.Equal(t, []string{"93.184.216.34"}, addrs)
}

func TestParseResponseCompressedOwners(t *testing.T) {
	// Two answers whose owner names are both two-octet pointers: the
	// record walk only stays aligned if the cursor advances exactly two
	// octets per pointer.
	raw := responseHeader(0x0001, 0x8180, 1, 2, 0, 0)
	raw = append(raw, exampleQuestion...)
	raw = appendRR(raw, TypeA, 60, []byte{192, 0, 2, 1})
	raw = appendRR(raw, TypeA, 60, []byte{192, 0, 2, 2})

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Len(t, resp.Answers, 2)
	require.Equal(t, resp.Question.Name, resp.Answers[0].Name)
	require.Equal(t, resp.Question.Name, resp.Answers[1].Name)
	require.Equal(t, "192.0.2.1", resp.Answers[0].Addr)
	require.Equal(t, "192.0.2.2", resp.Answers[1].Addr)
}

func TestParseResponseSkipsOtherRecords(t *testing.T) {
	// An AAAA record and an A record with a bogus payload length are both
	// skipped without aborting; the well-formed A record still comes out.
	raw := responseHeader(0x0001, 0x8180, 1, 3, 0, 0)
	raw = append(raw, exampleQuestion...)
	raw = appendRR(raw, 28, 60, make([]byte, 16))
	raw = appendRR(raw, TypeA, 60, []byte{192, 0, 2, 1, 0, 0})
	raw = appendRR(raw, TypeA, 120, []byte{192, 0, 2, 7})

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, []Answer{{Name: "example.com", Addr: "192.0.2.7", TTL: 120}}, resp.Answers)
}

func TestParseResponseNoAnswers(t *testing.T) {
	raw := responseHeader(0x0001, 0x8180, 1, 0, 0, 0)
	raw = append(raw, exampleQuestion...)

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Empty(t, resp.Answers)

	addrs, err := resp.RecordsA()
	require.ErrorIs(t, err, ErrNoData)
	require.Nil(t, addrs)
}

func TestParseResponseRcode(t *testing.T) {
	raw := responseHeader(0x0001, 0x8183, 1, 0, 0, 0)
	raw = append(raw, exampleQuestion...)

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Rcode)
	require.Equal(t, "NXDOMAIN", resp.RcodeName())
}

func TestParseResponseTruncated(t *testing.T) {
	tests := []struct {
		name string
		raw  func() []byte
	}{
		{
			name: "ShortHeader",
			raw: func() []byte {
				return make([]byte, 11)
			},
		},

		{
			name: "MissingQuestion",
			raw: func() []byte {
				return responseHeader(0x0001, 0x8180, 1, 0, 0, 0)
			},
		},

		{
			name: "QuestionFixedPartCutOff",
			raw: func() []byte {
				raw := responseHeader(0x0001, 0x8180, 1, 0, 0, 0)
				return append(raw, exampleQuestion[:len(exampleQuestion)-2]...)
			},
		},

		{
			name: "MissingAnswer",
			raw: func() []byte {
				raw := responseHeader(0x0001, 0x8180, 1, 1, 0, 0)
				return append(raw, exampleQuestion...)
			},
		},

		{
			name: "AnswerHeaderCutOff",
			raw: func() []byte {
				raw := responseHeader(0x0001, 0x8180, 1, 1, 0, 0)
				raw = append(raw, exampleQuestion...)
				return append(raw, 0xC0, 0x0C, 0x00, 0x01)
			},
		},

		{
			name: "PayloadCutOff",
			raw: func() []byte {
				raw := responseHeader(0x0001, 0x8180, 1, 1, 0, 0)
				raw = append(raw, exampleQuestion...)
				full := appendRR(nil, TypeA, 60, []byte{192, 0, 2, 1})
				return append(raw, full[:len(full)-2]...)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse(tt.raw())
			require.ErrorIs(t, err, ErrTruncatedMessage)
			require.Nil(t, resp)
		})
	}
}

func TestParseResponseAgainstReference(t *testing.T) {
	// Cross-check the hand decoder against a message packed, with name
	// compression enabled, by an independent implementation.
	query := new(dns.Msg)
	query.SetQuestion("www.example.com.", dns.TypeA)
	query.Id = 0x3344

	reply := new(dns.Msg)
	reply.SetReply(query)
	reply.Compress = true
	reply.Answer = []dns.RR{
		&dns.CNAME{
			Hdr: dns.RR_Header{
				Name:   "www.example.com.",
				Rrtype: dns.TypeCNAME,
				Class:  dns.ClassINET,
				Ttl:    3600,
			},
			Target: "cdn.example.com.",
		},
		&dns.A{
			Hdr: dns.RR_Header{
				Name:   "cdn.example.com.",
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    42,
			},
			A: net.IPv4(192, 0, 2, 33),
		},
		&dns.A{
			Hdr: dns.RR_Header{
				Name:   "cdn.example.com.",
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    42,
			},
			A: net.IPv4(192, 0, 2, 34),
		},
	}
	raw := runtimex.PanicOnError1(reply.Pack())

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Equal(t, uint16(0x3344), resp.ID)
	require.Equal(t, "www.example.com", resp.Question.Name)

	// The CNAME is skipped structurally; only the A records come out.
	require.Equal(t, []Answer{
		{Name: "cdn.example.com", Addr: "192.0.2.33", TTL: 42},
		{Name: "cdn.example.com", Addr: "192.0.2.34", TTL: 42},
	}, resp.Answers)
}
