// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnscodec builds and parses raw DNS wire-format messages.
//
// [NewQuery] and [*Query.Pack] construct and serialize an address-record
// query message. [ParseResponse] and [*Response] decode a raw response,
// including compressed names, and expose the answered addresses.
//
// Unlike a full resolver library, this package deliberately implements
// the wire format by hand: the header, the length-prefixed labels, the
// compression pointers, and the resource records are encoded and decoded
// byte by byte. The package performs no I/O; the probe package owns the
// transport side.
package dnscodec
