// SPDX-License-Identifier: GPL-3.0-or-later

// Package probe measures DNS resolution and TCP connect latency.
//
// [*Prober.Resolve] runs one resolution transaction: it sends a single
// hand-encoded query datagram to the configured resolver, waits for a
// single reply within the timeout, and reports the decoded response
// together with the measured round-trip time. [*Prober.ConnectRTT] is an
// independent companion that times a TCP handshake.
package probe

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/probekit/dnsping/dnscodec"
)

// Errors emitted by the prober.
var (
	// ErrQueryTimeout means no reply arrived within the configured window.
	ErrQueryTimeout = errors.New("query timed out")

	// ErrConnectTimeout means the TCP handshake did not complete within
	// the configured window.
	ErrConnectTimeout = errors.New("connect timed out")

	// ErrResponseID means the reply echoed a transaction ID different
	// from the one that was sent.
	ErrResponseID = errors.New("response ID does not match query ID")
)

const (
	// DefaultPort is the standard DNS port.
	DefaultPort = 53

	// DefaultTimeout bounds one full send-and-receive round trip.
	DefaultTimeout = 5 * time.Second

	// maxResponseSize is the receive buffer size for one UDP reply.
	maxResponseSize = 2048
)

// Options configures a [*Prober].
//
// Configuration is an explicit value handed to [New]: there is no
// process-wide state and two probers never share anything.
type Options struct {
	// Resolver is the MANDATORY resolver IP address to query.
	Resolver string

	// Port is the OPTIONAL resolver port, [DefaultPort] when zero.
	Port int

	// Timeout OPTIONALLY bounds the round trip, [DefaultTimeout] when zero.
	Timeout time.Duration

	// Logger logs each transaction at debug level.
	Logger zerolog.Logger
}

// NewOptions returns [*Options] with safe defaults and logging disabled.
func NewOptions(resolver string) *Options {
	return &Options{
		Resolver: resolver,
		Port:     DefaultPort,
		Timeout:  DefaultTimeout,
		Logger:   zerolog.Nop(),
	}
}

// Result is the outcome of one successful resolution transaction.
type Result struct {
	// Response is the decoded DNS response.
	Response *dnscodec.Response

	// RTT is the elapsed time between sending the query and
	// receiving the reply.
	RTT time.Duration
}

// Prober issues one-shot measurement transactions.
//
// Each call opens its own socket and closes it on every return path, so
// a single Prober is safe to reuse across sequential calls.
type Prober struct {
	opts *Options
}

// New constructs a [*Prober] with the given options.
func New(opts *Options) *Prober {
	return &Prober{opts: opts}
}

func (p *Prober) port() int {
	if p.opts.Port > 0 {
		return p.opts.Port
	}
	return DefaultPort
}

func (p *Prober) timeout() time.Duration {
	if p.opts.Timeout > 0 {
		return p.opts.Timeout
	}
	return DefaultTimeout
}

// Resolve sends one address-record query for hostname to the configured
// resolver over UDP and blocks until the reply arrives or the timeout
// expires.
//
// There is no retry: a lost datagram surfaces as [ErrQueryTimeout] and
// the caller decides whether to call again. A reply whose transaction ID
// does not echo the query fails with [ErrResponseID]; decode failures
// propagate unchanged from the dnscodec package.
func (p *Prober) Resolve(hostname string) (*Result, error) {
	query := dnscodec.NewQuery(hostname)
	raw, err := query.Pack()
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(p.opts.Resolver, strconv.Itoa(p.port()))
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(p.timeout())); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	p.opts.Logger.Debug().
		Str("hostname", hostname).
		Str("resolver", addr).
		Uint16("id", query.ID).
		Msg("sending query")

	start := time.Now()
	if _, err := conn.Write(raw); err != nil {
		return nil, transportError("send", err)
	}
	buf := make([]byte, maxResponseSize)
	count, err := conn.Read(buf)
	if err != nil {
		return nil, transportError("receive", err)
	}
	rtt := time.Since(start)

	resp, err := dnscodec.ParseResponse(buf[:count])
	if err != nil {
		return nil, err
	}
	if resp.ID != query.ID {
		return nil, ErrResponseID
	}

	p.opts.Logger.Debug().
		Dur("rtt", rtt).
		Str("rcode", resp.RcodeName()).
		Int("answers", len(resp.Answers)).
		Msg("received response")

	return &Result{Response: resp, RTT: rtt}, nil
}

// ConnectRTT measures the time until a TCP handshake with addr:port
// completes, bounded by the same timeout used for resolution.
//
// It shares nothing with the DNS codec and exists as a secondary latency
// measurement against an address that resolution produced.
func (p *Prober) ConnectRTT(addr string, port int) (time.Duration, error) {
	target := net.JoinHostPort(addr, strconv.Itoa(port))
	start := time.Now()
	conn, err := net.DialTimeout("tcp", target, p.timeout())
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, ErrConnectTimeout
		}
		return 0, fmt.Errorf("connect %s: %w", target, err)
	}
	rtt := time.Since(start)
	conn.Close()

	p.opts.Logger.Debug().
		Str("target", target).
		Dur("rtt", rtt).
		Msg("handshake completed")

	return rtt, nil
}

// transportError maps deadline expiry to [ErrQueryTimeout] and wraps
// any other transport failure.
func transportError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrQueryTimeout
	}
	return fmt.Errorf("%s: %w", op, err)
}
