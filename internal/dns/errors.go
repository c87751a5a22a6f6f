// Package dns implements the DNS wire-format codec: a fixed 512-byte
// cursor with big-endian helpers, header/question/record encoders and
// decoders, and the Packet aggregate used by the resolver and query
// handler.
//
// See RFC 1035 (base protocol), RFC 1034 (concepts), RFC 3596 (AAAA).
package dns

import "errors"

// ErrDNS is the sentinel every codec error wraps, so callers can test
// for "any DNS wire error" with errors.Is(err, dns.ErrDNS) as well as
// for the specific failure below.
var ErrDNS = errors.New("dns wire error")

// ErrBufferOverflow is returned when a read or write would cross the
// 512-byte frame boundary.
var ErrBufferOverflow = errors.New("buffer overflow")

// ErrMalformedName is returned when a qname decode exceeds the
// compression-pointer traversal cap.
var ErrMalformedName = errors.New("malformed name")

// ErrUpstreamFailure wraps a send/receive/decode error talking to an
// upstream server during recursive resolution.
var ErrUpstreamFailure = errors.New("upstream failure")
