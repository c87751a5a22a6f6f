// Package cache implements the bounded, insertion-ordered response
// cache and its mutex-guarded, background-refreshing wrapper.
package cache

import "github.com/jroosing/recurdns/internal/dns"

// Entry is a cached response frame plus its expiry bookkeeping.
// Response is the full wire-format frame, fixed at dns.FrameSize
// bytes, exactly as it would be sent to a client.
type Entry struct {
	Response [dns.FrameSize]byte
	Expiry   int64  // unix seconds
	TTL      uint32 // seconds, as recorded at insert/update time
}

// newEntry builds an Entry from a packet, encoding it into a fresh
// frame and setting Expiry to now+ttl.
func newEntry(p dns.Packet, ttl uint32, now int64) (Entry, error) {
	c := dns.NewCursor()
	if err := p.Encode(c); err != nil {
		return Entry{}, err
	}
	var e Entry
	copy(e.Response[:], c.Bytes())
	e.TTL = ttl
	e.Expiry = now + int64(ttl)
	return e, nil
}

// Expired reports whether the entry's expiry has passed as of now.
func (e Entry) Expired(now int64) bool {
	return now >= e.Expiry
}

// Packet decodes the entry's stored frame back into a Packet.
func (e Entry) Packet() (dns.Packet, error) {
	return dns.DecodePacket(e.Response[:])
}
