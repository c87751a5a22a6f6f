package dns

import (
	"fmt"
	"net"
)

// Record is one of six wire shapes sharing {Domain, TTL}: A, AAAA, NS,
// CNAME, MX, and UNKNOWN. The Kind discriminator selects which payload
// field is meaningful; this mirrors the tagged-variant design used by
// the source this codec was modeled on rather than Go interface
// polymorphism, since every caller needs to exhaustively switch on the
// record shape (cache TTL extraction, packet navigation helpers).
type Record struct {
	Domain string
	TTL    uint32
	Kind   uint16 // TypeA, TypeNS, TypeCNAME, TypeMX, TypeAAAA, or an unknown code

	// A / AAAA
	Addr net.IP

	// NS / CNAME
	Target string

	// MX
	Preference uint16
	Exchange   string

	// UNKNOWN
	DataLen uint16
}

// Encode writes domain, type, class (always 1), TTL, RDLENGTH and
// RDATA. RDLENGTH for fixed-length types (A, AAAA) is written
// directly; for variable-length types (NS, CNAME, MX) a placeholder
// is reserved and back-patched once RDATA has been serialized.
// UNKNOWN records are not encoded — they are silently skipped, since
// there is no RDATA retained to re-emit.
func (r Record) Encode(c *Cursor) error {
	if r.Kind != TypeA && r.Kind != TypeNS && r.Kind != TypeCNAME && r.Kind != TypeMX && r.Kind != TypeAAAA {
		return nil
	}

	if err := c.WriteQName(r.Domain); err != nil {
		return fmt.Errorf("record domain: %w", err)
	}
	if err := c.WriteU16(r.Kind); err != nil {
		return err
	}
	if err := c.WriteU16(1); err != nil { // class IN
		return err
	}
	if err := c.WriteU32(r.TTL); err != nil {
		return err
	}

	switch r.Kind {
	case TypeA:
		ip4 := r.Addr.To4()
		if ip4 == nil {
			return fmt.Errorf("A record %s: not an IPv4 address: %w", r.Domain, ErrDNS)
		}
		if err := c.WriteU16(4); err != nil {
			return err
		}
		for _, b := range ip4 {
			if err := c.WriteU8(b); err != nil {
				return err
			}
		}
	case TypeAAAA:
		ip16 := r.Addr.To16()
		if ip16 == nil {
			return fmt.Errorf("AAAA record %s: not an IPv6 address: %w", r.Domain, ErrDNS)
		}
		if err := c.WriteU16(16); err != nil {
			return err
		}
		for _, b := range ip16 {
			if err := c.WriteU8(b); err != nil {
				return err
			}
		}
	case TypeNS, TypeCNAME:
		rdlenPos := c.Pos()
		if err := c.WriteU16(0); err != nil {
			return err
		}
		start := c.Pos()
		if err := c.WriteQName(r.Target); err != nil {
			return err
		}
		if err := c.SetU16(rdlenPos, uint16(c.Pos()-start)); err != nil {
			return err
		}
	case TypeMX:
		rdlenPos := c.Pos()
		if err := c.WriteU16(0); err != nil {
			return err
		}
		start := c.Pos()
		if err := c.WriteU16(r.Preference); err != nil {
			return err
		}
		if err := c.WriteQName(r.Exchange); err != nil {
			return err
		}
		if err := c.SetU16(rdlenPos, uint16(c.Pos()-start)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRecord reads a domain, type, discarded class, TTL, RDLENGTH,
// and then dispatches on type to parse RDATA.
func DecodeRecord(c *Cursor) (Record, error) {
	domain, err := c.ReadQName()
	if err != nil {
		return Record{}, fmt.Errorf("record domain: %w", err)
	}
	kind, err := c.ReadU16()
	if err != nil {
		return Record{}, fmt.Errorf("record type: %w", err)
	}
	if _, err := c.ReadU16(); err != nil { // class, discarded
		return Record{}, fmt.Errorf("record class: %w", err)
	}
	ttl, err := c.ReadU32()
	if err != nil {
		return Record{}, fmt.Errorf("record ttl: %w", err)
	}
	dataLen, err := c.ReadU16()
	if err != nil {
		return Record{}, fmt.Errorf("record rdlength: %w", err)
	}

	r := Record{Domain: domain, TTL: ttl, Kind: kind}

	switch kind {
	case TypeA:
		raw, err := readBytes(c, 4)
		if err != nil {
			return Record{}, fmt.Errorf("A rdata: %w", err)
		}
		r.Addr = net.IP(raw)
	case TypeAAAA:
		raw, err := readBytes(c, 16)
		if err != nil {
			return Record{}, fmt.Errorf("AAAA rdata: %w", err)
		}
		r.Addr = net.IP(raw)
	case TypeNS:
		target, err := c.ReadQName()
		if err != nil {
			return Record{}, fmt.Errorf("NS rdata: %w", err)
		}
		r.Target = target
	case TypeCNAME:
		target, err := c.ReadQName()
		if err != nil {
			return Record{}, fmt.Errorf("CNAME rdata: %w", err)
		}
		r.Target = target
	case TypeMX:
		pref, err := c.ReadU16()
		if err != nil {
			return Record{}, fmt.Errorf("MX preference: %w", err)
		}
		exchange, err := c.ReadQName()
		if err != nil {
			return Record{}, fmt.Errorf("MX exchange: %w", err)
		}
		r.Preference = pref
		r.Exchange = exchange
	default:
		r.DataLen = dataLen
		// Fixes Design Note §9.1: the reference source does not
		// advance past RDATA for unknown types, corrupting any
		// record that follows. Skip it here as the note recommends.
		c.Step(int(dataLen))
	}

	return r, nil
}

func readBytes(c *Cursor, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
