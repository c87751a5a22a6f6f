package dns

import (
	"fmt"
	"net"
	"strings"
)

// Packet is the aggregate of a header plus the four section vectors.
// After a successful decode, each section's length equals the
// corresponding header count.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// Encode writes the header then every section in order. The header's
// section counts must already reflect len(Questions)/len(Answers)/etc
// before calling Encode; callers that build a Packet programmatically
// should set counts from the slices first (SyncCounts does this).
func (p Packet) Encode(c *Cursor) error {
	if err := p.Header.Encode(c); err != nil {
		return fmt.Errorf("packet header: %w", err)
	}
	for _, q := range p.Questions {
		if err := q.Encode(c); err != nil {
			return fmt.Errorf("packet question: %w", err)
		}
	}
	for _, r := range p.Answers {
		if err := r.Encode(c); err != nil {
			return fmt.Errorf("packet answer: %w", err)
		}
	}
	for _, r := range p.Authorities {
		if err := r.Encode(c); err != nil {
			return fmt.Errorf("packet authority: %w", err)
		}
	}
	for _, r := range p.Additionals {
		if err := r.Encode(c); err != nil {
			return fmt.Errorf("packet additional: %w", err)
		}
	}
	return nil
}

// SyncCounts sets the header's section counts from the current
// section slice lengths.
func (p *Packet) SyncCounts() {
	p.Header.QDCount = uint16(len(p.Questions))
	p.Header.ANCount = uint16(len(p.Answers))
	p.Header.NSCount = uint16(len(p.Authorities))
	p.Header.ARCount = uint16(len(p.Additionals))
}

// DecodePacket decodes a full packet from msg: header, then
// QDCOUNT questions, ANCOUNT answers, NSCOUNT authorities, and
// ARCOUNT additionals.
func DecodePacket(msg []byte) (Packet, error) {
	c := CursorFromBytes(msg)
	h, err := DecodeHeader(c)
	if err != nil {
		return Packet{}, fmt.Errorf("packet: %w", err)
	}
	p := Packet{Header: h}

	p.Questions = make([]Question, 0, h.QDCount)
	for i := uint16(0); i < h.QDCount; i++ {
		q, err := DecodeQuestion(c)
		if err != nil {
			return Packet{}, fmt.Errorf("packet question %d: %w", i, err)
		}
		p.Questions = append(p.Questions, q)
	}

	p.Answers, err = decodeRecords(c, h.ANCount)
	if err != nil {
		return Packet{}, fmt.Errorf("packet answers: %w", err)
	}
	p.Authorities, err = decodeRecords(c, h.NSCount)
	if err != nil {
		return Packet{}, fmt.Errorf("packet authorities: %w", err)
	}
	p.Additionals, err = decodeRecords(c, h.ARCount)
	if err != nil {
		return Packet{}, fmt.Errorf("packet additionals: %w", err)
	}

	return p, nil
}

func decodeRecords(c *Cursor, count uint16) ([]Record, error) {
	out := make([]Record, 0, count)
	for i := uint16(0); i < count; i++ {
		r, err := DecodeRecord(c)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// RandomA returns the first A-record address in answers, if any. The
// name is historical (matching the source it was modeled on); order
// is plain input order, nothing is actually randomized.
func (p Packet) RandomA() (net.IP, bool) {
	for _, r := range p.Answers {
		if r.Kind == TypeA {
			return r.Addr, true
		}
	}
	return nil, false
}

// nsPair is one (domain, target) pair yielded by NSIter.
type nsPair struct {
	Domain string
	Target string
}

// NSIter yields (domain, ns target) pairs from the authority section
// whose domain is a suffix of qname.
func (p Packet) NSIter(qname string) []nsPair {
	var out []nsPair
	for _, r := range p.Authorities {
		if r.Kind != TypeNS {
			continue
		}
		if strings.HasSuffix(qname, r.Domain) {
			out = append(out, nsPair{Domain: r.Domain, Target: r.Target})
		}
	}
	return out
}

// ResolvedNS returns the first IPv4 glue address in the additional
// section whose domain equals an NS target matched by NSIter(qname).
func (p Packet) ResolvedNS(qname string) (net.IP, bool) {
	for _, pair := range p.NSIter(qname) {
		for _, r := range p.Additionals {
			if r.Kind == TypeA && r.Domain == pair.Target {
				return r.Addr, true
			}
		}
	}
	return nil, false
}

// UnresolvedNS returns the first NS target name matched by
// NSIter(qname) for which no glue address is present.
func (p Packet) UnresolvedNS(qname string) (string, bool) {
	for _, pair := range p.NSIter(qname) {
		found := false
		for _, r := range p.Additionals {
			if r.Kind == TypeA && r.Domain == pair.Target {
				found = true
				break
			}
		}
		if !found {
			return pair.Target, true
		}
	}
	return "", false
}
