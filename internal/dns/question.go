package dns

import "fmt"

// Question is the single entry a query's question section carries in
// this implementation. DecodePacket decodes every question, but the
// query handler honors only one of them (the last one decoded).
type Question struct {
	Name  string
	QType QueryType
}

// Encode writes the qname, 16-bit qtype, and a constant qclass of 1.
func (q Question) Encode(c *Cursor) error {
	if err := c.WriteQName(q.Name); err != nil {
		return fmt.Errorf("question name: %w", err)
	}
	if err := c.WriteU16(q.QType.Num); err != nil {
		return fmt.Errorf("question qtype: %w", err)
	}
	return c.WriteU16(1) // qclass, always IN
}

// DecodeQuestion reads a qname, 16-bit qtype, and 16-bit qclass (the
// class is read to advance the cursor and then discarded).
func DecodeQuestion(c *Cursor) (Question, error) {
	name, err := c.ReadQName()
	if err != nil {
		return Question{}, fmt.Errorf("question name: %w", err)
	}
	qtype, err := c.ReadU16()
	if err != nil {
		return Question{}, fmt.Errorf("question qtype: %w", err)
	}
	if _, err := c.ReadU16(); err != nil { // qclass, discarded
		return Question{}, fmt.Errorf("question qclass: %w", err)
	}
	return Question{Name: name, QType: QueryType{Num: qtype}}, nil
}
