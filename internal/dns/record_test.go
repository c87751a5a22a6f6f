package dns

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestARecordRoundTripAndRDLength(t *testing.T) {
	rec := Record{Domain: "example.com", TTL: 3600, Kind: TypeA, Addr: net.ParseIP("127.0.0.1")}

	c := NewCursor()
	require.NoError(t, rec.Encode(c))

	// RDLENGTH is the two bytes preceding RDATA: domain + type(2) +
	// class(2) + ttl(4), then rdlength(2), then 4 bytes of RDATA.
	rdlenPos := c.Pos() - 4 - 2
	rdlen, err := c.GetRange(rdlenPos, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 4}, rdlen)

	c.Seek(0)
	got, err := DecodeRecord(c)
	require.NoError(t, err)
	assert.Equal(t, rec.Domain, got.Domain)
	assert.Equal(t, rec.TTL, got.TTL)
	assert.Equal(t, rec.Kind, got.Kind)
	assert.True(t, rec.Addr.Equal(got.Addr))
}

func TestMXRecordRDLengthBackPatch(t *testing.T) {
	rec := Record{Domain: "example.com", TTL: 300, Kind: TypeMX, Preference: 10, Exchange: "mail.example.com"}
	c := NewCursor()
	require.NoError(t, rec.Encode(c))

	c.Seek(0)
	got, err := DecodeRecord(c)
	require.NoError(t, err)
	assert.Equal(t, uint16(10), got.Preference)
	assert.Equal(t, "mail.example.com", got.Exchange)

	// MX RDLENGTH must equal 2 (preference) + encoded qname length.
	encodedQname := NewCursor()
	require.NoError(t, encodedQname.WriteQName("mail.example.com"))
	expectedRDLen := 2 + encodedQname.Pos()

	domainCursor := NewCursor()
	require.NoError(t, domainCursor.WriteQName("example.com"))
	rdlenPos := domainCursor.Pos() + 2 + 2 + 4
	rdlenBytes, err := c.GetRange(rdlenPos, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(expectedRDLen), uint16(rdlenBytes[0])<<8|uint16(rdlenBytes[1]))
}

func TestUnknownRecordAdvancesPastRDATA(t *testing.T) {
	c := NewCursor()
	require.NoError(t, c.WriteQName("example.com"))
	require.NoError(t, c.WriteU16(99)) // unrecognized type
	require.NoError(t, c.WriteU16(1))  // class
	require.NoError(t, c.WriteU32(60)) // ttl
	require.NoError(t, c.WriteU16(3))  // rdlength
	require.NoError(t, c.WriteU8('x'))
	require.NoError(t, c.WriteU8('y'))
	require.NoError(t, c.WriteU8('z'))

	markerPos := c.Pos()
	require.NoError(t, c.WriteU16(0)) // sentinel terminating qname for a second record

	c.Seek(0)
	rec, err := DecodeRecord(c)
	require.NoError(t, err)
	assert.Equal(t, uint16(99), rec.Kind)
	assert.Equal(t, uint16(3), rec.DataLen)
	assert.Equal(t, markerPos, c.Pos(), "decode must advance past the 3 RDATA bytes, not stop at RDLENGTH")
}
