package cache

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/recurdns/internal/dns"
)

func aRecordPacket(domain string, ttl uint32) dns.Packet {
	p := dns.Packet{
		Header:  dns.Header{ID: 1},
		Answers: []dns.Record{{Domain: domain, TTL: ttl, Kind: dns.TypeA, Addr: net.ParseIP("1.2.3.4")}},
	}
	p.SyncCounts()
	return p
}

func TestCacheInsertAndGet(t *testing.T) {
	c := New(16, nil)
	entry, err := NewEntryFromPacket(aRecordPacket("example.com", 60), 60, 1000)
	require.NoError(t, err)

	c.Insert("example.com-1", entry)
	got, ok := c.Get("example.com-1", 1000)
	require.True(t, ok)
	assert.Equal(t, entry.TTL, got.TTL)
}

func TestCacheInsertIsNoOpOnExistingKey(t *testing.T) {
	c := New(16, nil)
	first, err := NewEntryFromPacket(aRecordPacket("example.com", 60), 60, 1000)
	require.NoError(t, err)
	second, err := NewEntryFromPacket(aRecordPacket("example.com", 9999), 9999, 2000)
	require.NoError(t, err)

	c.Insert("example.com-1", first)
	c.Insert("example.com-1", second)

	got, ok := c.Get("example.com-1", 1000)
	require.True(t, ok)
	assert.Equal(t, first.Expiry, got.Expiry, "insert on an existing key must not replace the entry")
}

func TestCacheFIFOEviction(t *testing.T) {
	c := New(2, nil)
	e1, _ := NewEntryFromPacket(aRecordPacket("k1.com", 60), 60, 0)
	e2, _ := NewEntryFromPacket(aRecordPacket("k2.com", 60), 60, 0)
	e3, _ := NewEntryFromPacket(aRecordPacket("k3.com", 60), 60, 0)

	c.Insert("k1", e1)
	c.Insert("k2", e2)
	c.Insert("k3", e3)

	_, ok := c.Get("k1", 0)
	assert.False(t, ok, "oldest key must be evicted once over capacity")
	_, ok = c.Get("k2", 0)
	assert.True(t, ok)
	_, ok = c.Get("k3", 0)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCacheExpiredEntryRemovedOnGet(t *testing.T) {
	c := New(16, nil)
	entry, _ := NewEntryFromPacket(aRecordPacket("example.com", 1), 1, 1000)
	c.Insert("example.com-1", entry)

	_, ok := c.Get("example.com-1", 1002) // now >= expiry (1001)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be removed from the map, not just hidden")
}

func TestCacheUpdateReplacesInPlace(t *testing.T) {
	c := New(16, nil)
	entry, _ := NewEntryFromPacket(aRecordPacket("example.com", 60), 60, 1000)
	c.Insert("example.com-1", entry)

	require.NoError(t, c.Update("example.com-1", aRecordPacket("example.com", 120), 120, 2000))

	got, ok := c.Get("example.com-1", 2000)
	require.True(t, ok)
	assert.Equal(t, uint32(120), got.TTL)
	assert.Equal(t, int64(2120), got.Expiry)
}

func TestCacheUpdateOnMissingKeyIsNoOp(t *testing.T) {
	c := New(16, nil)
	require.NoError(t, c.Update("missing-1", aRecordPacket("example.com", 60), 60, 1000))
	assert.Equal(t, 0, c.Len())
}

func TestCacheRefreshExpiredSkipsFailedLookups(t *testing.T) {
	calls := 0
	resolve := func(name string, qtype dns.QueryType) (dns.Packet, error) {
		calls++
		return dns.Packet{}, assertErrUpstream
	}
	c := New(16, resolve)
	entry, _ := NewEntryFromPacket(aRecordPacket("gone.example.com", 1), 1, 1000)
	c.Insert("gone.example.com-1", entry)

	c.RefreshExpired(1002)

	assert.Equal(t, 1, calls)
	// still present (lazily expired), since refresh failed
	assert.Equal(t, 1, c.Len())
}

func TestCacheRefreshExpiredUpdatesOnSuccess(t *testing.T) {
	resolve := func(name string, qtype dns.QueryType) (dns.Packet, error) {
		return aRecordPacket(name, 300), nil
	}
	c := New(16, resolve)
	entry, _ := NewEntryFromPacket(aRecordPacket("example.com", 1), 1, 1000)
	c.Insert("example.com-1", entry)

	c.RefreshExpired(1002)

	got, ok := c.Get("example.com-1", 1002)
	require.True(t, ok)
	assert.Equal(t, uint32(300), got.TTL)
}

func TestFingerprintRoundTrip(t *testing.T) {
	fp := Fingerprint("example.com", dns.QTypeA())
	assert.Equal(t, "example.com-1", fp)

	name, qtype, ok := parseFingerprint(fp)
	require.True(t, ok)
	assert.Equal(t, "example.com", name)
	assert.Equal(t, dns.TypeA, qtype.Num)
}

var assertErrUpstream = dns.ErrUpstreamFailure
