package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/recurdns/internal/cache"
	"github.com/jroosing/recurdns/internal/dns"
	"github.com/jroosing/recurdns/internal/resolver"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFakeUpstream(t *testing.T, respond func(dns.Packet) dns.Packet) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, dns.FrameSize)
		for {
			n, src, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := dns.DecodePacket(buf[:n])
			if err != nil {
				continue
			}
			resp := respond(req)
			resp.SyncCounts()
			c := dns.NewCursor()
			if err := resp.Encode(c); err != nil {
				continue
			}
			_, _ = conn.WriteToUDP(c.Bytes(), src)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

func encodeQuery(t *testing.T, h dns.Header, qs []dns.Question) []byte {
	t.Helper()
	p := dns.Packet{Header: h, Questions: qs}
	p.SyncCounts()
	c := dns.NewCursor()
	require.NoError(t, p.Encode(c))
	return c.Bytes()
}

func TestHandleZeroQuestionsReturnsFormErr(t *testing.T) {
	h := &QueryHandler{}
	req := encodeQuery(t, dns.Header{ID: 42}, nil)

	resp := h.Handle(req, "client:1")
	require.NotNil(t, resp)

	got, err := dns.DecodePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), got.Header.ID)
	assert.True(t, got.Header.QR)
	assert.Equal(t, dns.RCodeFormErr, got.Header.RCode)
}

func TestHandleResolvesAndInsertsIntoCache(t *testing.T) {
	addr := newFakeUpstream(t, func(req dns.Packet) dns.Packet {
		return dns.Packet{
			Header: dns.Header{ID: req.Header.ID, QR: true, RCode: dns.RCodeNoError},
			Answers: []dns.Record{
				{Domain: "example.com", TTL: 3600, Kind: dns.TypeA, Addr: net.ParseIP("5.6.7.8")},
			},
		}
	})

	res := resolver.New(resolver.Config{RootServerIP: addr.IP.String(), RootServerPort: addr.Port, SourcePort: 0, UpstreamTimeout: 2 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cc := cache.NewConcurrent(ctx, cache.Config{
		MaxSize:        16,
		UpdateInterval: time.Hour,
		StoreInterval:  time.Hour,
		SnapshotPath:   t.TempDir() + "/dns_cache.toml",
	}, nil, nopLogger())

	h := &QueryHandler{Cache: cc, Resolver: res}

	req := encodeQuery(t, dns.Header{ID: 7, RD: true}, []dns.Question{{Name: "example.com", QType: dns.QTypeA()}})
	resp := h.Handle(req, "client:1")
	require.NotNil(t, resp)

	got, err := dns.DecodePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), got.Header.ID)
	require.Len(t, got.Answers, 1)
	assert.True(t, got.Answers[0].Addr.Equal(net.ParseIP("5.6.7.8")))

	entry, ok := cc.Get(cache.Fingerprint("example.com", dns.QTypeA()))
	require.True(t, ok)
	assert.Equal(t, uint32(3600), entry.TTL)
}

func TestHandleServfailOnResolverFailure(t *testing.T) {
	// Unreachable upstream: nothing listens on this port.
	unreachable, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	addr := unreachable.LocalAddr().(*net.UDPAddr)
	unreachable.Close() // closed immediately: nothing will answer

	res := resolver.New(resolver.Config{RootServerIP: addr.IP.String(), RootServerPort: addr.Port, SourcePort: 0, UpstreamTimeout: 100 * time.Millisecond})
	h := &QueryHandler{Resolver: res}

	req := encodeQuery(t, dns.Header{ID: 9, RD: true}, []dns.Question{{Name: "example.com", QType: dns.QTypeA()}})
	resp := h.Handle(req, "client:1")
	require.NotNil(t, resp)

	got, err := dns.DecodePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, dns.RCodeServFail, got.Header.RCode)
}
