// Package resolver implements the iterative recursive resolution
// state machine: starting from a hardcoded root server, it follows
// NS referrals (resolving glue-less NS names as needed) until an
// authoritative answer, or a terminal negative response, is reached.
package resolver

import (
	"fmt"
	"net"
	"time"

	"github.com/jroosing/recurdns/internal/dns"
)

// maxRecursionDepth bounds the self-recursive NS-name resolution call
// inside recursive, per Design Note §9 ("enforce a depth bound in any
// reimplementation"). Once this many nested NS-name resolutions are
// in progress, a glue-less referral returns its best partial result
// rather than recursing further. Referrals followed via glue records
// are not counted against this bound.
const maxRecursionDepth = 16

// Config parameterizes a Resolver instance.
type Config struct {
	RootServerIP   string
	RootServerPort int
	SourcePort     int // fixed outbound source port; see Design Note §9.4
	UpstreamTimeout time.Duration
}

// Resolver performs iterative recursive DNS resolution over UDP.
type Resolver struct {
	cfg Config
}

// New builds a Resolver from cfg.
func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Recursive implements the iterative descent described in 4.8,
// starting from the configured root server.
func (r *Resolver) Recursive(qname string, qtype dns.QueryType) (dns.Packet, error) {
	server := &net.UDPAddr{IP: net.ParseIP(r.cfg.RootServerIP), Port: r.cfg.RootServerPort}
	return r.recursive(qname, qtype, server, 0)
}

func (r *Resolver) recursive(qname string, qtype dns.QueryType, server *net.UDPAddr, depth int) (dns.Packet, error) {
	res, err := r.query(server, qname, qtype)
	if err != nil {
		return dns.Packet{}, fmt.Errorf("recursive %s: %w", qname, err)
	}

	for {
		if len(res.Answers) > 0 && res.Header.RCode == dns.RCodeNoError {
			return res, nil
		}
		if len(res.Answers) == 0 && res.Header.RCode == dns.RCodeNXDomain {
			return res, nil
		}

		if addr, ok := res.ResolvedNS(qname); ok {
			server = &net.UDPAddr{IP: addr, Port: r.cfg.RootServerPort}
			next, err := r.query(server, qname, qtype)
			if err != nil {
				return dns.Packet{}, fmt.Errorf("recursive %s: %w", qname, err)
			}
			res = next
			continue
		}

		nsName, ok := res.UnresolvedNS(qname)
		if !ok {
			return res, nil
		}

		if depth >= maxRecursionDepth {
			return res, nil
		}

		root := &net.UDPAddr{IP: net.ParseIP(r.cfg.RootServerIP), Port: r.cfg.RootServerPort}
		rec, err := r.recursive(nsName, dns.QTypeA(), root, depth+1)
		if err != nil {
			return res, nil
		}
		addr, ok := rec.RandomA()
		if !ok {
			return res, nil
		}
		server = &net.UDPAddr{IP: addr, Port: r.cfg.RootServerPort}
		next, err := r.query(server, qname, qtype)
		if err != nil {
			return dns.Packet{}, fmt.Errorf("recursive %s: %w", qname, err)
		}
		res = next
	}
}

// query sends a single request to server and returns its decoded
// response. It binds the resolver's fixed source port: concurrent
// calls to query collide on that port (Design Note §9.4, retained as
// designed — callers needing concurrency must serialize their calls
// to Recursive/query themselves).
func (r *Resolver) query(server *net.UDPAddr, qname string, qtype dns.QueryType) (dns.Packet, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: r.cfg.SourcePort})
	if err != nil {
		return dns.Packet{}, fmt.Errorf("%w: bind source port %d: %v", dns.ErrUpstreamFailure, r.cfg.SourcePort, err)
	}
	defer conn.Close()

	req := dns.Packet{
		Header:    dns.Header{ID: 6666, RD: true},
		Questions: []dns.Question{{Name: qname, QType: qtype}},
	}
	req.SyncCounts()

	c := dns.NewCursor()
	if err := req.Encode(c); err != nil {
		return dns.Packet{}, fmt.Errorf("%w: encode query: %v", dns.ErrUpstreamFailure, err)
	}

	if _, err := conn.WriteToUDP(c.Bytes(), server); err != nil {
		return dns.Packet{}, fmt.Errorf("%w: send to %s: %v", dns.ErrUpstreamFailure, server, err)
	}

	if r.cfg.UpstreamTimeout > 0 {
		// Design Note §9.6: the reference source blocks on recv with
		// no deadline. A bounded receive timeout is the invited
		// improvement; applied here.
		if err := conn.SetReadDeadline(time.Now().Add(r.cfg.UpstreamTimeout)); err != nil {
			return dns.Packet{}, fmt.Errorf("%w: set read deadline: %v", dns.ErrUpstreamFailure, err)
		}
	}

	buf := make([]byte, dns.FrameSize)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		return dns.Packet{}, fmt.Errorf("%w: recv from %s: %v", dns.ErrUpstreamFailure, server, err)
	}

	res, err := dns.DecodePacket(buf[:n])
	if err != nil {
		return dns.Packet{}, fmt.Errorf("%w: decode response from %s: %v", dns.ErrUpstreamFailure, server, err)
	}
	return res, nil
}
