// Command dnsquery is a small debug client for sending a single DNS
// query over UDP and printing the decoded response, useful for
// exercising internal/dns and a running recurdns instance by hand.
package main

import (
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"flag"

	"github.com/jroosing/recurdns/internal/dns"
)

func main() {
	var (
		serverAddr = flag.String("server", "127.0.0.1:2053", "DNS server HOST:PORT")
		name       = flag.String("name", "example.com", "Query name")
		qtype      = flag.Uint("qtype", 1, "Query type (numeric, A=1, NS=2, CNAME=5, MX=15, AAAA=28)")
		timeout    = flag.Duration("timeout", 2*time.Second, "Timeout")
		quiet      = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	resp, err := query(*serverAddr, *name, dns.QTypeUnknown(uint16(*qtype)), *timeout)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	fmt.Printf("id=%d rcode=%d answers=%d authorities=%d additionals=%d\n",
		resp.Header.ID, resp.Header.RCode, len(resp.Answers), len(resp.Authorities), len(resp.Additionals))

	rows := make([]string, 0, len(resp.Answers))
	for _, rr := range resp.Answers {
		rows = append(rows, formatRecord(rr))
	}
	sort.Strings(rows)
	for _, s := range rows {
		fmt.Println(s)
	}
}

func query(serverAddr, name string, qtype dns.QueryType, timeout time.Duration) (dns.Packet, error) {
	if strings.TrimSpace(name) == "" {
		return dns.Packet{}, fmt.Errorf("name required")
	}

	addr, err := net.ResolveUDPAddr("udp4", serverAddr)
	if err != nil {
		return dns.Packet{}, err
	}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return dns.Packet{}, err
	}
	defer conn.Close()

	req := dns.Packet{
		Header:    dns.Header{ID: uint16(time.Now().UnixNano()), RD: true},
		Questions: []dns.Question{{Name: strings.TrimSuffix(name, "."), QType: qtype}},
	}
	req.SyncCounts()

	c := dns.NewCursor()
	if err := req.Encode(c); err != nil {
		return dns.Packet{}, err
	}

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return dns.Packet{}, err
	}
	if _, err := conn.Write(c.Bytes()); err != nil {
		return dns.Packet{}, err
	}

	buf := make([]byte, dns.FrameSize)
	n, err := conn.Read(buf)
	if err != nil {
		return dns.Packet{}, err
	}
	return dns.DecodePacket(buf[:n])
}

func formatRecord(rr dns.Record) string {
	name := rr.Domain
	if name == "" {
		name = "."
	}
	switch rr.Kind {
	case dns.TypeA, dns.TypeAAAA:
		return fmt.Sprintf("%s %d IN %s %s", name, rr.TTL, dns.QueryType{Num: rr.Kind}.String(), rr.Addr)
	case dns.TypeCNAME:
		return fmt.Sprintf("%s %d IN CNAME %s", name, rr.TTL, rr.Target)
	case dns.TypeNS:
		return fmt.Sprintf("%s %d IN NS %s", name, rr.TTL, rr.Target)
	case dns.TypeMX:
		return fmt.Sprintf("%s %d IN MX %d %s", name, rr.TTL, rr.Preference, rr.Exchange)
	default:
		return fmt.Sprintf("%s %d IN TYPE%d (unparsed)", name, rr.TTL, rr.Kind)
	}
}
