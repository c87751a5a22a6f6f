package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/jroosing/recurdns/internal/dns"
	"github.com/jroosing/recurdns/internal/pool"
)

// UDPServer is the top-level UDP accept loop: bind once, read
// datagrams, hand each to the QueryHandler on its own goroutine so a
// slow upstream resolution for one client never blocks another's
// response.
type UDPServer struct {
	Logger  *slog.Logger
	Handler *QueryHandler

	conn *net.UDPConn
	wg   sync.WaitGroup
}

// bufPool recycles fixed-size datagram buffers across requests,
// avoiding one allocation per received query.
var bufPool = pool.New(func() *[dns.FrameSize]byte {
	return new([dns.FrameSize]byte)
})

// Run binds addr and serves until ctx is cancelled.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if s.Logger != nil {
		s.Logger.Info("udp listener started", "addr", addr)
	}

	buf := make([]byte, dns.FrameSize)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var opErr *net.OpError
			if errors.As(err, &opErr) {
				break
			}
			continue
		}

		payload := bufPool.Get()
		copy(payload[:], buf[:n])

		s.wg.Add(1)
		go func(payload *[dns.FrameSize]byte, n int, peer *net.UDPAddr) {
			defer s.wg.Done()
			defer bufPool.Put(payload)
			resp := s.Handler.Handle(payload[:n], peer.String())
			if len(resp) == 0 {
				return
			}
			_, _ = conn.WriteToUDP(resp, peer)
		}(payload, n, peer)
	}

	s.wg.Wait()
	return nil
}

// Close closes the listening socket, unblocking Run.
func (s *UDPServer) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
