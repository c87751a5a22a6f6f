// Package server wires together the cache, resolver, and the UDP
// transport into the single-datagram request/response cycle described
// by the query handler contract.
//
// Error Handling:
//
// QueryHandler.Handle returns no error: a request that fails to decode
// gets no response (nil), a resolver failure becomes a SERVFAIL
// response, and an encode failure yields nil; each case is logged at
// debug level.
package server

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jroosing/recurdns/internal/cache"
	"github.com/jroosing/recurdns/internal/dns"
	"github.com/jroosing/recurdns/internal/resolver"
)

// QueryHandler is the per-datagram entry point: it orchestrates
// cache-lookup -> resolver -> response encode -> cache insert.
type QueryHandler struct {
	Logger   *slog.Logger
	Cache    *cache.Concurrent
	Resolver *resolver.Resolver
}

// Handle implements the contract in 4.9 for one received datagram.
// Each call is tagged with a fresh correlation ID so that the decode,
// cache, resolve, and encode log lines for one datagram can be
// grepped together — distinct from the fixed wire-protocol query ID
// used in the DNS header.
func (h *QueryHandler) Handle(payload []byte, src string) []byte {
	reqID := uuid.NewString()

	request, err := dns.DecodePacket(payload)
	if err != nil {
		h.logDebug("malformed request", "req_id", reqID, "src", src, "err", err)
		return nil
	}

	if len(request.Questions) == 0 {
		resp := dns.Packet{Header: dns.Header{ID: request.Header.ID, QR: true, RCode: dns.RCodeFormErr}}
		return h.encode(resp)
	}

	// Only the last (and in practice only) question is honored, per
	// 4.9 step 2.
	q := request.Questions[len(request.Questions)-1]
	key := cache.Fingerprint(q.Name, q.QType)

	if h.Cache != nil {
		if entry, ok := h.Cache.Get(key); ok {
			cached, err := entry.Packet()
			if err == nil {
				cached.Header.ID = request.Header.ID
				h.logDebug("cache hit", "req_id", reqID, "src", src, "qname", q.Name, "qtype", q.QType.Num)
				return h.encode(cached)
			}
		}
	}

	response := dns.Packet{
		Header: dns.Header{
			ID:    request.Header.ID,
			QR:    true,
			RD:    true,
			RA:    true,
		},
		Questions: []dns.Question{q},
	}

	resolved, err := h.Resolver.Recursive(q.Name, q.QType)
	if err != nil {
		h.logDebug("resolve failed", "req_id", reqID, "src", src, "qname", q.Name, "err", err)
		response.Header.RCode = dns.RCodeServFail
		response.SyncCounts()
		return h.encode(response)
	}

	response.Header.RCode = resolved.Header.RCode
	response.Answers = resolved.Answers
	response.Authorities = resolved.Authorities
	response.Additionals = resolved.Additionals
	response.SyncCounts()

	encoded := h.encode(response)

	if h.Cache != nil && encoded != nil {
		ttl := uint32(60)
		if len(response.Answers) > 0 {
			ttl = response.Answers[0].TTL
		}
		now := time.Now().Unix()
		entry, err := cache.NewEntryFromPacket(response, ttl, now)
		if err == nil {
			h.Cache.Insert(key, entry)
		}
	}

	return encoded
}

func (h *QueryHandler) encode(p dns.Packet) []byte {
	c := dns.NewCursor()
	if err := p.Encode(c); err != nil {
		h.logDebug("encode failed", "err", err)
		return nil
	}
	return c.Bytes()
}

func (h *QueryHandler) logDebug(msg string, args ...any) {
	if h.Logger == nil {
		return
	}
	h.Logger.Debug(msg, args...)
}
