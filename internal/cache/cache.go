package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jroosing/recurdns/internal/dns"
)

// Resolve performs a full recursive resolution for (qname, qtype); it
// is supplied by the caller so this package never imports the
// resolver package directly. RefreshExpired calls it to re-resolve
// expired keys.
type Resolve func(qname string, qtype dns.QueryType) (dns.Packet, error)

// Cache is the bounded, insertion-ordered fingerprint -> Entry map.
// It is not safe for concurrent use; Concurrent wraps it with a
// mutex for that.
type Cache struct {
	entries map[string]Entry
	order   []string
	maxSize int
	resolve Resolve

	evictions int
}

// New builds an empty cache bounded at maxSize.
func New(maxSize int, resolve Resolve) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		resolve: resolve,
	}
}

// MaxSize returns the cache's configured capacity.
func (c *Cache) MaxSize() int { return c.maxSize }

// SetMaxSize overrides the capacity, as the owner's authoritative
// parameter re-asserted after loading a snapshot (see Concurrent's
// construction sequence).
func (c *Cache) SetMaxSize(n int) { c.maxSize = n }

// Len returns the current number of entries.
func (c *Cache) Len() int { return len(c.entries) }

// Evictions returns the number of FIFO evictions since construction.
func (c *Cache) Evictions() int { return c.evictions }

// Insert adds entry under key.
//
// If key is already present this is a no-op: the original entry and
// its position in the eviction order are preserved. This is load
// bearing (Design Note §9.3) — callers that want to replace an
// existing entry must use Update or RefreshExpired, never Insert.
func (c *Cache) Insert(key string, entry Entry) {
	if _, exists := c.entries[key]; exists {
		return
	}
	if len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions++
	}
	c.order = append(c.order, key)
	c.entries[key] = entry
}

// Get returns the entry for key, or false if absent or expired. An
// expired entry is lazily removed from both the map and the order
// slice as a side effect of the lookup.
func (c *Cache) Get(key string, now int64) (Entry, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if entry.Expired(now) {
		c.remove(key)
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Update re-encodes packet into key's stored frame and resets its
// expiry to now+ttl. It is a no-op if key is absent.
func (c *Cache) Update(key string, p dns.Packet, ttl uint32, now int64) error {
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	entry, err := newEntry(p, ttl, now)
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	c.entries[key] = entry
	return nil
}

// NewEntryFromPacket builds a fresh Entry from a resolved packet, the
// caller-supplied ttl and the caller's current time. The ttl is used
// as given; QueryHandler (4.9) passes the TTL of the first answer, or
// 60 if there is none.
func NewEntryFromPacket(p dns.Packet, ttl uint32, now int64) (Entry, error) {
	return newEntry(p, ttl, now)
}

// RefreshExpired re-resolves every currently expired key and, on
// success, replaces its entry in place using the TTL of the first
// answer record. Keys whose lookup fails or returns no answers are
// silently skipped and remain in the map until Get lazily removes
// them.
func (c *Cache) RefreshExpired(now int64) {
	var expired []string
	for key, entry := range c.entries {
		if entry.Expired(now) {
			expired = append(expired, key)
		}
	}

	for _, key := range expired {
		name, qtype, ok := parseFingerprint(key)
		if !ok {
			continue
		}
		resolved, err := c.resolve(name, qtype)
		if err != nil || len(resolved.Answers) == 0 {
			continue
		}
		ttl := resolved.Answers[0].TTL
		if err := c.Update(key, resolved, ttl, now); err != nil {
			continue
		}
	}
}

// Fingerprint builds the cache key for a question, per Design Note
// §9.5: "{name}-{qtype_numeric}". Retained exactly as designed
// despite being brittle against domains containing literal '-'
// characters (every realistic domain) — see parseFingerprint.
func Fingerprint(name string, qtype dns.QueryType) string {
	return fmt.Sprintf("%s-%d", name, qtype.Num)
}

// parseFingerprint reverses Fingerprint: the name is everything up to
// the first '-', the qtype is the numeric suffix after the last '-'.
// This is the same brittle split used by the source this cache was
// modeled on. For a name containing '-' the qtype still parses
// correctly, since the true delimiter is the *last* '-', but the
// returned name is cut short at the name's own first '-'.
func parseFingerprint(key string) (string, dns.QueryType, bool) {
	firstDash := strings.Index(key, "-")
	lastDash := strings.LastIndex(key, "-")
	if firstDash < 0 || lastDash < 0 {
		return "", dns.QueryType{}, false
	}
	name := key[:firstDash]
	qtypeStr := key[lastDash+1:]
	n, err := strconv.ParseUint(qtypeStr, 10, 16)
	if err != nil {
		return "", dns.QueryType{}, false
	}
	return name, dns.QueryType{Num: uint16(n)}, true
}
