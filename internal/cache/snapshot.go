package cache

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/jroosing/recurdns/internal/dns"
)

// snapshotEntry is the TOML shape of one cached response: the frame
// as an array of 512 integers (TOML has no native byte-string type),
// plus expiry and ttl.
type snapshotEntry struct {
	Response [dns.FrameSize]int `toml:"response"`
	Expiry   int64              `toml:"expiry"`
	TTL      uint32             `toml:"ttl"`
}

// document is the on-disk snapshot shape described in 4.6: a table of
// fingerprint -> entry, the insertion order, and the configured
// capacity at the time of the snapshot.
type document struct {
	Cache   map[string]snapshotEntry `toml:"cache"`
	Order   []string                 `toml:"order"`
	MaxSize int                      `toml:"max_size"`
}

// Save serializes the cache to path as TOML.
func Save(c *Cache, path string) error {
	doc := document{
		Cache:   make(map[string]snapshotEntry, len(c.entries)),
		Order:   append([]string(nil), c.order...),
		MaxSize: c.maxSize,
	}
	for key, entry := range c.entries {
		var se snapshotEntry
		for i, b := range entry.Response {
			se.Response[i] = int(b)
		}
		se.Expiry = entry.Expiry
		se.TTL = entry.TTL
		doc.Cache[key] = se
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a snapshot from path. Loading is best-effort: missing
// files return a fresh empty cache with no error reported to the
// caller beyond ErrSnapshotCorruption for a structurally invalid file;
// a malformed or unreadable file causes the caller to fall back to a
// fresh cache (see Design Note in 4.6 and ConcurrentCache's
// construction sequence in 4.7).
func Load(path string, maxSize int, resolve Resolve) (*Cache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(maxSize, resolve), nil
	}
	if err != nil {
		return New(maxSize, resolve), fmt.Errorf("%w: read snapshot %s: %v", ErrSnapshotCorruption, path, err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return New(maxSize, resolve), fmt.Errorf("%w: parse snapshot %s: %v", ErrSnapshotCorruption, path, err)
	}

	c := New(maxSize, resolve)
	for _, key := range doc.Order {
		se, ok := doc.Cache[key]
		if !ok {
			continue // missing/malformed entries are dropped
		}
		var entry Entry
		for i := 0; i < dns.FrameSize && i < len(se.Response); i++ {
			entry.Response[i] = byte(se.Response[i])
		}
		entry.Expiry = se.Expiry
		entry.TTL = se.TTL
		c.entries[key] = entry
		c.order = append(c.order, key)
	}
	return c, nil
}
