package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jroosing/recurdns/internal/dns"
)

// Config controls a Concurrent cache's background tasks and
// persistence, sourced from the positional CLI / viper layers
// described in the external interfaces.
type Config struct {
	MaxSize        int
	UpdateInterval time.Duration // refresh task tick
	StoreInterval  time.Duration // persist task tick
	SnapshotPath   string
	Enabled        bool
}

// Concurrent wraps Cache behind a single mutex and owns the refresh
// and persist background tasks described in 4.7.
type Concurrent struct {
	mu     sync.Mutex
	cache  *Cache
	cfg    Config
	logger *slog.Logger

	hits   int64
	misses int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewConcurrent constructs a Concurrent cache per the sequence in
// 4.7: load from the configured snapshot path (falling back to an
// empty cache on any failure), re-assert the configured max_size as
// authoritative, then launch the refresh and persist tasks.
func NewConcurrent(ctx context.Context, cfg Config, resolve Resolve, logger *slog.Logger) *Concurrent {
	c, err := Load(cfg.SnapshotPath, cfg.MaxSize, resolve)
	if err != nil {
		logger.Warn("cache snapshot load failed, starting empty", "path", cfg.SnapshotPath, "err", err)
	}
	c.SetMaxSize(cfg.MaxSize)

	taskCtx, cancel := context.WithCancel(ctx)
	cc := &Concurrent{
		cache:  c,
		cfg:    cfg,
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go cc.run(taskCtx)
	return cc
}

func (cc *Concurrent) run(ctx context.Context) {
	defer close(cc.done)

	refreshTicker := time.NewTicker(cc.cfg.UpdateInterval)
	defer refreshTicker.Stop()
	storeTicker := time.NewTicker(cc.cfg.StoreInterval)
	defer storeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			cc.persistFinal()
			return
		case <-refreshTicker.C:
			cc.refresh()
		case <-storeTicker.C:
			cc.persist()
		}
	}
}

// refresh acquires the mutex and calls RefreshExpired. Design Note
// §9.7: the outbound recursive query runs while the mutex is held,
// serializing refresh with all foreground cache access for the
// duration of a refresh cycle. Retained exactly as designed.
func (cc *Concurrent) refresh() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache.RefreshExpired(time.Now().Unix())
}

func (cc *Concurrent) persist() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := Save(cc.cache, cc.cfg.SnapshotPath); err != nil {
		cc.logger.Error("cache snapshot persist failed", "path", cc.cfg.SnapshotPath, "err", err)
	}
}

func (cc *Concurrent) persistFinal() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := Save(cc.cache, cc.cfg.SnapshotPath); err != nil {
		cc.logger.Error("final cache snapshot failed", "path", cc.cfg.SnapshotPath, "err", err)
	}
}

// Close stops the background tasks, writing one final snapshot, and
// blocks until they have exited.
func (cc *Concurrent) Close() {
	cc.cancel()
	<-cc.done
}

// Insert acquires the mutex for the duration of Cache.Insert.
func (cc *Concurrent) Insert(key string, entry Entry) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache.Insert(key, entry)
}

// Get acquires the mutex for the duration of Cache.Get.
func (cc *Concurrent) Get(key string) (Entry, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	entry, ok := cc.cache.Get(key, time.Now().Unix())
	if ok {
		cc.hits++
	} else {
		cc.misses++
	}
	return entry, ok
}

// Update acquires the mutex for the duration of Cache.Update.
func (cc *Concurrent) Update(key string, p dns.Packet, ttl uint32) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.cache.Update(key, p, ttl, time.Now().Unix())
}

// Stats is a point-in-time snapshot of cache instrumentation, purely
// additive to the spec's semantics and consumed by the status API.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int
}

// Stats returns the current cache statistics.
func (cc *Concurrent) Stats() Stats {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return Stats{
		Size:      cc.cache.Len(),
		MaxSize:   cc.cache.MaxSize(),
		Hits:      cc.hits,
		Misses:    cc.misses,
		Evictions: cc.cache.Evictions(),
	}
}
