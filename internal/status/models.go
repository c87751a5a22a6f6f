// Package status exposes the purely observational HTTP surface
// described in SPEC_FULL.md §4.10: a health probe, a cache/process
// statistics snapshot, and a single static page rendering that
// snapshot for humans. It never participates in DNS resolution.
package status

import "time"

// HealthResponse is the body returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// CacheStats mirrors cache.Stats for JSON rendering, grounded on the
// teacher's internal/api/models.ServerStatsResponse shape.
type CacheStats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int   `json:"evictions"`
}

// ProcessStats reports gopsutil-derived process and host resource
// gauges, grounded on the teacher's handlers.Health CPU/memory sample.
type ProcessStats struct {
	Goroutines    int     `json:"goroutines"`
	RSSBytes      uint64  `json:"rss_bytes"`
	HostLoad1     float64 `json:"host_load1"`
	MemUsedPct    float64 `json:"mem_used_percent"`
}

// StatsResponse is the body returned by GET /stats.
type StatsResponse struct {
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     time.Time    `json:"start_time"`
	Cache         CacheStats   `json:"cache"`
	Process       ProcessStats `json:"process"`
}
