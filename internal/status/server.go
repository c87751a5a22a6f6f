package status

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jroosing/recurdns/internal/cache"
)

//go:embed assets/*
var embeddedAssets embed.FS

// Server is the status HTTP listener. It is entirely independent of
// the resolution path: its absence never affects DNS behavior.
type Server struct {
	cache      *cache.Concurrent
	logger     *slog.Logger
	startTime  time.Time
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds a Server bound to addr, backed by cc for cache
// statistics. The caller starts it with Run.
func New(addr string, cc *cache.Concurrent, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cache:     cc,
		logger:    logger,
		startTime: time.Now(),
		engine:    engine,
	}

	engine.GET("/healthz", s.healthz)
	engine.GET("/stats", s.stats)

	assetsFS, err := static.EmbedFolder(embeddedAssets, "assets")
	if err != nil {
		panic("status: failed to load embedded assets: " + err.Error())
	}
	engine.Use(static.Serve("/", assetsFS))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Engine exposes the gin.Engine for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run starts serving and blocks until ctx is cancelled, at which point
// it shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) stats(c *gin.Context) {
	resp := StatsResponse{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		StartTime:     s.startTime,
		Process: ProcessStats{
			Goroutines: runtime.NumGoroutine(),
		},
	}

	if s.cache != nil {
		cs := s.cache.Stats()
		resp.Cache = CacheStats{
			Size:      cs.Size,
			MaxSize:   cs.MaxSize,
			Hits:      cs.Hits,
			Misses:    cs.Misses,
			Evictions: cs.Evictions,
		}
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			resp.Process.RSSBytes = rss.RSS
		}
	}
	if avg, err := load.Avg(); err == nil {
		resp.Process.HostLoad1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.Process.MemUsedPct = vm.UsedPercent
	}

	c.JSON(http.StatusOK, resp)
}
