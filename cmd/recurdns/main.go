// Command recurdns runs the recursive DNS resolver service: a UDP
// listener, an iterative recursive resolver, a bounded response cache,
// and an optional observational status API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jroosing/recurdns/internal/cache"
	"github.com/jroosing/recurdns/internal/config"
	"github.com/jroosing/recurdns/internal/helpers"
	"github.com/jroosing/recurdns/internal/logging"
	"github.com/jroosing/recurdns/internal/resolver"
	"github.com/jroosing/recurdns/internal/server"
	"github.com/jroosing/recurdns/internal/status"
)

const usage = `recurdns - recursive DNS resolver

Usage:
  recurdns                                      run with configured defaults (cache enabled, max_size=16)
  recurdns <enabled>                             run with cache enabled/disabled (true|false)
  recurdns <max_size> <update_interval_ms> <store_interval_s>   run with explicit cache tuning, cache enabled

Configuration is otherwise read from an optional config file and
RECURDNS_-prefixed environment variables; see internal/config.
`

func main() {
	cfg, err := config.Load(os.Getenv("RECURDNS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if !applyCLIArgs(cfg, os.Args[1:]) {
		fmt.Print(usage)
		os.Exit(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// applyCLIArgs implements the positional CLI contract: 0 args leaves
// cfg untouched; 1 arg toggles cache.enabled; 3 args set
// max_size/update_interval/store_interval and force cache.enabled
// true; any other arity returns false so the caller prints usage and
// exits 0.
func applyCLIArgs(cfg *config.Config, args []string) bool {
	switch len(args) {
	case 0:
		return true
	case 1:
		enabled, err := strconv.ParseBool(args[0])
		if err != nil {
			return false
		}
		cfg.Cache.Enabled = enabled
		return true
	case 3:
		maxSize, err := strconv.Atoi(args[0])
		if err != nil {
			return false
		}
		updateMS, err := strconv.Atoi(args[1])
		if err != nil {
			return false
		}
		storeS, err := strconv.Atoi(args[2])
		if err != nil {
			return false
		}
		// max_size arrives as a bare decimal on the command line and is
		// clamped into the uint16 range: a negative argument becomes 0
		// and one above 65535 becomes 65535.
		cfg.Cache.MaxSize = int(helpers.ClampIntToUint16(maxSize))
		cfg.Cache.UpdateInterval = time.Duration(updateMS) * time.Millisecond
		cfg.Cache.StoreInterval = time.Duration(storeS) * time.Second
		cfg.Cache.Enabled = true
		return true
	default:
		return false
	}
}

func run(cfg *config.Config) error {
	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
		LogDir:           cfg.Logging.LogDir,
	})
	logger.Info("recurdns starting",
		"listen_addr", cfg.Server.ListenAddr,
		"root_server", fmt.Sprintf("%s:%d", cfg.Server.RootServerIP, cfg.Server.RootServerPort),
		"cache_enabled", cfg.Cache.Enabled,
		"cache_max_size", cfg.Cache.MaxSize,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res := resolver.New(resolver.Config{
		RootServerIP:    cfg.Server.RootServerIP,
		RootServerPort:  cfg.Server.RootServerPort,
		SourcePort:      cfg.Server.ResolverSourcePort,
		UpstreamTimeout: cfg.Server.UpstreamTimeout,
	})

	cacheCfg := cache.Config{
		MaxSize:        cfg.Cache.MaxSize,
		UpdateInterval: cfg.Cache.UpdateInterval,
		StoreInterval:  cfg.Cache.StoreInterval,
		SnapshotPath:   cfg.Cache.SnapshotPath,
		Enabled:        cfg.Cache.Enabled,
	}

	var cc *cache.Concurrent
	if cfg.Cache.Enabled {
		cc = cache.NewConcurrent(ctx, cacheCfg, res.Recursive, logger)
		defer cc.Close()
	}

	handler := &server.QueryHandler{
		Logger:   logger,
		Cache:    cc,
		Resolver: res,
	}
	udpSrv := &server.UDPServer{Logger: logger, Handler: handler}

	errCh := make(chan error, 2)
	go func() {
		errCh <- udpSrv.Run(ctx, cfg.Server.ListenAddr)
	}()

	if cfg.Status.Enabled {
		statusSrv := status.New(cfg.Status.Addr, cc, logger)
		logger.Info("status API starting", "addr", cfg.Status.Addr)
		go func() {
			if err := statusSrv.Run(ctx); err != nil {
				logger.Error("status API error", "err", err)
				errCh <- err
				return
			}
			errCh <- nil
		}()
	} else {
		errCh <- nil
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := <-errCh; err != nil {
		return fmt.Errorf("udp server: %w", err)
	}
	return nil
}
