package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/matst80/slask-facets/pkg/cache"
	"github.com/matst80/slask-facets/pkg/common"
	"github.com/matst80/slask-facets/pkg/endpoint"
	"github.com/matst80/slask-facets/pkg/server"
	"github.com/matst80/slask-facets/pkg/tracking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")
var debugAddress = flag.String("debug-addr", ":8081", "address for the profiling endpoints")

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func main() {
	flag.Parse()

	cfg, err := server.ConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	var hooks []common.ShutdownHook
	var search endpoint.SearchEndpoint = endpoint.NewHttpEndpoint(cfg.SearchUrl, cfg.SearchToken, logger.Named("endpoint"))

	if cfg.RabbitUrl != "" {
		rabbit, err := tracking.NewRabbitTracking(cfg.RabbitUrl, cfg.Country)
		if err != nil {
			logger.Error("tracking disabled, could not connect to rabbit", zap.Error(err))
		} else {
			queued := tracking.NewQueuedTracking(rabbit, logger.Named("tracking"))
			search = endpoint.NewTrackingEndpoint(search, queued, logger.Named("tracking"))
			hooks = append(hooks, func(ctx context.Context) error {
				queued.Close()
				return rabbit.Close()
			})
			logger.Info("tracking enabled")
		}
	}

	if cfg.RedisUrl != "" {
		facetCache, err := cache.NewCache(cfg.RedisUrl, cfg.RedisPassword, cfg.CacheTtl)
		if err != nil {
			logger.Error("facet cache disabled", zap.Error(err))
		} else {
			search = endpoint.NewCachedEndpoint(search, facetCache, cfg.CacheTtl, logger.Named("cache"))
			hooks = append(hooks, func(ctx context.Context) error {
				return facetCache.Close()
			})
			logger.Info("facet cache enabled", zap.String("redis", facetCache.Addr), zap.Int("db", facetCache.DB), zap.Duration("ttl", cfg.CacheTtl))
		}
	}

	if *enableProfiling {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/debug/pprof/", pprof.Index)
			mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
			mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
			if err := http.ListenAndServe(*debugAddress, mux); err != nil {
				logger.Error("profiling server stopped", zap.Error(err))
			}
		}()
	}

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       10 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	srv := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(search, logger.Named("server")).Handler(),
	}, timeouts)

	common.RunServerWithShutdown(srv, logger, "facet-probe", timeouts, hooks...)
}
