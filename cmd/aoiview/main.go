package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/evhagen/aoiview/internal/auth"
	"github.com/evhagen/aoiview/internal/cache/memstore"
	"github.com/evhagen/aoiview/internal/core/config"
	"github.com/evhagen/aoiview/internal/core/httpclient"
	"github.com/evhagen/aoiview/internal/core/observability"
	"github.com/evhagen/aoiview/internal/core/router"
	"github.com/evhagen/aoiview/internal/core/server"
	"github.com/evhagen/aoiview/internal/logger"
	"github.com/evhagen/aoiview/internal/store"
	"github.com/evhagen/aoiview/internal/wms"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load(".env")

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "aoiview",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting aoiview",
		"addr", cfg.Addr,
		"version", Version,
		"wms", cfg.WMSURL,
		"db", cfg.DBPath)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		appLog.Error("open store", "err", err)
		return 1
	}

	wmsClient, err := wms.NewClient(appLog, httpclient.NewOutbound(cfg.UpstreamTimeout), cfg.WMSURL, cfg.UpstreamTimeout, cfg.CapabilitiesTTL)
	if err != nil {
		appLog.Error("wms client", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	featureCache := memstore.New(cfg.CacheTTL, cfg.CacheMaxSize)
	go featureCache.Run(ctx, cfg.CacheSweepInterval)

	authMgr := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	handlers := router.New(appLog, cfg, st, featureCache, wmsClient, authMgr)
	routes := server.Routes(cfg, appLog, handlers, authMgr, st)

	if err := server.Run(ctx, cfg, appLog, routes); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
