package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cartera/internal/config"
	"cartera/internal/httpapi"
	"cartera/internal/market"
	"cartera/internal/store"
	"cartera/internal/util"
)

func main() {
	cfgPath := "config/cartera.yaml"
	if p := os.Getenv("CARTERA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var st store.Store
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		st, err = store.NewJSONStore(cfg.Storage.JSONPath, logger)
	case config.BackendSQLite:
		st, err = store.NewSQLiteStore(cfg.Storage.SQLitePath, logger)
	case config.BackendSupabase:
		st, err = store.NewSupabaseStore(ctx, cfg.Supabase.URL, cfg.Supabase.Key, logger)
	default:
		log.Fatalf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		log.Fatalf("opening %s store: %v", cfg.Storage.Backend, err)
	}
	defer st.Close()

	var provider market.Provider
	switch cfg.Market.Provider {
	case config.ProviderYahoo:
		provider = market.NewYahooProvider()
	case config.ProviderAlpaca:
		provider = market.NewAlpacaProvider(cfg.Market.Alpaca.APIKey, cfg.Market.Alpaca.APISecret, cfg.Market.Alpaca.DataURL)
	case config.ProviderStatic:
		provider = market.NewStaticProvider()
	default:
		log.Fatalf("unknown market provider %q", cfg.Market.Provider)
	}
	gateway := market.NewService(provider, market.Options{
		CacheTTL:        time.Duration(cfg.Market.CacheTTLSeconds) * time.Second,
		RateLimitPerMin: cfg.Market.RateLimitPerMin,
	}, logger)

	srv := httpapi.NewServer(st, gateway, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("cartera server listening",
			"addr", httpServer.Addr,
			"backend", cfg.Storage.Backend,
			"provider", provider.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down cartera server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
