// Command server runs an in-memory copy of the EcoTrails admin API for local
// development. Point the console at it with -server http://localhost:8080/api/api.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrylevesque/ecoadmin/internal/config"
	"github.com/harrylevesque/ecoadmin/internal/devserver"
	"github.com/harrylevesque/ecoadmin/internal/metrics"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ecoadmin.yaml when present)")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	seedFile := flag.String("seed", "", "YAML seed file (overrides server.seed_file)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *seedFile != "" {
		cfg.Server.SeedFile = *seedFile
	}
	logger := utils.NewStderrLogger(cfg.Level())

	seed, err := loadSeed(cfg.Server.SeedFile)
	if err != nil {
		logger.Error("failed to load seed", "error", err)
		os.Exit(1)
	}
	store, accounts, err := devserver.Populate(seed, cfg.Server.AdminEmail, cfg.Server.AdminPassword)
	if err != nil {
		logger.Error("failed to populate store", "error", err)
		os.Exit(1)
	}

	srv := devserver.New(store, accounts, devserver.WithLogger(logger), devserver.WithMetrics(metrics.New("ecoadmin")))
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()

	logger.Info("dev API server running", "addr", cfg.Server.Addr, "prefix", devserver.APIPrefix, "admin", cfg.Server.AdminEmail)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadSeed(path string) (devserver.Seed, error) {
	if path == "" {
		return devserver.DefaultSeed()
	}
	return devserver.LoadSeed(utils.ResolvePath(path))
}
