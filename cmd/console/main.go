// Command console is the terminal admin console for the EcoTrails API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrylevesque/ecoadmin/internal/admin"
	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/config"
	"github.com/harrylevesque/ecoadmin/internal/metrics"
	"github.com/harrylevesque/ecoadmin/internal/tui"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ecoadmin.yaml when present)")
	server := flag.String("server", "", "Serve every resource from this API root (e.g. http://localhost:8080/api/api)")
	logFile := flag.String("log", "", "Log file (overrides log_file)")
	timeout := flag.Duration("timeout", -1, "Per-request timeout, 0 for none (overrides request_timeout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Hosts = cfg.Hosts.All(*server)
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *timeout >= 0 {
		cfg.RequestTimeout = *timeout
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger, err := utils.NewLogger(cfg.LogFile, cfg.Level())
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go logger.RotateDaily(ctx)

	collector := metrics.New("ecoadmin")
	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: collector.Handler(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		defer metricsServer.Close()
	}

	client := api.NewClient(api.WithLogger(logger.Logger), api.WithMetrics(collector))
	model := tui.New(tui.Options{
		Backend: client,
		Catalog: admin.NewCatalog(cfg.Hosts),
		Timeout: cfg.RequestTimeout,
		Logger:  logger.Logger,
	})

	logger.Info("console started", "users", cfg.Hosts.Users, "timeout", cfg.RequestTimeout)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
