package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"subclash/internal/db"
	"subclash/internal/fetch"
	"subclash/internal/history"
	"subclash/internal/httpapi"
	"subclash/internal/logger"
	"subclash/internal/metrics"

	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP server",
	Long: `Serves GET /{mode}/{subscription-url}, where mode is whitelist or blacklist.
The subscription is fetched, every ss:// and vmess:// link is decoded, and a Clash
YAML document is returned. /healthz and /metrics are served alongside.

History is recorded to sqlite when database.path is set in config.yaml.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if serveListen != "" {
			cfg.Server.Listen = serveListen
		}

		fetcher, err := fetch.New(fetch.Options{
			UserAgent:    cfg.Fetch.UserAgent,
			Timeout:      cfg.Fetch.Timeout,
			MaxBytes:     cfg.Fetch.MaxBytes,
			MaxRedirects: cfg.Fetch.MaxRedirects,
			ProxyURL:     cfg.Fetch.Proxy,
		})
		if err != nil {
			logger.Log.Fatalf("Error configuring fetcher: %v", err)
		}

		opt := httpapi.Options{
			ConvertTimeout: cfg.Server.ConvertTimeout,
			CacheMaxAge:    cfg.Server.CacheMaxAge,
			Fetcher:        fetcher,
			Metrics:        metrics.New(),
		}

		if cfg.Database.Path != "" {
			database, err := db.Open(cfg.Database.Path)
			if err != nil {
				logger.Log.Fatalf("Error opening history database: %v", err)
			}
			defer db.Close(database)
			store := history.NewStore(database)
			opt.History = store

			if n, err := store.Prune(cfg.Database.MaxRecords); err != nil {
				logger.Log.Warnf("Startup prune failed: %v", err)
			} else if n > 0 {
				logger.Log.Infof("Pruned %d old history records", n)
			}
		}

		srv := &http.Server{
			Addr:              cfg.Server.Listen,
			Handler:           httpapi.NewHandler(opt),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		}

		logger.Log.Infof("Listening on http://%s", cfg.Server.Listen)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			logger.Log.Info("Shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shCtx); err != nil {
				logger.Log.Warnf("Graceful shutdown failed: %v", err)
				_ = srv.Close()
			}

			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Errorf("Server error: %v", err)
			}
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Errorf("Server error: %v", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}
