package main

import (
	"context"
	"errors"
	"os"
	"time"

	"subclash/internal/clash"
	"subclash/internal/convert"
	"subclash/internal/db"
	"subclash/internal/fetch"
	"subclash/internal/history"
	"subclash/internal/logger"
	"subclash/internal/metrics"
	"subclash/internal/model"
	"subclash/internal/sources"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	convertMode    string
	convertOut     string
	convertWorkers int
	convertRecord  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [sources...]",
	Short: "Convert subscriptions into a Clash configuration",
	Long: `Reads every source (http(s) URL, local file, or - for stdin), joins the
decoded links in argument order and writes one Clash document.
With no sources, stdin is read.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(args) == 0 {
			args = []string{"-"}
		}
		mode := clash.ParseMode(convertMode)
		if convertMode != string(clash.Blacklist) && convertMode != string(clash.Whitelist) {
			logger.Log.Warnf("Unknown mode %q, using whitelist rules", convertMode)
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

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ConvertTimeout)
		defer cancel()

		var onDone func()
		if len(args) > 1 {
			bar := progressbar.NewOptions(len(args),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(15),
				progressbar.OptionSetDescription("[cyan]Reading sources...[reset]"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
			onDone = func() { _ = bar.Add(1) }
			defer bar.Finish()
		}

		start := time.Now()
		deps := sources.Deps{Fetcher: fetcher, Stdin: os.Stdin}
		body, err := sources.ReadAll(ctx, args, deps, convertWorkers, onDone)
		if err != nil {
			logger.Log.Fatalf("Error reading sources: %v", err)
		}

		rec := model.Conversion{Mode: mode.String(), SourceHost: history.HostOf(args[0])}
		res, err := convert.Convert(body, mode)
		rec.Proxies = res.Proxies
		rec.Dropped = len(res.Dropped)
		for _, d := range res.Dropped {
			logger.Log.Debugf("Line %d dropped: %s", d.Line, d.Reason)
		}

		if err != nil {
			rec.Code = "NO_VALID_PROXIES"
			recordConversion(cfg.Database.Path, rec, start)
			if errors.Is(err, convert.ErrEmptySubscription) {
				logger.Log.Fatalf("No valid proxies found in %d source(s)", len(args))
			}
			logger.Log.Fatalf("Conversion failed: %v", err)
		}

		out, err := clash.Marshal(res.Config)
		if err != nil {
			logger.Log.Fatalf("Error rendering yaml: %v", err)
		}

		if convertOut == "" || convertOut == "-" {
			_, err = os.Stdout.Write(out)
		} else {
			err = os.WriteFile(convertOut, out, 0644)
		}
		if err != nil {
			logger.Log.Fatalf("Error writing output: %v", err)
		}

		rec.Status = 200
		recordConversion(cfg.Database.Path, rec, start)

		m := metrics.New()
		drops := make(map[string]int)
		for k, n := range res.DropsByKind() {
			drops[k.String()] = n
		}
		m.RecordConversion(mode.String(), res.Proxies, drops, time.Since(start))
		m.PrintReport(os.Stderr)
	},
}

// recordConversion stores c when history is enabled and requested.
func recordConversion(dbPath string, c model.Conversion, start time.Time) {
	if !convertRecord || dbPath == "" {
		return
	}
	c.DurationMS = time.Since(start).Milliseconds()

	database, err := db.Open(dbPath)
	if err != nil {
		logger.Log.Warnf("History disabled: %v", err)
		return
	}
	defer db.Close(database)

	if err := history.NewStore(database).Record(context.Background(), c); err != nil {
		logger.Log.Warnf("Recording conversion failed: %v", err)
	}
}

func init() {
	convertCmd.Flags().StringVarP(&convertMode, "mode", "m", "whitelist", "rule mode: whitelist or blacklist")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output file (default stdout)")
	convertCmd.Flags().IntVarP(&convertWorkers, "workers", "w", 4, "concurrent source reads")
	convertCmd.Flags().BoolVar(&convertRecord, "record", false, "record the conversion in the history database")
	rootCmd.AddCommand(convertCmd)
}
