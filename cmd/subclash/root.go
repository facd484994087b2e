package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"subclash/internal/config"
	"subclash/internal/logger"
)

var cfgFile string
var verbose bool
var logFile string
var logFormat string

var rootCmd = &cobra.Command{
	Use:   "subclash",
	Short: "Convert ss:// and vmess:// subscriptions into Clash configurations",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{Verbose: verbose, Path: logFile, Format: logFormat})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config or exits.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr (overwrites file)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatConsole, "Log encoding: console or json")
}
