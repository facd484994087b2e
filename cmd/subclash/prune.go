package main

import (
	"strconv"

	"subclash/internal/db"
	"subclash/internal/history"
	"subclash/internal/logger"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune [limit]",
	Short: "Shrink the history database to a specific size",
	Long: `Deletes the oldest conversion records until at most limit remain.
If no limit is provided, the 'max_records' value from config.yaml is used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.Database.Path == "" {
			logger.Log.Fatal("History is disabled: set database.path in config.yaml")
		}

		limit := cfg.Database.MaxRecords
		if len(args) > 0 {
			val, err := strconv.Atoi(args[0])
			if err != nil || val < 0 {
				logger.Log.Fatalf("Invalid limit argument: %q", args[0])
			}
			limit = val
			logger.Log.Infof("Pruning target manually set to: %d", limit)
		}

		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			logger.Log.Fatalf("Error connecting to DB: %v", err)
		}
		defer db.Close(database)

		n, err := history.NewStore(database).Prune(limit)
		if err != nil {
			logger.Log.Errorf("Pruning failed: %v", err)
			return
		}
		logger.Log.Infof("History maintenance complete: %d removed.", n)
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
