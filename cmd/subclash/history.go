package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"subclash/internal/db"
	"subclash/internal/history"
	"subclash/internal/logger"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyCSV   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions",
	Long:  `Lists the most recent conversions recorded in the history database, newest first.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.Database.Path == "" {
			logger.Log.Fatal("History is disabled: set database.path in config.yaml")
		}

		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			logger.Log.Fatalf("Error connecting to DB: %v", err)
		}
		defer db.Close(database)

		store := history.NewStore(database)
		recs, err := store.Recent(historyLimit)
		if err != nil {
			logger.Log.Fatalf("Error reading history: %v", err)
		}

		if historyCSV {
			if err := gocsv.Marshal(recs, os.Stdout); err != nil {
				logger.Log.Fatalf("Error writing csv: %v", err)
			}
			return
		}

		total, err := store.Count()
		if err != nil {
			logger.Log.Fatalf("Error counting history: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		color.New(color.FgCyan, color.Bold).Fprintf(w, "[ HISTORY ] %d of %d\n", len(recs), total)
		fmt.Fprintln(w, "  TIME\tMODE\tHOST\tRESULT\tPROXIES\tDROPPED\tDURATION\t")
		for _, r := range recs {
			result := color.GreenString("%d", r.Status)
			if !r.Succeeded() {
				result = color.RedString("%d %s", r.Status, r.Code)
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%d\t%d\t%dms\t\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.Mode, r.SourceHost, result, r.Proxies, r.Dropped, r.DurationMS)
		}
		w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")
	historyCmd.Flags().BoolVar(&historyCSV, "csv", false, "write records as csv")
	rootCmd.AddCommand(historyCmd)
}
