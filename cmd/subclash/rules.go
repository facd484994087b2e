package main

import (
	"fmt"
	"strings"

	"subclash/internal/clash"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesProviders bool

var rulesCmd = &cobra.Command{
	Use:   "rules [mode]",
	Short: "Print the rule list for a mode",
	Long: `Prints the rules emitted for whitelist (default) or blacklist mode, in order.
With --providers the rule-provider table is listed as well.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode := clash.Whitelist
		if len(args) > 0 {
			mode = clash.ParseMode(args[0])
		}

		out := cmd.OutOrStdout()
		color.New(color.FgCyan, color.Bold).Fprintf(out, "[ %s RULES ]\n", strings.ToUpper(mode.String()))
		for i, r := range clash.RulesFor(mode) {
			fmt.Fprintf(out, "  %2d. %s\n", i+1, colorRule(r))
		}

		if !rulesProviders {
			return
		}
		fmt.Fprintln(out)
		color.New(color.FgCyan, color.Bold).Fprintln(out, "[ RULE PROVIDERS ]")
		for _, p := range clash.Providers() {
			fmt.Fprintf(out, "  %-14s %-9s %s\n", p.Name, p.Provider.Behavior, p.Provider.URL)
		}
	},
}

// colorRule highlights the target of a rule line.
func colorRule(rule string) string {
	i := strings.LastIndex(rule, ",")
	if i < 0 {
		return rule
	}
	head, target := rule[:i+1], rule[i+1:]
	switch target {
	case clash.GroupName:
		target = color.GreenString(target)
	case "DIRECT":
		target = color.CyanString(target)
	case "REJECT":
		target = color.RedString(target)
	}
	return head + target
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesProviders, "providers", false, "also list rule providers")
	rootCmd.AddCommand(rulesCmd)
}
