package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scriptbot",
	Short: "scriptbot is a Discord bot for searching Roblox scripts",
	Long: `scriptbot is a Discord bot that searches the ScriptBlox and Rscripts
catalogues and presents the results as paged, button-driven cards.

It answers both prefix commands (for example "!search arsenal") and slash
commands, and keeps at most one active search per user.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(versionCmd)
}
