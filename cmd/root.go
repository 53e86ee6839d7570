package cmd

import (
	"fmt"
	"os"

	"waxcrate/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waxcrate",
	Short: "Waxcrate is a personal record-collection catalog service.",
	Run: func(cmd *cobra.Command, args []string) {
		// Running without a subcommand starts the HTTP server.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
