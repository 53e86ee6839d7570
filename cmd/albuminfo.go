package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"waxcrate/config"
	"waxcrate/core/albuminfo"

	"github.com/spf13/cobra"
)

var albuminfoCmd = &cobra.Command{
	Use:   "albuminfo [artist] [title]",
	Short: "Look up album art and review links",
	Long:  `Query Discogs and Last.fm for a release and print the resulting URLs as JSON.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		svc := albuminfo.NewService(cfg)

		info := svc.Lookup(context.Background(), args[0], args[1])

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(albuminfoCmd)
}
