package cmd

import (
	"fmt"
	"log"

	"waxcrate/config"
	"waxcrate/db"
	"waxcrate/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Connect to the database and create or update the records, genres and tracks tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(&model.Record{}, &model.Genre{}, &model.Track{}); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		fmt.Println("Migration completed.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
