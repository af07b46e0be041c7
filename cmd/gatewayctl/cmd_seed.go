package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/onurcolak/messaging-gateway/pkg/database"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample conversations into an empty database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewMySQLDB(loadConfig().Database)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := database.SeedTestData(cmd.Context(), db); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, "Seed complete")
		return nil
	},
}
