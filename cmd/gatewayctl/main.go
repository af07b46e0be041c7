// Command gatewayctl runs database maintenance against the gateway's
// configured MySQL database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/onurcolak/messaging-gateway/environments"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "gatewayctl",
	Short:         "Messaging gateway administration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(loadConfig().Log)
	},
}

var cfg *environments.Config

// loadConfig reads the environment once per process.
func loadConfig() *environments.Config {
	if cfg == nil {
		cfg = environments.Load()
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
