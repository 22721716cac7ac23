package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	composeFile string
	verbose     bool
	version     = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "regnet-runner",
	Short: "Disposable bitcoin regtest environments for integration tests",
	Long: `Regnet Runner stands up and tears down a multi-service bitcoin regtest
environment (core node, indexer, peer nodes) with docker compose, and exposes
blockchain-manipulation primitives — mine blocks, fund an address, send a
payment — to drive integration tests against it.`,
	Version: version,
	// Invoking without a command is an error, not a help screen with exit 0
	RunE: func(cmd *cobra.Command, args []string) error {
		return errors.New("a command is required")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./regnet.yaml)")
	rootCmd.PersistentFlags().StringVarP(&composeFile, "compose-file", "f", "", "orchestration descriptor (default is ./docker-compose.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(fundCmd)
	rootCmd.AddCommand(sendCmd)
}

// Commands are defined in separate files:
// - startCmd in start.go
// - stopCmd in stop.go
// - mineCmd in mine.go
// - fundCmd in fund.go
// - sendCmd in send.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
