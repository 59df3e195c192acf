package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "portico",
	Short: "Portico - lightweight API gateway",
	Long: `Portico is a lightweight API gateway that forwards HTTP traffic to
backend services based on a database-backed route table.

It provides:
  - Longest-prefix route matching with an in-memory snapshot cache
  - Per-client token-bucket rate limiting backed by Redis
  - A route management API under /routes
  - Access-log fan-out over Kafka with a live dashboard feed`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
