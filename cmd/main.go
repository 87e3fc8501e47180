package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "auditrelay",
	Short: "Single-guild Discord audit log relay",
	Long: `auditrelay watches one Discord server and posts a message to a
private audit channel for every moderation, membership, message and
configuration change it can attribute.`,
	SilenceUsage: true,
	// Running the bare binary starts the relay.
	RunE: runRelay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "auditrelay.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
