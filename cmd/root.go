// Package cmd implements the CLI commands for invoicepdf using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "invoicepdf",
	Short: "invoicepdf turns invoice JSON payloads into PDF documents",
	Long: `invoicepdf normalizes loosely-shaped invoice payloads, lays them out as a
branded A4 document and prints them to PDF.

Usage:
  invoicepdf serve [flags]
  invoicepdf render <payload.json> [flags]`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
