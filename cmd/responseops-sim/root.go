package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "responseops-sim",
	Short: "Emergency response command console simulator",
	Long:  "ResponseOps-Sim runs a simulated emergency command console: incident intake, drone dispatch, live telemetry, and anomaly monitoring.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(reportCmd)
}
