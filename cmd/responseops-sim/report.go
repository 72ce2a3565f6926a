package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"responseops-sim/internal/config"
	"responseops-sim/internal/metrics"
	"responseops-sim/internal/report"
	"responseops-sim/internal/sim"
	"responseops-sim/internal/store"
)

var (
	reportConfigPath string
	reportSchemaPath string
	reportDataDir    string
	reportFormat     string
	reportOut        string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export an operations report from persisted console state",
	Long:  "report loads the persisted console snapshot and writes an operations report as PDF or XLSX.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(reportConfigPath, reportSchemaPath)
		if err != nil {
			return err
		}
		st, err := store.NewFileStore(reportDataDir)
		if err != nil {
			return err
		}
		simulator := sim.NewSimulator(cfg, nil, st, time.Second, metrics.New())
		op := report.FromSimulator(simulator, time.Now())

		var blob []byte
		switch reportFormat {
		case "xlsx":
			blob, err = report.BuildOperationsXLSX(op)
		case "pdf":
			blob, err = report.BuildOperationsPDF(op)
		default:
			return fmt.Errorf("unknown report format %q", reportFormat)
		}
		if err != nil {
			return err
		}

		out := reportOut
		if out == "" {
			out = "operations-report." + reportFormat
		}
		if err := os.WriteFile(out, blob, 0o644); err != nil {
			return err
		}
		fmt.Println("report written to", out)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportConfigPath, "config", "config/simulation.yaml", "Path to console configuration YAML")
	reportCmd.Flags().StringVar(&reportSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	reportCmd.Flags().StringVar(&reportDataDir, "data-dir", "data", "Directory with persisted console state")
	reportCmd.Flags().StringVar(&reportFormat, "format", "pdf", "Report format: pdf or xlsx")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Output file (defaults to operations-report.<format>)")
}
