package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"responseops-sim/internal/admin"
	"responseops-sim/internal/config"
	"responseops-sim/internal/logging"
	"responseops-sim/internal/metrics"
	"responseops-sim/internal/sim"
	"responseops-sim/internal/store"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simDataDir    string
	simEphemeral  bool
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time command console simulator",
	Long:  "simulate starts the emergency response console: the tick loop, the admin UI, and the configured telemetry writers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New()
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		writer, cleanup, err := newWriters(cfg, simPrintOnly, simTUI, simLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		var st store.Store
		if !simEphemeral {
			fs, err := store.NewFileStore(simDataDir)
			if err != nil {
				return err
			}
			st = fs
		}

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		collectors := metrics.New()
		simulator := sim.NewSimulator(cfg, writer, st, tickInterval, collectors)

		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		srv := admin.NewServer(simulator, collectors)
		go func() {
			log.Info("admin UI listening", "addr", simAdminAddr)
			if err := srv.Start(simAdminAddr); err != nil {
				log.Error("admin server failed", "err", err)
				os.Exit(1)
			}
		}()

		go simulator.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		simulator.Persist()
		log.Info("console simulation stopped")
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render the console as a terminal UI")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to console configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", time.Second, "Simulation tick interval (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry/event/alert logs (JSONL)")
	simulateCmd.Flags().StringVar(&simDataDir, "data-dir", "data", "Directory for persisted console state")
	simulateCmd.Flags().BoolVar(&simEphemeral, "ephemeral", false, "Run without persistence; nothing touches disk")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin UI listen address")
}
