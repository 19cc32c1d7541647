package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	config "github.com/harryknee/NewsDiffusion/config"
	gameRecorder "github.com/harryknee/NewsDiffusion/gameRecorder"
	envServer "github.com/harryknee/NewsDiffusion/server"
)

var (
	// Global flags
	configPath string
	seed       uint64
	turns      int
	outputDir  string
	logDir     string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newsdiff",
	Short: "Agent-based simulation of true and false news spreading over a grid",
	Long: `newsdiff places Susceptible and Skeptic users, Bots and NewsReels on a grid
and lets news items spread between neighbours. Each user's perception of the
two parties moves with the news it receives, and users convert between
Susceptible and Skeptic when that perception crosses a threshold.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = buildLogger()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and export CSV and HTML playback",
	RunE:  runSimulation,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and build the initial population without stepping",
	RunE:  validateConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed (overrides config)")
	rootCmd.PersistentFlags().IntVar(&turns, "turns", 0, "turns per iteration (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "also write logs to a timestamped file in this directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd, validateCmd)
}

func buildLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(logDir, "log_"+timestamp+".log"))
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// loadConfig applies command line overrides on top of config.Load.
func loadConfig(cmd *cobra.Command) (config.SimulationConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("turns") {
		cfg.Turns = turns
	}
	if flags.Changed("out") {
		cfg.OutputDir = outputDir
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	serv, err := envServer.MakeEnvServer(cfg, logger)
	if err != nil {
		return err
	}

	serv.Start()
	serv.LogAgentStatus()
	serv.DataRecorder.GamePlaybackSummary(logger)

	csvDir := filepath.Join(cfg.OutputDir, "csv_data", "run_"+serv.DataRecorder.RunID.String())
	if err := gameRecorder.ExportToCSV(serv.DataRecorder, csvDir); err != nil {
		return err
	}
	htmlPath := filepath.Join(cfg.OutputDir, "playback_"+serv.DataRecorder.RunID.String()+".html")
	if err := gameRecorder.CreatePlaybackHTML(serv.DataRecorder, htmlPath); err != nil {
		return err
	}
	logger.Info("run exported", zap.String("csv", csvDir), zap.String("html", htmlPath))
	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	serv, err := envServer.MakeEnvServer(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "configuration ok: %d users, %d sources on a %dx%d grid\n",
		len(serv.UserAgents()), len(serv.Sources()), cfg.Width, cfg.Height)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
