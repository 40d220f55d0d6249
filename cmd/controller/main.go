// Package main provides the game controller CLI entry point.
// The controller accepts one emulator connection over TCP, asks a vision
// model what to do with each screenshot, and sends button presses back.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/martoast/gemini-plays-pokemon/internal/config"
	"github.com/martoast/gemini-plays-pokemon/internal/engine"
	"github.com/martoast/gemini-plays-pokemon/internal/llm"
	"github.com/martoast/gemini-plays-pokemon/internal/logger"
	"github.com/martoast/gemini-plays-pokemon/internal/memory"
	"github.com/martoast/gemini-plays-pokemon/internal/server"
	"github.com/martoast/gemini-plays-pokemon/internal/version"
)

var (
	configPath      string
	logLevel        string
	logFile         string
	simInterval     time.Duration
	detailedVersion bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "controller",
	Short: "AI game controller for a Game Boy emulator",
	Long: `Controller runs a decision server that plays Pokemon through a connected
emulator. The emulator reports each captured screenshot over TCP; the
controller asks a vision model for the next move and answers with a button
press.`,
	Run: runController, // Default behavior is to run the decision server
}

// runCmd represents the run command (explicit version of default behavior)
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the decision server",
	Long:  `Start the TCP decision server and wait for the emulator to connect.`,
	Run:   runController,
}

// simulateCmd stands in for the model-backed server during emulator bring-up
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted decision server for testing",
	Long: `Run a decision server that sends a scripted button stream instead of
consulting a model. Useful for testing the emulator-side connection without
spending API quota.`,
	Run: runSimulator,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of the controller.`,
	Run: func(_ *cobra.Command, _ []string) {
		if detailedVersion {
			fmt.Println(version.GetDetailedVersion())
			return
		}
		fmt.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	simulateCmd.Flags().DurationVar(&simInterval, "interval", 2*time.Second, "Delay between scripted button presses")
	versionCmd.Flags().BoolVar(&detailedVersion, "detailed", false, "Show detailed build information")

	// Bind flags to viper
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding config flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogger)
}

func initLogger() {
	if err := logger.Configure(logLevel, logFile, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runController(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", "path", configPath, "error", err)
	}
	if cfg.Debug {
		if err := logger.Configure(logLevel, logFile, true); err != nil {
			logger.Fatal("Failed to reconfigure logger", "error", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrPlaceholderAPIKey) {
			logger.Fatal("No API key configured; refusing to start", "error", err)
		}
		logger.Fatal("Invalid configuration", "error", err)
	}

	logger.Banner("Pokemon Game Controller")
	logger.Info("Starting controller", "version", version.GetVersion())
	logger.Info("Configuration loaded",
		"provider", cfg.Provider,
		"model", cfg.ModelName,
		"api_key", logger.MaskKey(cfg.APIKey),
		"addr", cfg.Addr(),
		"cooldown", cfg.Cooldown(),
		"notepad", cfg.NotepadPath,
		"comparison_dir", cfg.ComparisonDir)

	notepad := memory.NewNotepad(memory.NewFileStore(cfg.NotepadPath), cfg.NotepadMaxChars, cfg.Debug)
	if err := notepad.Initialize(); err != nil {
		logger.Fatal("Failed to initialize notepad", "path", cfg.NotepadPath, "error", err)
	}
	thinking := memory.NewThinkingHistory(memory.NewFileStore(cfg.ThinkingHistoryPath), cfg.ThinkingHistoryMaxChars, cfg.ThinkingHistoryKeepEntries)
	if err := thinking.Initialize(); err != nil {
		logger.Fatal("Failed to initialize thinking history", "path", cfg.ThinkingHistoryPath, "error", err)
	}
	comparison := memory.NewComparison(cfg.ComparisonDir)

	backend, err := llm.NewClient(cfg.Provider, cfg.APIKey, cfg.ModelName)
	if err != nil {
		logger.Fatal("Failed to create model client", "provider", cfg.Provider, "error", err)
	}
	if cfg.Debug {
		backend.SetDebugTransport(llm.NewDebugTransport())
	}

	eng := engine.New(backend, notepad, thinking, comparison, cfg.Cooldown())

	registry := server.NewRegistry()
	srv := server.New(cfg.Addr(), eng, registry)
	if err := srv.Listen(); err != nil {
		logger.Fatal("Failed to start server", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	logger.Info("Waiting for emulator connection", "addr", srv.Addr())
	if err := srv.Serve(ctx); err != nil {
		logger.Fatal("Server failed", "error", err)
	}
}

func runSimulator(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", "path", configPath, "error", err)
	}

	logger.Banner("Scripted Decision Server")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sim := server.NewSimulator(cfg.Addr(), simInterval)
	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Simulator failed", "error", err)
	}
}
