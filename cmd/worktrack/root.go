package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/config"
	"github.com/actionsum/worktrack/internal/web"
)

var (
	version    = "dev"
	buildDate  = "unknown"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "worktrack",
	Short: "worktrack - desktop activity tracker agent",
	Long: `worktrack attributes wall-clock time to the focused application, discounts
idle stretches, and uploads periodic screenshots while a tracking session runs.
The host drives it through a local control API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default ~/.config/worktrack/config.yaml)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func controlClient() (*web.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return web.NewClient(cfg.WebAddress()), nil
}
