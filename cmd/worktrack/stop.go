package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/daemon"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		pid, err := daemon.New(cfg.Daemon.PIDFile).Stop()
		if errors.Is(err, daemon.ErrNotRunning) {
			fmt.Println("Agent is not running")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stop agent: %w", err)
		}

		fmt.Printf("Sent SIGTERM to agent (PID: %d)\n", pid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
