package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/daemon"
	"github.com/actionsum/worktrack/internal/web"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent and tracking session status",
	RunE:  showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	running, pid, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check agent status: %w", err)
	}
	if running {
		fmt.Printf("Agent:       %s (PID: %d)\n", green("running"), pid)
	} else {
		fmt.Printf("Agent:       %s\n", red("not running"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := web.NewClient(cfg.WebAddress()).Status(ctx)
	if errors.Is(err, web.ErrNotRunning) {
		fmt.Printf("Control API: %s\n", faint("unreachable at "+cfg.WebAddress()))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Control API: http://%s\n", cfg.WebAddress())

	fmt.Println()
	if st.Session.IsTracking {
		fmt.Printf("Tracking:    %s (session %s)\n", green("on"), st.Session.ID)
	} else {
		fmt.Printf("Tracking:    %s\n", yellow("off"))
	}
	fmt.Printf("Elapsed:     %s\n", st.Elapsed)
	if st.Session.CurrentApp != "" {
		fmt.Printf("Current app: %s (since %s)\n", st.Session.CurrentApp, st.Session.AppStartTime.Local().Format(time.TimeOnly))
	}
	if st.Session.AccumulatedIdle > 0 {
		fmt.Printf("Idle:        %ds\n", st.Session.AccumulatedIdle)
	}

	fmt.Println()
	switch {
	case st.Session.ScreenshotEnabled:
		fmt.Printf("Screenshots: %s\n", green("enabled"))
	case st.Worker.LastFailureKind != "":
		fmt.Printf("Screenshots: %s after %s failure: %s\n", red("stopped"), st.Worker.LastFailureKind, st.Worker.LastError)
	default:
		fmt.Printf("Screenshots: %s\n", yellow("disabled"))
	}
	if st.TokenSet {
		fmt.Printf("Auth token:  %s\n", green("set"))
	} else {
		fmt.Printf("Auth token:  %s\n", yellow("not set"))
	}

	return nil
}
