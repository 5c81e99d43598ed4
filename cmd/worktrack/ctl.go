package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/web"
	"github.com/actionsum/worktrack/pkg/utils"
)

var ctlCmd = &cobra.Command{
	Use:   "ctl",
	Short: "Drive the running agent through its control API",
}

var ctlStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a tracking session",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		started, err := c.Start(ctx)
		if err != nil {
			return err
		}
		if started {
			fmt.Println("Tracking started")
		} else {
			fmt.Println("Already tracking")
		}
		return nil
	}),
}

var ctlStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the tracking session",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		elapsed, err := c.Stop(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Tracking stopped after %s\n", utils.FormatClock(elapsed))
		return nil
	}),
}

var ctlResumeCmd = &cobra.Command{
	Use:   "resume <elapsed-seconds>",
	Short: "Start a session that continues from a previously reported elapsed time",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		elapsed, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid elapsed seconds %q: %w", args[0], err)
		}
		started, err := c.Resume(ctx, elapsed)
		if err != nil {
			return err
		}
		if started {
			fmt.Printf("Tracking resumed at %s\n", utils.FormatClock(elapsed))
		} else {
			fmt.Println("Already tracking")
		}
		return nil
	}),
}

var ctlElapsedCmd = &cobra.Command{
	Use:   "elapsed",
	Short: "Print elapsed seconds of the current or last session",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		elapsed, err := c.Elapsed(ctx)
		if err != nil {
			return err
		}
		fmt.Println(elapsed)
		return nil
	}),
}

var ctlTickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one monitor tick (requires tracker.internal_poll=false)",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		rec, err := c.Tick(ctx)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Println("No record")
			return nil
		}
		fmt.Printf("%s\t%ds\tidle %ds\t%s\n", rec.App, rec.Duration, rec.IdleDuration, rec.Timestamp.Format(time.RFC3339))
		return nil
	}),
}

var ctlTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the upload bearer token",
}

var ctlTokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Set the bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		if err := c.SetToken(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Token set")
		return nil
	}),
}

var ctlTokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the bearer token",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *web.Client, args []string) error {
		if err := c.ClearToken(ctx); err != nil {
			return err
		}
		fmt.Println("Token cleared")
		return nil
	}),
}

func init() {
	ctlTokenCmd.AddCommand(ctlTokenSetCmd, ctlTokenClearCmd)
	ctlCmd.AddCommand(ctlStartCmd, ctlStopCmd, ctlResumeCmd, ctlElapsedCmd, ctlTickCmd, ctlTokenCmd)
	rootCmd.AddCommand(ctlCmd)
}

func withClient(fn func(ctx context.Context, c *web.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := controlClient()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), c, args)
	}
}
