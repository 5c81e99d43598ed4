package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/agent"
	"github.com/actionsum/worktrack/internal/auth"
	"github.com/actionsum/worktrack/internal/config"
	"github.com/actionsum/worktrack/internal/daemon"
	"github.com/actionsum/worktrack/internal/database"
	"github.com/actionsum/worktrack/internal/logging"
	"github.com/actionsum/worktrack/internal/reporter"
	"github.com/actionsum/worktrack/internal/screenshot"
	"github.com/actionsum/worktrack/internal/sink"
	"github.com/actionsum/worktrack/internal/systemd"
	"github.com/actionsum/worktrack/internal/tracker"
	"github.com/actionsum/worktrack/internal/web"
	"github.com/actionsum/worktrack/pkg/detector"
	"github.com/actionsum/worktrack/pkg/window"
)

var detach bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tracking agent",
	Long: `Run the tracking agent with its control API. With --detach the agent
re-executes itself in the background and logs to daemon.log_file.`,
	RunE: runAgent,
}

func init() {
	runCmd.Flags().BoolVarP(&detach, "detach", "d", false, "Run the agent in the background")
	rootCmd.AddCommand(runCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check agent status: %w", err)
	}
	if running {
		return fmt.Errorf("agent is already running (PID: %d)", pid)
	}

	if detach && !daemon.IsChild() {
		pid, err := daemon.Detach(os.Args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("Agent started (PID: %d)\n", pid)
		fmt.Printf("Control API: http://%s\n", cfg.WebAddress())
		fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
		return nil
	}

	var out io.Writer = os.Stdout
	if daemon.IsChild() {
		logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()
		out = logFile
	}

	logger := logging.Setup(cfg.Logging, out)
	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting worktrack agent")

	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	return serve(cfg, logger)
}

func serve(cfg *config.Config, logger zerolog.Logger) error {
	clock := clockwork.NewRealClock()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}()
	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if mode, err := db.JournalMode(); err != nil {
		logger.Warn().Err(err).Msg("Failed to read database journal mode")
	} else {
		logger.Debug().Str("path", cfg.Database.Path).Str("journal_mode", mode).Msg("History database ready")
	}
	repo := database.NewRepository(db)

	det, err := detector.New()
	if err != nil {
		logger.Warn().Err(err).Str("display_server", detector.DetectDisplayServer()).
			Msg("No window detector, focused app will be reported as Unknown")
	} else {
		defer det.Close()
		logger.Info().Str("display_server", det.GetDisplayServer()).Msg("Window detector initialized")
	}
	providers := window.NewProviders(det)

	creds := auth.NewCredential()
	if cfg.Auth.Token != "" {
		creds.Set(cfg.Auth.Token)
	}

	launcher := &screenshot.Launcher{
		Tokens:   creds,
		Capturer: window.Grabber(det),
		Uploader: screenshot.NewHTTPUploader(cfg.Screenshots.UploadURL, cfg.Screenshots.Timeout),
		History:  repo,
		Clock:    clock,
		Interval: cfg.Screenshots.Interval,
		Logger:   logging.Component(logger, "screenshot-worker"),
	}
	svc := tracker.NewService(providers, providers, launcher, clock, logger)
	defer svc.Close()

	usageSink, err := sink.New(cfg, creds, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize sink: %w", err)
	}
	defer func() {
		if err := usageSink.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close sink")
		}
	}()
	logger.Info().Str("sink", usageSink.Name()).Msg("Usage sink initialized")

	summary := reporter.New(clock)
	forwarder := agent.NewForwarder(usageSink, summary, logger)

	handler := web.NewHandler(svc, creds, summary, logger).WithHistory(repo)
	if !cfg.Tracker.InternalPoll {
		handler.EnableTick(forwarder.Dispatch)
	}

	server := web.NewServer(cfg.WebAddress(), handler, logger)
	ln, err := systemd.ControlListener()
	if err != nil {
		return err
	}
	if ln != nil {
		server.SetListener(ln)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	pollerDone := make(chan struct{})
	if cfg.Tracker.InternalPoll {
		poller := agent.NewPoller(svc, forwarder.Dispatch, cfg.Tracker.PollInterval, clock, logger)
		go func() {
			defer close(pollerDone)
			_ = poller.Run(ctx)
		}()
	} else {
		close(pollerDone)
		logger.Info().Msg("Internal poll loop disabled, host ticks through the control API")
	}

	if cfg.Tracker.Autostart {
		svc.Start()
	}

	if sent, err := systemd.Ready(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd")
	} else if sent {
		logger.Info().Msg("Notified systemd of readiness")
	}

	logger.Info().Str("addr", server.GetAddress()).Msg("Agent startup complete")
	logger.Debug().Msgf("Configuration:\n%s", cfg.String())

	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("Control API failed")
		}
	}

	if err := systemd.Stopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd")
	}

	stop()
	<-pollerDone
	svc.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down control API")
	}

	logger.Info().Uint64("elapsed", svc.Elapsed()).Msg("Agent stopped")
	return nil
}
