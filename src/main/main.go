package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"auto-copy/src/clipboard"
	"auto-copy/src/config"
	"auto-copy/src/eventloop"
	"auto-copy/src/logutil"
	"auto-copy/src/selection"
	"auto-copy/src/singleinstance"
	"auto-copy/src/tray"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version string

type mainOptions struct {
	logLevel    string
	envFile     string
	noTray      bool
	fileLogging bool
}

var longFlags = []string{"log-level", "env-file", "no-tray", "file-logging"}

// normalizeLegacyArgs maps Go-style -flag[=v] to --flag[=v] for our long flags.
func normalizeLegacyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		for _, name := range longFlags {
			single := "-" + name
			if out[i] == single || strings.HasPrefix(out[i], single+"=") {
				out[i] = "-" + out[i]
				break
			}
		}
	}
	return out
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-copy",
		Short: "Copy selected text to the clipboard",
		Long: `auto-copy watches the text selection and copies it to the clipboard
every time it changes. It runs until interrupted or quit from the tray.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "path to a .env configuration file")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "run without a tray icon")
	cmd.Flags().BoolVar(&opts.fileLogging, "file-logging", false, "also write logs to "+logutil.LogFileName)

	cmd.AddCommand(
		newControlCmd(opts, "pause", "Pause copying in the running instance", singleinstance.CmdPause),
		newControlCmd(opts, "resume", "Resume copying in the running instance", singleinstance.CmdResume),
		newControlCmd(opts, "status", "Show whether the running instance is copying", singleinstance.CmdStatus),
	)
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			v := Version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "auto-copy %s (%s/%s)\n", v, runtime.GOOS, runtime.GOARCH)
		},
	})
	return cmd
}

// newControlCmd sends one command to the resident instance and prints its reply.
func newControlCmd(opts *mainOptions, use, short, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(config.LoadOptions{EnvFileOverride: opts.envFile})
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			resp, err := singleinstance.NewClient(cfg.ControlPort).Send(ctx, command)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.ToLower(resp))
			return nil
		},
	}
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, opts *mainOptions, cfg *config.Config) {
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if cmd.Flags().Changed("no-tray") {
		cfg.EnableTray = !opts.noTray
	}
	if cmd.Flags().Changed("file-logging") {
		cfg.EnableFileLogging = opts.fileLogging
	}
}

func run(cmd *cobra.Command, opts *mainOptions) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvFileOverride: opts.envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd, opts, cfg)

	logger, err := logutil.Setup(logutil.Options{Level: cfg.LogLevel, EnableFileLogging: cfg.EnableFileLogging})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if err := clipboard.Init(); err != nil {
		// Every copy will fail and log the same error; keep running anyway.
		logger.Warn().Err(err).Msg("clipboard not available")
	}
	if !(selection.PrimaryReader{}).Supported() {
		// Selections are read as empty; nothing will be copied.
		logger.Warn().Err(selection.ErrUnsupported).Msg("selection not readable")
	}
	logger.Info().
		Str("env_file", cfg.EnvFile).
		Bool("tray", cfg.EnableTray).
		Int("min_drag_px", cfg.MinDragPixels).
		Msg("auto-copy starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loop := eventloop.New(cfg, eventloop.Deps{Logger: &logger})

	srv := singleinstance.NewServer(cfg.ControlPort, loop)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Close()
	logger.Debug().Int("control_port", srv.Port()).Msg("control port bound")

	if !cfg.EnableTray {
		return stopped(loop.Run(ctx), logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(ctx)
		cancel()
	}()

	t := tray.New(tray.Config{
		IsPaused: loop.Paused,
		OnToggle: loop.SetPaused,
		OnExit:   cancel,
	})
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
	cancel()
	return stopped(<-errCh, logger)
}

func stopped(err error, logger zerolog.Logger) error {
	if err == nil || errors.Is(err, context.Canceled) {
		logger.Info().Msg("auto-copy stopped")
		return nil
	}
	return fmt.Errorf("event loop stopped: %w", err)
}

func main() {
	// The tray needs the main OS thread on macOS.
	runtime.LockOSThread()

	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
