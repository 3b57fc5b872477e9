package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nomadcxx/mediasort/internal/config"
	"github.com/Nomadcxx/mediasort/internal/daemon"
	"github.com/Nomadcxx/mediasort/internal/logging"
	"github.com/Nomadcxx/mediasort/internal/metadata"
	"github.com/Nomadcxx/mediasort/internal/organizer"
	"github.com/Nomadcxx/mediasort/internal/reporter"
	"github.com/Nomadcxx/mediasort/internal/watcher"
)

const (
	modeWatch = "watch"
	modeSort  = "sort"
	modeCheck = "check"
)

type rootOptions struct {
	configPath string
	dryRun     bool
	sortDir    string
	checkDir   string
	logLevel   string
}

// mode picks check over sort; with neither set mediasort watches
func (o *rootOptions) mode() string {
	switch {
	case o.checkDir != "":
		return modeCheck
	case o.sortDir != "":
		return modeSort
	default:
		return modeWatch
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "mediasort",
		Short: "Sort TV episodes and movies into a media library",
		Long: `mediasort watches an inbox directory and moves each finished file into a
show or movie library, named after the title reported by TVmaze or OMDb.

With --sort it sorts an existing directory once and exits. With --check it
reports where every file would go, and which files would collide, without
touching anything.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "config file (.toml, .yaml or .yml)")
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log what would be moved without changing anything")
	rootCmd.Flags().StringVar(&opts.sortDir, "sort", "", "sort every file under `dir` once and exit")
	rootCmd.Flags().StringVar(&opts.checkDir, "check", "", "report destinations and collisions for `dir` and exit")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.MarkFlagsMutuallyExclusive("sort", "check")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newServiceCommand(opts))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mediasort %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Built:      %s\n", buildTime)
		},
	}
}

// loadConfig reads and validates the config, applying flag overrides
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", opts.configPath, err)
	}
	return cfg, nil
}

func run(ctx context.Context, out io.Writer, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	mode := opts.mode()
	logger = logger.With(
		zap.String(logging.FieldRunID, uuid.NewString()),
		zap.String(logging.FieldMode, mode),
	)

	org, err := newOrganizer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeCheck:
		return runCheck(ctx, out, org, opts.checkDir)
	case modeSort:
		return runSort(ctx, out, cfg, org, logger, opts)
	default:
		return runWatch(ctx, out, cfg, org, logger, opts)
	}
}

// newOrganizer wires the metadata providers and the organizer from cfg
func newOrganizer(cfg *config.Config, logger *zap.Logger) (*organizer.Organizer, error) {
	shows := metadata.NewTVMaze(metadata.ClientOptions{
		BaseURL:           cfg.TVMaze.BaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.TVMaze.RequestsPerSecond,
	})
	movies := metadata.NewOMDb(cfg.OMDb.APIKey, metadata.ClientOptions{
		BaseURL:           cfg.OMDb.BaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.OMDb.RequestsPerSecond,
	})
	resolver := metadata.NewResolver(shows, movies, logger)

	org, err := organizer.New(organizer.Options{
		ShowRoot:  cfg.ShowPath,
		MovieRoot: cfg.MoviePath,
		Overwrite: cfg.Overwrite,
		Mode:      cfg.Permissions.Mode.Perm(),
		User:      cfg.Permissions.User,
		Group:     cfg.Permissions.Group,
	}, resolver, logger)
	if err != nil {
		return nil, fmt.Errorf("init organizer: %w", err)
	}
	return org, nil
}

// runCheck never moves anything, so it runs without the instance lock
func runCheck(ctx context.Context, out io.Writer, org *organizer.Organizer, dir string) error {
	report, err := org.Check(ctx, dir)
	if werr := reporter.WriteCheckReport(out, report); werr != nil {
		return fmt.Errorf("write check report: %w", werr)
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", dir, err)
	}
	return nil
}

func runSort(ctx context.Context, out io.Writer, cfg *config.Config, org *organizer.Organizer, logger *zap.Logger, opts *rootOptions) error {
	lock, err := daemon.AcquireLock(cfg.LockFile)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	d := daemon.New(org, out, logger, opts.dryRun)
	_, sortErr := d.Sort(ctx, opts.sortDir)
	if err := d.Finalize(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return sortErr
}

func runWatch(ctx context.Context, out io.Writer, cfg *config.Config, org *organizer.Organizer, logger *zap.Logger, opts *rootOptions) error {
	lock, err := daemon.AcquireLock(cfg.LockFile)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	src, err := watcher.New(cfg.DirWatch, watcher.Options{
		Backend: cfg.Watch.Backend,
		Settle:  cfg.Watch.Settle,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", cfg.DirWatch, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Warn("close watcher", zap.Error(cerr))
		}
	}()

	logger.Info("mediasort started",
		zap.String("version", version),
		zap.String("dir_watch", cfg.DirWatch),
		zap.String("show_path", cfg.ShowPath),
		zap.String("movie_path", cfg.MoviePath),
		zap.Int("pid", os.Getpid()))

	d := daemon.New(org, out, logger, opts.dryRun)
	return d.Run(ctx, src)
}
