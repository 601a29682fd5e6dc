package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/applinker/internal/version"
	"github.com/arthur-debert/applinker/pkg/commands/sync"
	"github.com/arthur-debert/applinker/pkg/config"
	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/filesystem"
	"github.com/arthur-debert/applinker/pkg/logging"
	"github.com/arthur-debert/applinker/pkg/naming"
	"github.com/arthur-debert/applinker/pkg/notify"
	"github.com/arthur-debert/applinker/pkg/types"
	"github.com/arthur-debert/applinker/pkg/watcher"
)

// rootFlags holds the raw CLI flag values before merging with the
// config file and environment.
type rootFlags struct {
	watch        bool
	linkDir      string
	srcDirs      []string
	prefix       string
	postfix      string
	toLower      bool
	desktop      bool
	notifySecs   int
	pollInterval int
	debug        bool
	configFile   string
}

// NewRootCmd builds the applinker command.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "applinker",
		Short: "Mirror installed packages as symbolic links",
		Long: `applinker keeps a directory of symbolic links in sync with the packages
installed under one or more source directories. Run it once to reconcile,
or with --watch to keep reconciling as packages are installed and removed.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Run continuously, re-reconciling on filesystem events")
	cmd.Flags().StringVarP(&flags.linkDir, "link-dir", "l", "", "Destination directory for links (required)")
	cmd.Flags().StringArrayVarP(&flags.srcDirs, "src-dir", "s", nil, "Source directory to scan (repeatable; default: flatpak export dirs)")
	cmd.Flags().StringVarP(&flags.prefix, "prefix", "p", "", "String prepended to every link name")
	cmd.Flags().StringVarP(&flags.postfix, "postfix", "P", "", "String appended to every link name")
	cmd.Flags().BoolVarP(&flags.toLower, "to-lower", "L", false, "Lowercase derived link names")
	cmd.Flags().BoolVar(&flags.desktop, "desktop", false, "Scan .desktop descriptor files instead of binaries")
	cmd.Flags().IntVarP(&flags.notifySecs, "notify_ms", "n", 10, "Notification duration in whole seconds, -1 disables notifications")
	cmd.Flags().IntVar(&flags.pollInterval, "poll-interval", 5, "Seconds between source directory existence checks in watch mode")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "D", false, "Raise log verbosity")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Config file path (default: probed under the XDG config dir)")

	return cmd
}

func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return err
	}
	mergeFlags(cmd, flags, cfg)

	verbosity := 0
	if flags.debug {
		verbosity = 1
	}
	logger := logging.New(os.Stderr, verbosity)

	if cfg.LinkDir == "" {
		return errors.New(errors.ErrInvalidInput, "--link-dir is required")
	}

	opts := sync.Options{
		FS:      filesystem.NewOS(),
		LinkDir: cfg.LinkDir,
		SrcDirs: cfg.SrcDirs,
		Mode:    scanMode(cfg),
		Resolver: naming.Resolver{
			Prefix:  cfg.Prefix,
			Postfix: cfg.Postfix,
			ToLower: cfg.ToLower,
		},
		Notifier: buildNotifier(cfg, logger),
		Logger:   logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Watch {
		changed, err := sync.Run(ctx, opts)
		if err != nil {
			return err
		}
		if !changed {
			logger.Info().Msg("nothing to do")
		}
		return nil
	}

	syncer, err := sync.New(opts)
	if err != nil {
		return err
	}

	interval := time.Duration(cfg.PollIntervalSecs) * time.Second
	coordinator, err := watcher.New(cfg.SrcDirs, interval,
		func(ctx context.Context) { syncer.Sync(ctx) }, logger)
	if err != nil {
		return err
	}

	logger.Info().Strs("src_dirs", cfg.SrcDirs).Str("link_dir", cfg.LinkDir).Msg("watching for package changes")
	return coordinator.Run(ctx)
}

// mergeFlags applies explicitly set CLI flags on top of the loaded
// configuration. Flags always win over file and environment values.
func mergeFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	if cmd.Flags().Changed("watch") {
		cfg.Watch = flags.watch
	}
	if cmd.Flags().Changed("link-dir") {
		cfg.LinkDir = flags.linkDir
	}
	if cmd.Flags().Changed("src-dir") {
		cfg.SrcDirs = flags.srcDirs
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Prefix = flags.prefix
	}
	if cmd.Flags().Changed("postfix") {
		cfg.Postfix = flags.postfix
	}
	if cmd.Flags().Changed("to-lower") {
		cfg.ToLower = flags.toLower
	}
	if cmd.Flags().Changed("desktop") {
		cfg.Desktop = flags.desktop
	}
	if cmd.Flags().Changed("notify_ms") {
		cfg.NotifySecs = flags.notifySecs
	}
	if cmd.Flags().Changed("poll-interval") {
		cfg.PollIntervalSecs = flags.pollInterval
	}
}

func scanMode(cfg *config.Config) types.ScanMode {
	if cfg.Desktop {
		return types.ScanModeDesktop
	}
	return types.ScanModeBinary
}

// buildNotifier converts the configured whole-second duration to the
// milliseconds notify-send expects. -1 disables notifications entirely.
func buildNotifier(cfg *config.Config, logger zerolog.Logger) notify.Notifier {
	if cfg.NotifySecs < 0 {
		return notify.Disabled{}
	}
	return notify.NewDesktop(cfg.NotifySecs*1000, logger)
}
