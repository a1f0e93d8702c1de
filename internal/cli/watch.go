package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parseltongue-dev/parseltongue/internal/config"
	"github.com/parseltongue-dev/parseltongue/internal/lang"
	"github.com/parseltongue-dev/parseltongue/internal/stream"
)

var (
	watchDebounce time.Duration
	watchOutput   string
	watchQuiet    bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory tree and rescan on changes",
	Long: `Watch performs an initial scan, then monitors the tree for file
changes and rescans after a quiet period. Each scan replaces the
output file, or prints a summary when no output file is given.

Examples:
  # Watch the current directory, refreshing entities.json on change
  parseltongue watch -o entities.json

  # Use a longer settle period for noisy build tools
  parseltongue watch --debounce 2s
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", stream.DefaultDebounce, "Quiet period before a rescan")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Rewrite the JSON result to this file after each scan")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Disable non-error output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nStopping watch...")
		cancel()
	}()

	rootDir, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := scanOptions(cmd, rootDir, cfg)

	log := newLogger(cfg.Log.Level)
	registry := lang.NewRegistry(log)
	streamer := stream.New(registry, log, stream.NoOpProgressReporter{})

	watcher, err := stream.NewWatcher(streamer, opts, watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !watchQuiet {
		fmt.Fprintf(os.Stderr, "Watching %s (debounce %s)\n", rootDir, watchDebounce)
	}

	err = watcher.Run(ctx, func(result *stream.Result) {
		if watchOutput != "" {
			if werr := writeResult(result, watchOutput); werr != nil {
				log.WithError(werr).Error("failed to write scan result")
			}
		}
		if !watchQuiet {
			fmt.Fprintf(os.Stderr, "✓ %s entities, %s edges (%s files scanned, %s skipped)\n",
				formatNumber(result.EntitiesCreated),
				formatNumber(len(result.Edges)),
				formatNumber(result.FilesScanned),
				formatNumber(result.FilesSkipped))
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
