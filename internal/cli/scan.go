package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parseltongue-dev/parseltongue/internal/config"
	"github.com/parseltongue-dev/parseltongue/internal/entity"
	"github.com/parseltongue-dev/parseltongue/internal/lang"
	"github.com/parseltongue-dev/parseltongue/internal/stream"
)

var (
	quietFlag       bool
	outputFlag      string
	includeFlag     []string
	excludeFlag     []string
	maxFileSizeFlag int64
	concurrencyFlag int
	defaultLangFlag string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory tree and extract code entities",
	Long: `Scan walks a directory tree, parses every supported source file, and
prints the extracted entities and dependency edges as JSON.

Configuration is read from .parseltongue/config.yml under the scanned
root (with PARSELTONGUE_* environment overrides); command-line flags
win over both.

Examples:
  # Scan the current directory
  parseltongue scan

  # Scan a project, writing the result to a file
  parseltongue scan ~/src/myproject -o entities.json

  # Only Python sources, excluding tests
  parseltongue scan --include 'src/**/*.py' --exclude 'src/**/test_*.py'
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	scanCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the JSON result to a file instead of stdout")
	scanCmd.Flags().StringSliceVar(&includeFlag, "include", nil, "Glob patterns a file must match (repeatable)")
	scanCmd.Flags().StringSliceVar(&excludeFlag, "exclude", nil, "Glob patterns to skip (repeatable)")
	scanCmd.Flags().Int64Var(&maxFileSizeFlag, "max-file-size", 0, "Skip files larger than this many bytes (0 = config default)")
	scanCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Number of files processed in parallel (0 = config default)")
	scanCmd.Flags().StringVar(&defaultLangFlag, "default-language", "", "Language tried for extensionless files")
}

func runScan(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling scan...")
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
	progress := NewCLIProgressReporter(quietFlag)
	streamer := stream.New(registry, log, progress)

	result, err := streamer.Stream(ctx, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if result.Incomplete {
		fmt.Fprintln(os.Stderr, "Scan was cancelled; result is partial.")
	}

	return writeResult(result, outputFlag)
}

// resolveRoot picks the scan root from the positional argument, defaulting
// to the working directory, and makes it absolute.
func resolveRoot(args []string) (string, error) {
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %q: %w", args[0], err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// scanOptions merges configuration with command-line flags. A flag only
// overrides the config value when it was set explicitly.
func scanOptions(cmd *cobra.Command, rootDir string, cfg *config.Config) stream.Options {
	opts := stream.Options{
		Root:            rootDir,
		Include:         cfg.Scan.Include,
		Exclude:         cfg.Scan.Exclude,
		MaxFileSize:     cfg.Scan.MaxFileSize,
		DefaultLanguage: entity.Language(cfg.Scan.DefaultLanguage),
		Concurrency:     cfg.Scan.Concurrency,
	}

	flags := cmd.Flags()
	if flags.Changed("include") {
		opts.Include = includeFlag
	}
	if flags.Changed("exclude") {
		opts.Exclude = excludeFlag
	}
	if flags.Changed("max-file-size") {
		opts.MaxFileSize = maxFileSizeFlag
	}
	if flags.Changed("concurrency") {
		opts.Concurrency = concurrencyFlag
	}
	if flags.Changed("default-language") {
		opts.DefaultLanguage = entity.Language(defaultLangFlag)
	}

	return opts
}
