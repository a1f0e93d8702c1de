package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/parseltongue-dev/parseltongue/internal/stream"
)

// CLIProgressReporter implements progress reporting with a progress bar.
type CLIProgressReporter struct {
	quiet     bool
	fileBar   *progressbar.ProgressBar
	startTime time.Time
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	fmt.Fprintln(os.Stderr, "Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(relPath string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(result *stream.Result) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	elapsed := time.Since(c.startTime)
	fmt.Fprintf(os.Stderr, "✓ Scan complete: %s entities, %s edges from %s files in %.1fs\n",
		formatNumber(result.EntitiesCreated),
		formatNumber(len(result.Edges)),
		formatNumber(result.FilesScanned),
		elapsed.Seconds())
	if result.FilesSkipped > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped: %s files\n", formatNumber(result.FilesSkipped))
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  Files with parse errors: %s\n", formatNumber(result.ParseErrors))
	}
	if result.KeyCollisions > 0 {
		fmt.Fprintf(os.Stderr, "  Key collisions dropped: %s\n", formatNumber(result.KeyCollisions))
	}
}

// formatNumber renders n with thousands separators (e.g. 12,345).
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
