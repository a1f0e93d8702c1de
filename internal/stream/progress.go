package stream

// ProgressReporter provides callbacks for reporting scan progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when the directory walk begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called with the number of accepted files.
	OnDiscoveryComplete(files int)

	// OnFileProcessed is called after each file finishes the
	// parse → extract → key-generate pipeline.
	OnFileProcessed(relPath string)

	// OnComplete is called with the final result of the scan.
	OnComplete(result *Result)
}

// NoOpProgressReporter is a progress reporter that does nothing. Used when
// progress reporting is disabled.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryStart()             {}
func (NoOpProgressReporter) OnDiscoveryComplete(files int) {}
func (NoOpProgressReporter) OnFileProcessed(relPath string) {
}
func (NoOpProgressReporter) OnComplete(result *Result) {}
