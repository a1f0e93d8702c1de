// Package stream orchestrates a full-codebase scan: walk the root directory,
// filter files, and feed each accepted file through parse → extract →
// key-generate, accumulating one Result per invocation.
package stream

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
	"github.com/parseltongue-dev/parseltongue/internal/extract"
	"github.com/parseltongue-dev/parseltongue/internal/isgl"
	"github.com/parseltongue-dev/parseltongue/internal/lang"
	"github.com/parseltongue-dev/parseltongue/internal/parser"
)

// DefaultConcurrency bounds the worker pool when Options.Concurrency is zero.
const DefaultConcurrency = 8

// Options configures one directory scan.
type Options struct {
	// Root is the directory to scan. Must exist and be a directory; anything
	// else is a configuration error fatal to the whole run.
	Root string

	// Include holds glob patterns a file must match (when non-empty).
	Include []string

	// Exclude holds glob patterns that reject a file or prune a directory.
	Exclude []string

	// MaxFileSize rejects larger files as skipped. Zero means no limit.
	MaxFileSize int64

	// DefaultLanguage is tried for files without an extension. Files whose
	// extension is unknown to the registry are always skipped.
	DefaultLanguage entity.Language

	// Concurrency bounds the number of files processed at once.
	Concurrency int
}

// Result is the aggregate outcome of one scan. It is immutable once returned;
// a later scan produces a replacement rather than mutating it.
type Result struct {
	Entities []extract.KeyedEntity   `json:"entities"`
	Edges    []entity.DependencyEdge `json:"edges"`

	FilesScanned int `json:"files_scanned"`

	// FilesSkipped counts files that were seen and rejected (excluded
	// pattern, size cutoff, unsupported extension, unreadable). Files under
	// wholly-excluded directories are pruned unseen and not counted.
	FilesSkipped    int `json:"files_skipped"`
	EntitiesCreated int `json:"entities_created"`
	ParseErrors     int `json:"parse_errors"`
	KeyCollisions   int `json:"key_collisions"`

	// Incomplete marks a scan that was cancelled before every file was
	// processed. The collections hold whatever had accumulated by then.
	Incomplete bool `json:"incomplete,omitempty"`
}

// Streamer runs scans against a shared grammar registry. The registry is
// read-only during a scan and safe to share across workers.
type Streamer struct {
	registry *lang.Registry
	log      *logrus.Logger
	progress ProgressReporter
}

// New creates a Streamer. log and progress may be nil.
func New(registry *lang.Registry, log *logrus.Logger, progress ProgressReporter) *Streamer {
	if log == nil {
		log = logrus.New()
	}
	if progress == nil {
		progress = NoOpProgressReporter{}
	}
	return &Streamer{registry: registry, log: log, progress: progress}
}

type fileJob struct {
	path    string
	relPath string
}

// Stream scans opts.Root and returns the accumulated entities, edges, and
// counters. Per-file failures are folded into the counters; only
// configuration errors (bad root, bad patterns) are returned as errors.
func (s *Streamer) Stream(ctx context.Context, opts Options) (*Result, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", opts.Root)
	}

	filter, err := newFileFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	s.progress.OnDiscoveryStart()
	jobs, err := s.discover(opts, filter, result)
	if err != nil {
		return nil, err
	}
	s.progress.OnDiscoveryComplete(len(jobs))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}

		job := job
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			fileResult, ok := s.processFile(job, opts.DefaultLanguage)
			s.progress.OnFileProcessed(job.relPath)

			// Single merge per file; no per-entity locking needed.
			mu.Lock()
			defer mu.Unlock()
			if !ok {
				result.ParseErrors++
				result.FilesSkipped++
				return nil
			}
			result.FilesScanned++
			if fileResult.SyntaxErrors > 0 {
				result.ParseErrors++
			}
			result.KeyCollisions += fileResult.KeyCollisions
			result.Entities = append(result.Entities, fileResult.Entities...)
			result.Edges = append(result.Edges, fileResult.Edges...)
			return nil
		})
	}

	_ = g.Wait()
	// Workers never return errors, so the only cancellation source is ctx.
	// Incomplete is set here, after every worker has stopped, to keep the
	// accumulator single-writer on the cancellation path.
	if ctx.Err() != nil {
		result.Incomplete = true
	}

	result.EntitiesCreated = len(result.Entities)

	// Consumers must treat the collections as unordered sets keyed by ISGL1
	// key; sorting here just makes repeated runs byte-comparable.
	sort.Slice(result.Entities, func(i, j int) bool {
		return result.Entities[i].Key < result.Entities[j].Key
	})
	sort.Slice(result.Edges, func(i, j int) bool {
		a, b := result.Edges[i], result.Edges[j]
		if a.FromKey != b.FromKey {
			return a.FromKey < b.FromKey
		}
		if a.ToKey != b.ToKey {
			return a.ToKey < b.ToKey
		}
		return a.Kind < b.Kind
	})

	s.progress.OnComplete(result)
	return result, nil
}

// discover walks the root and returns the jobs that pass every filter,
// counting rejected files as skipped. Directories matched by an exclude
// pattern are pruned without enumerating their contents, so files inside
// them are never seen and do not add to FilesSkipped; only files that are
// individually rejected (pattern, size, unsupported extension) count.
func (s *Streamer) discover(opts Options, filter *fileFilter, result *Result) ([]fileJob, error) {
	var jobs []fileJob

	walkErr := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.Root {
				return err
			}
			s.log.WithField("path", path).WithError(err).Warn("skipping unreadable path")
			result.FilesSkipped++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath := isgl.NormalizePath(opts.Root, path)

		if d.IsDir() {
			if path != opts.Root && filter.SkipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !filter.Accept(relPath) {
			result.FilesSkipped++
			return nil
		}

		if opts.MaxFileSize > 0 {
			fi, statErr := d.Info()
			if statErr != nil {
				result.FilesSkipped++
				return nil
			}
			if fi.Size() > opts.MaxFileSize {
				result.FilesSkipped++
				return nil
			}
		}

		if _, ok := s.resolveHandle(relPath, opts.DefaultLanguage); !ok {
			// Unsupported extensions degrade gracefully.
			result.FilesSkipped++
			return nil
		}

		jobs = append(jobs, fileJob{path: path, relPath: relPath})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", opts.Root, walkErr)
	}

	return jobs, nil
}

// resolveHandle resolves the language handle for a file, falling back to the
// configured default language for extensionless files.
func (s *Streamer) resolveHandle(relPath string, defaultLang entity.Language) (*lang.Handle, bool) {
	ext := filepath.Ext(relPath)
	if ext == "" && defaultLang != "" {
		return s.registry.ResolveLanguage(defaultLang)
	}
	return s.registry.Resolve(ext)
}

// processFile runs one file through the pipeline. ok is false when the file
// could not be read or parsed at all.
func (s *Streamer) processFile(job fileJob, defaultLang entity.Language) (*extract.FileResult, bool) {
	source, err := os.ReadFile(job.path)
	if err != nil {
		s.log.WithField("file", job.relPath).WithError(err).Warn("failed to read file")
		return nil, false
	}

	h, ok := s.resolveHandle(job.relPath, defaultLang)
	if !ok {
		return nil, false
	}

	tree, err := parser.Parse(source, h)
	if err != nil {
		s.log.WithField("file", job.relPath).WithError(err).Warn("parse failed")
		return nil, false
	}
	defer tree.Close()

	return extract.Extract(tree, job.relPath, h), true
}

// Keys returns the result's entity keys, useful for set comparisons.
func (r *Result) Keys() []isgl.Key {
	keys := make([]isgl.Key, len(r.Entities))
	for i, ke := range r.Entities {
		keys[i] = ke.Key
	}
	return keys
}
