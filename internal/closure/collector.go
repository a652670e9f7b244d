package closure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/vk/toolcrate/internal/ctxlog"
	"github.com/vk/toolcrate/internal/fsutil"
	"github.com/vk/toolcrate/internal/inspect"
)

// ErrStagingTreeUnavailable marks a staging root that cannot be enumerated
// at all. Per-object failures inside an available tree are never fatal.
var ErrStagingTreeUnavailable = errors.New("staging tree unavailable")

// ErrDidNotConverge marks a collection whose fixed-point loop exceeded the
// pass cap. A healthy tree converges in a handful of passes; hitting the cap
// means the tree or the host's library set is pathological.
var ErrDidNotConverge = errors.New("dependency closure did not converge")

// LibDirName is the flat library directory inside each staging tree that
// collection populates and the generated dispatchers point the loader at.
const LibDirName = "lib"

// lockFileName guards a tree's library directory against interleaved copies
// from concurrent invocations.
const lockFileName = ".collect.lock"

// defaultMaxPasses bounds the fixed-point loop. The loop is already bounded
// by the finite number of distinct library basenames on the host; the cap
// guards against corrupt or adversarial inputs.
const defaultMaxPasses = 256

// Report summarizes one collection run.
type Report struct {
	// Copied is the number of newly staged library files across all passes.
	Copied int
	// Passes is the number of passes performed, including the final
	// zero-copy pass that proves the fixed point.
	Passes int
	// InspectFailures counts objects that could not be inspected or
	// resolved. They are logged and skipped, never fatal.
	InspectFailures int
}

// Collector stages the transitive shared-library closure of a staging tree.
type Collector struct {
	resolver  Resolver
	inspector inspect.Inspector
	maxPasses int
}

// Option adjusts collector construction.
type Option func(*Collector)

// WithMaxPasses overrides the fixed-point pass cap.
func WithMaxPasses(n int) Option {
	return func(c *Collector) { c.maxPasses = n }
}

// New creates a Collector over the given resolver and inspector.
func New(resolver Resolver, inspector inspect.Inspector, opts ...Option) *Collector {
	c := &Collector{
		resolver:  resolver,
		inspector: inspector,
		maxPasses: defaultMaxPasses,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect copies every transitively required shared library into the flat
// library directory of stagingRoot, deduplicated by basename, until a full
// pass copies nothing. Re-running against an already closed tree copies zero
// files and returns after a single pass.
func (c *Collector) Collect(ctx context.Context, stagingRoot string) (*Report, error) {
	logger := ctxlog.FromContext(ctx).With("staging_root", stagingRoot)

	if _, err := os.Stat(stagingRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStagingTreeUnavailable, err)
	}

	libDir := filepath.Join(stagingRoot, LibDirName)
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create library directory: %v", ErrStagingTreeUnavailable, err)
	}

	// Concurrent invocations against the same tree would interleave copies;
	// an advisory lock serializes them. Copying itself stays idempotent, so
	// a crashed run leaves the tree recoverable either way.
	lock := flock.New(filepath.Join(libDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("%w: cannot lock library directory: %v", ErrStagingTreeUnavailable, err)
	}
	defer lock.Unlock()

	report := &Report{}
	for {
		report.Passes++
		if report.Passes > c.maxPasses {
			return report, fmt.Errorf("%w: %d passes exceeded for %s", ErrDidNotConverge, c.maxPasses, stagingRoot)
		}

		copied, err := c.pass(ctx, stagingRoot, libDir, report)
		if err != nil {
			return report, err
		}
		logger.Debug("Collection pass finished.", "pass", report.Passes, "copied", copied)

		if copied == 0 {
			break
		}
		report.Copied += copied
	}

	logger.Info("Dependency closure complete.",
		"copied", report.Copied, "passes", report.Passes, "inspect_failures", report.InspectFailures)
	return report, nil
}

// pass runs one enumerate-inspect-resolve-copy sweep and returns how many
// new files it staged.
func (c *Collector) pass(ctx context.Context, stagingRoot, libDir string, report *Report) (int, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindRegularFiles(stagingRoot)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStagingTreeUnavailable, err)
	}

	staged, err := stagedBasenames(libDir)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStagingTreeUnavailable, err)
	}

	copied := 0
	for _, path := range files {
		if filepath.Base(path) == lockFileName {
			continue
		}

		obj, err := c.inspector.Inspect(path)
		if err != nil {
			if errors.Is(err, inspect.ErrNotLoadable) {
				continue
			}
			logger.Warn("Skipping object that could not be inspected.", "path", path, "error", err)
			report.InspectFailures++
			continue
		}

		deps, err := c.resolver.ResolvedDeps(ctx, path)
		if err != nil {
			logger.Warn("Skipping object whose dependencies could not be resolved.",
				"path", path, "kind", obj.Kind.String(), "error", err)
			report.InspectFailures++
			continue
		}

		for _, dep := range deps {
			base := filepath.Base(dep)
			if _, ok := staged[base]; ok {
				continue
			}
			dst := filepath.Join(libDir, base)
			if err := fsutil.CopyFile(dep, dst); err != nil {
				logger.Warn("Failed to stage library copy.", "library", dep, "error", err)
				report.InspectFailures++
				continue
			}
			staged[base] = struct{}{}
			copied++
			logger.Debug("Staged library.", "library", base, "from", dep, "for", path)
		}
	}

	return copied, nil
}

// stagedBasenames lists the basenames already present in the flat library
// directory. Presence is judged by basename alone; the closure never stages
// two files with the same basename.
func stagedBasenames(libDir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(libDir)
	if err != nil {
		return nil, err
	}
	staged := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name() != lockFileName {
			staged[e.Name()] = struct{}{}
		}
	}
	return staged, nil
}
