package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/toolcrate/internal/buildorder"
	"github.com/vk/toolcrate/internal/buildstep"
	"github.com/vk/toolcrate/internal/closure"
	"github.com/vk/toolcrate/internal/ctxlog"
	"github.com/vk/toolcrate/internal/inspect"
	"github.com/vk/toolcrate/internal/wrapper"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.cfg.Command)

	switch a.cfg.Command {
	case CmdBuild:
		return a.runBuild(ctx, a.cfg.StagingRoot)
	case CmdCollect:
		return a.runCollect(ctx, a.cfg.StagingRoot)
	case CmdWrap:
		return a.runWrap(ctx)
	case CmdMatch:
		return a.runMatch(ctx)
	case CmdDist:
		return a.runDist(ctx)
	case CmdClean:
		return a.runClean(ctx)
	default:
		return fmt.Errorf("unknown command %q", a.cfg.Command)
	}
}

// runBuild resolves the build order and runs every selected candidate's
// script once per selected platform, staging into <root>/<platform id>.
func (a *App) runBuild(ctx context.Context, stagingRoot string) error {
	profiles, err := a.selectedProfiles(ctx)
	if err != nil {
		return err
	}
	builds, err := a.selectedBuilds(ctx)
	if err != nil {
		return err
	}

	ordered, err := buildorder.Resolve(ctx, builds)
	if err != nil {
		return err
	}

	runner := buildstep.NewRunner(a.outW, a.outW)
	for _, profile := range profiles {
		a.logger.Info("🔨 Building platform.", "platform", profile.ID)
		root := filepath.Join(stagingRoot, profile.ID)
		for _, build := range ordered {
			if err := runner.Run(ctx, build, profile.ID, root); err != nil {
				return err
			}
		}
	}

	a.logger.Info("🏁 Builds finished.", "platforms", len(profiles), "tools", len(ordered))
	return nil
}

// runCollect runs closure collection over each selected platform's staging
// tree. A tree that fails to converge fails that platform only; remaining
// platforms still collect, and the convergence error is reported at the end.
func (a *App) runCollect(ctx context.Context, stagingRoot string) error {
	profiles, err := a.selectedProfiles(ctx)
	if err != nil {
		return err
	}

	collector := a.collector
	if collector == nil {
		collector = closure.New(closure.LddResolver{}, inspect.NewSniffer())
	}

	var convergeErr error
	for _, profile := range profiles {
		root := filepath.Join(stagingRoot, profile.ID)
		a.logger.Info("📦 Collecting dependency closure.", "platform", profile.ID, "staging_root", root)

		report, err := collector.Collect(ctx, root)
		if err != nil {
			if errors.Is(err, closure.ErrDidNotConverge) {
				a.logger.Error("Closure did not converge; other platforms are unaffected.",
					"platform", profile.ID, "error", err)
				convergeErr = err
				continue
			}
			return err
		}
		a.logger.Info("Platform closure collected.",
			"platform", profile.ID, "copied", report.Copied, "passes", report.Passes)
	}

	return convergeErr
}

// runWrap emits one dispatcher per wrapper catalog entry into the dist root.
func (a *App) runWrap(ctx context.Context) error {
	gen := wrapper.NewGenerator(a.model)
	written, err := gen.WriteAll(ctx, a.cfg.DistRoot)
	if err != nil {
		return err
	}
	a.logger.Info("🎁 Wrappers generated.", "count", written)
	return nil
}

// runMatch reports which platform profile the host matches.
func (a *App) runMatch(ctx context.Context) error {
	profile, err := a.registry.MatchHost(ctx, a.prober)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, profile.ID)
	return nil
}

// runDist runs the full pipeline: builds staged straight into the dist
// bundle tree, closure collection per platform, then wrapper generation.
func (a *App) runDist(ctx context.Context) error {
	bundleRoot := filepath.Join(a.cfg.DistRoot, wrapper.BundleDirName)

	if err := a.runBuild(ctx, bundleRoot); err != nil {
		return err
	}
	if err := a.runCollect(ctx, bundleRoot); err != nil {
		return err
	}
	return a.runWrap(ctx)
}

// runClean removes the collected library directory of each selected
// platform's staging tree. Built artifacts are left alone.
func (a *App) runClean(ctx context.Context) error {
	profiles, err := a.selectedProfiles(ctx)
	if err != nil {
		return err
	}

	for _, profile := range profiles {
		libDir := filepath.Join(a.cfg.StagingRoot, profile.ID, closure.LibDirName)
		if err := os.RemoveAll(libDir); err != nil {
			return fmt.Errorf("failed to clean %s: %w", libDir, err)
		}
		a.logger.Info("Cleaned staged libraries.", "platform", profile.ID, "lib_dir", libDir)
	}
	return nil
}
