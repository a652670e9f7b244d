package buildstep

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
)

// Runner executes build scripts with the staging tree passed explicitly
// through the environment, never through an ambient working directory.
type Runner struct {
	outW io.Writer
	errW io.Writer
}

// NewRunner creates a Runner that streams script output to the given writers.
func NewRunner(outW, errW io.Writer) *Runner {
	return &Runner{outW: outW, errW: errW}
}

// Run executes one selected build candidate for one platform profile. The
// script receives the tool name, the profile id, and the absolute staging
// root for that profile in its environment. Cancellation of ctx kills the
// script.
func (r *Runner) Run(ctx context.Context, build *config.ToolBuild, profileID, stagingRoot string) error {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(stagingRoot)
	if err != nil {
		return fmt.Errorf("cannot resolve staging root %q: %w", stagingRoot, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("cannot create staging root %q: %w", abs, err)
	}

	logger.Info("Running build script.", "tool", build.Tool, "platform", profileID, "script", build.Script)

	cmd := exec.CommandContext(ctx, build.Script)
	cmd.Stdout = r.outW
	cmd.Stderr = r.errW
	cmd.Env = append(os.Environ(),
		"TOOLCRATE_TOOL="+build.Tool,
		"TOOLCRATE_PLATFORM="+profileID,
		"TOOLCRATE_STAGING_ROOT="+abs,
	)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build script for tool %q on platform %q failed: %w", build.Tool, profileID, err)
	}

	logger.Info("Build script finished.", "tool", build.Tool, "platform", profileID)
	return nil
}
