package wrapper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/vk/toolcrate/internal/closure"
	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
)

// ErrCorruptDistribution marks a distribution whose bundle tree is missing a
// file the wrapper catalog promises. It indicates a packaging error, distinct
// from an unsupported host.
var ErrCorruptDistribution = errors.New("corrupt distribution")

// BundleDirName is the directory under the distribution root that holds one
// bundle subdirectory per platform profile id.
const BundleDirName = "bundles"

// Generator emits dispatcher scripts from the wrapper catalog.
type Generator struct {
	model *config.Model
}

// NewGenerator creates a Generator over a loaded, validated model.
func NewGenerator(model *config.Model) *Generator {
	return &Generator{model: model}
}

// Generate renders the dispatcher source for one wrapper catalog entry.
func (g *Generator) Generate(w *config.Wrapper) ([]byte, error) {
	data := templateData{
		Name:                    w.Name,
		SystemLibPath:           SystemLibPath,
		LibDirName:              closure.LibDirName,
		ExitUnsupportedHost:     ExitUnsupportedHost,
		ExitCorruptDistribution: ExitCorruptDistribution,
	}

	for _, c := range w.Candidates {
		profile := g.model.ProfileByID(c.ProfileID)
		if profile == nil {
			return nil, fmt.Errorf("wrapper %q references unknown platform %q", w.Name, c.ProfileID)
		}
		data.Candidates = append(data.Candidates, templateCandidate{
			ProfileID:  profile.ID,
			MinMajor:   profile.ABIMin.Major(),
			MinMinor:   profile.ABIMin.Minor(),
			MaxMajor:   profile.ABIMax.Major(),
			MaxMinor:   profile.ABIMax.Minor(),
			BundleDir:  path.Join(BundleDirName, profile.ID),
			BinPath:    c.Path,
			RuntimeEnv: c.RuntimeEnv,
		})
	}

	var buf bytes.Buffer
	if err := dispatcherTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render dispatcher for %q: %w", w.Name, err)
	}
	return buf.Bytes(), nil
}

// WriteAll verifies the bundle tree against the catalog and writes one
// executable dispatcher per wrapper at the top level of distRoot. A missing
// real binary for a cataloged candidate is an ErrCorruptDistribution: the
// builds claimed success, so the tree should contain it.
func (g *Generator) WriteAll(ctx context.Context, distRoot string) (int, error) {
	logger := ctxlog.FromContext(ctx).With("dist_root", distRoot)

	written := 0
	for _, w := range g.model.Wrappers {
		for _, c := range w.Candidates {
			real := filepath.Join(distRoot, BundleDirName, c.ProfileID, filepath.FromSlash(c.Path))
			if _, err := os.Stat(real); err != nil {
				return written, fmt.Errorf("%w: wrapper %q expects %s", ErrCorruptDistribution, w.Name, real)
			}
		}

		src, err := g.Generate(w)
		if err != nil {
			return written, err
		}

		dst := filepath.Join(distRoot, w.Name)
		if err := os.WriteFile(dst, src, 0o755); err != nil {
			return written, fmt.Errorf("failed to write dispatcher %q: %w", dst, err)
		}
		written++
		logger.Debug("Wrote dispatcher.", "wrapper", w.Name, "path", dst)
	}

	logger.Info("Dispatcher generation complete.", "written", written)
	return written, nil
}
