package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
	"github.com/vk/toolcrate/internal/fsutil"
	"github.com/vk/toolcrate/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory searched recursively. Declaration order within and across files
// is preserved, since it carries matching priority.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var filePaths []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("configuration path %q is not readable: %w", path, err)
		}
		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, fmt.Errorf("failed to scan configuration directory %q: %w", path, err)
			}
			filePaths = append(filePaths, found...)
		} else {
			filePaths = append(filePaths, path)
		}
	}

	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no .hcl configuration files found in %v", paths)
	}
	logger.Debug("Found configuration files to load.", "files", filePaths)

	parser := hclparse.NewParser()
	var roots []*schema.Root

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", filePath, diags)
		}

		var root schema.Root
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", filePath, diags)
		}
		roots = append(roots, &root)
		logger.Debug("Successfully decoded configuration file.", "file", filePath)
	}

	model, err := l.translate(ctx, roots)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded.",
		"platforms", len(model.Profiles),
		"build_candidates", len(model.Builds),
		"wrappers", len(model.Wrappers))
	return model, nil
}
