package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
)

// selectedProfiles applies the -platforms restriction. No restriction means
// every configured platform, announced explicitly rather than silently.
func (a *App) selectedProfiles(ctx context.Context) ([]*config.Profile, error) {
	logger := ctxlog.FromContext(ctx)

	if len(a.model.Profiles) == 0 {
		return nil, fmt.Errorf("no platforms are configured in %s", a.cfg.ConfigPath)
	}

	if len(a.cfg.Platforms) == 0 {
		ids := make([]string, 0, len(a.model.Profiles))
		for _, p := range a.model.Profiles {
			ids = append(ids, p.ID)
		}
		logger.Info("No platforms specified; using all configured platforms.", "platforms", ids)
		return a.model.Profiles, nil
	}

	var out []*config.Profile
	for _, id := range a.cfg.Platforms {
		p := a.model.ProfileByID(id)
		if p == nil {
			return nil, fmt.Errorf("unknown platform %q; valid platforms: %s", id, strings.Join(profileIDs(a.model), ", "))
		}
		out = append(out, p)
	}
	return out, nil
}

// selectedBuilds applies the -tools restriction to the build candidates.
func (a *App) selectedBuilds(ctx context.Context) ([]*config.ToolBuild, error) {
	logger := ctxlog.FromContext(ctx)

	if len(a.model.Builds) == 0 {
		return nil, fmt.Errorf("no tools are configured in %s", a.cfg.ConfigPath)
	}

	if len(a.cfg.Tools) == 0 {
		logger.Info("No tools specified; building all configured tools.", "tools", a.model.ToolNames())
		return a.model.Builds, nil
	}

	known := make(map[string]struct{})
	for _, name := range a.model.ToolNames() {
		known[name] = struct{}{}
	}

	requested := make(map[string]struct{})
	for _, name := range a.cfg.Tools {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown tool %q; valid tools: %s", name, strings.Join(a.model.ToolNames(), ", "))
		}
		requested[name] = struct{}{}
	}

	var out []*config.ToolBuild
	for _, b := range a.model.Builds {
		if _, ok := requested[b.Tool]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func profileIDs(m *config.Model) []string {
	ids := make([]string, 0, len(m.Profiles))
	for _, p := range m.Profiles {
		ids = append(ids, p.ID)
	}
	return ids
}
