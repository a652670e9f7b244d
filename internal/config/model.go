package config

import (
	"errors"

	"github.com/vk/toolcrate/internal/abi"
)

// ErrInvalidBuildOrder marks a build candidate whose order hint is not a
// non-negative integer. It is a configuration error and fails the whole run
// before any build executes.
var ErrInvalidBuildOrder = errors.New("invalid build order")

// Model is the unified, format-agnostic representation of the entire build
// configuration.
type Model struct {
	// Profiles holds the platform profiles in declaration order, which is
	// also their matching priority order.
	Profiles []*Profile

	// Builds holds every tool build candidate in declaration order. Multiple
	// candidates may name the same tool; selection happens in buildorder.
	Builds []*ToolBuild

	// Wrappers is the wrapper catalog, one entry per logical executable.
	Wrappers []*Wrapper
}

// Profile is a named ABI compatibility tier. A host whose C-runtime version
// falls inside [ABIMin, ABIMax] can run binaries built for this profile.
type Profile struct {
	ID     string
	ABIMin abi.Version
	ABIMax abi.Version
}

// Contains reports whether the given host version falls inside the profile's
// inclusive ABI range.
func (p *Profile) Contains(host abi.Version) bool {
	return host.InRange(p.ABIMin, p.ABIMax)
}

// ToolBuild is one candidate build procedure for a tool, tagged with its
// priority order hint. Script is the opaque external build step.
type ToolBuild struct {
	Tool   string
	Order  int
	Script string
}

// Wrapper describes one logical executable and where the real binary lives
// under each platform bundle.
type Wrapper struct {
	Name       string
	Candidates []*Candidate
}

// Candidate points a wrapper at a binary inside one platform's bundle.
// RuntimeEnv marks tools that need private state directories and matching
// environment variables set up before launch.
type Candidate struct {
	ProfileID  string
	Path       string
	RuntimeEnv bool
}

// ProfileByID returns the profile with the given id, or nil.
func (m *Model) ProfileByID(id string) *Profile {
	for _, p := range m.Profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ToolNames returns the distinct tool names across all build candidates, in
// first-declaration order.
func (m *Model) ToolNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, b := range m.Builds {
		if _, ok := seen[b.Tool]; ok {
			continue
		}
		seen[b.Tool] = struct{}{}
		names = append(names, b.Tool)
	}
	return names
}
