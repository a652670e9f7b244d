package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/toolcrate/internal/abi"
	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
)

// ErrUnsupportedHost marks a host whose C-runtime version falls outside every
// registered profile's range, or cannot be determined at all. There is no
// build for such a host; the error is user-facing and non-retryable.
var ErrUnsupportedHost = errors.New("unsupported host")

// Registry holds platform profiles in priority order: the first profile
// whose range contains the host version wins. Profiles are immutable once
// registered.
type Registry struct {
	profiles []*config.Profile
}

// NewRegistry builds a registry from profiles in their declared priority
// order. The profiles are assumed validated by the configuration loader.
func NewRegistry(profiles []*config.Profile) *Registry {
	return &Registry{profiles: profiles}
}

// Profiles returns the registered profiles in priority order.
func (r *Registry) Profiles() []*config.Profile {
	return r.profiles
}

// Match returns the first profile in priority order whose inclusive ABI
// range contains the host version. Overlapping ranges are by design: a host
// qualifying for a stricter profile prefers it because that profile is
// registered earlier. No match is an ErrUnsupportedHost.
func (r *Registry) Match(ctx context.Context, host abi.Version) (*config.Profile, error) {
	logger := ctxlog.FromContext(ctx)

	for _, p := range r.profiles {
		if p.Contains(host) {
			logger.Debug("Host matched platform profile.",
				"host", host.String(), "profile", p.ID,
				"abi_min", p.ABIMin.String(), "abi_max", p.ABIMax.String())
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: C runtime version %s matches no platform profile", ErrUnsupportedHost, host)
}

// MatchHost probes the host's C-runtime version with the given prober and
// matches it. An unparseable or unreadable host version is a hard failure in
// the same category as no match.
func (r *Registry) MatchHost(ctx context.Context, prober abi.Prober) (*config.Profile, error) {
	host, err := prober.HostVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedHost, err)
	}
	return r.Match(ctx, host)
}
