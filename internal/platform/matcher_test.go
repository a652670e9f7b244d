package platform

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/toolcrate/internal/abi"
	"github.com/vk/toolcrate/internal/config"
)

func twoTierRegistry() *Registry {
	return NewRegistry([]*config.Profile{
		{ID: "A", ABIMin: abi.MustParse("2.17"), ABIMax: abi.MustParse("2.27")},
		{ID: "B", ABIMin: abi.MustParse("2.28"), ABIMax: abi.MustParse("2.99")},
	})
}

func TestMatch_FirstContainingProfileWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	profile, err := twoTierRegistry().Match(ctx, abi.MustParse("2.20"))
	require.NoError(t, err)
	assert.Equal(t, "A", profile.ID)
}

func TestMatch_UnsupportedHost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := twoTierRegistry().Match(ctx, abi.MustParse("2.10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedHost)
	assert.Contains(t, err.Error(), "2.10", "the diagnostic must name the offending host version")
}

func TestMatch_OverlappingRangesPreferEarlierProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A stricter profile registered first wins for hosts inside both ranges.
	registry := NewRegistry([]*config.Profile{
		{ID: "strict", ABIMin: abi.MustParse("2.28"), ABIMax: abi.MustParse("2.34")},
		{ID: "broad", ABIMin: abi.MustParse("2.17"), ABIMax: abi.MustParse("2.99")},
	})

	profile, err := registry.Match(ctx, abi.MustParse("2.30"))
	require.NoError(t, err)
	assert.Equal(t, "strict", profile.ID)
}

func TestMatch_Deterministic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	registry := twoTierRegistry()
	host := abi.MustParse("2.28")
	for i := 0; i < 100; i++ {
		profile, err := registry.Match(ctx, host)
		require.NoError(t, err)
		require.Equal(t, "B", profile.ID, "matching must be reproducible across runs")
	}
}

// failingProber simulates a host whose runtime version cannot be read.
type failingProber struct{}

func (failingProber) HostVersion(context.Context) (abi.Version, error) {
	return abi.Version{}, fmt.Errorf("no C runtime found")
}

func TestMatchHost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	registry := twoTierRegistry()

	t.Run("probed version matches", func(t *testing.T) {
		t.Parallel()
		profile, err := registry.MatchHost(ctx, abi.StaticProber{Version: abi.MustParse("2.31")})
		require.NoError(t, err)
		assert.Equal(t, "B", profile.ID)
	})

	t.Run("unreadable host version is a hard failure", func(t *testing.T) {
		t.Parallel()
		_, err := registry.MatchHost(ctx, failingProber{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedHost), "an unreadable version is the same category as no match")
	})
}
