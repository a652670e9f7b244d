package closure_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/toolcrate/internal/closure"
	"github.com/vk/toolcrate/internal/inspect"
	"github.com/vk/toolcrate/internal/testutil"
)

// writeFile creates a throwaway file whose content is irrelevant; the fakes
// classify by basename.
func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o644))
}

func libListing(t *testing.T, libDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(libDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.Name() != ".collect.lock" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestCollect_TransitiveClosureNeedsMultiplePasses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// One executable depending on libfoo, which itself depends on libbar.
	// Neither is initially present: two copying passes plus the final
	// zero-copy pass that proves the fixed point.
	tmpDir := t.TempDir()
	staging := filepath.Join(tmpDir, "staging")
	writeFile(t, filepath.Join(staging, "bin", "mytool"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "libfoo.so"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "libbar.so"))

	resolver := &testutil.FakeResolver{Deps: map[string][]string{
		"mytool":    {filepath.Join(tmpDir, "hostlibs", "libfoo.so")},
		"libfoo.so": {filepath.Join(tmpDir, "hostlibs", "libbar.so")},
	}}
	inspector := testutil.FakeInspector{Loadable: map[string]inspect.Kind{
		"mytool":    inspect.KindExecutable,
		"libfoo.so": inspect.KindSharedLibrary,
		"libbar.so": inspect.KindSharedLibrary,
	}}

	collector := closure.New(resolver, inspector)

	report, err := collector.Collect(ctx, staging)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Copied, "exactly libfoo and libbar must be staged")
	assert.Equal(t, 3, report.Passes, "two copying passes and one zero-copy pass")
	assert.Equal(t, []string{"libbar.so", "libfoo.so"}, libListing(t, filepath.Join(staging, "lib")))
}

func TestCollect_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tmpDir := t.TempDir()
	staging := filepath.Join(tmpDir, "staging")
	writeFile(t, filepath.Join(staging, "bin", "mytool"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "libfoo.so"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "libbar.so"))

	deps := map[string][]string{
		"mytool":    {filepath.Join(tmpDir, "hostlibs", "libfoo.so")},
		"libfoo.so": {filepath.Join(tmpDir, "hostlibs", "libbar.so")},
	}
	loadable := map[string]inspect.Kind{
		"mytool":    inspect.KindExecutable,
		"libfoo.so": inspect.KindSharedLibrary,
		"libbar.so": inspect.KindSharedLibrary,
	}

	collector := closure.New(&testutil.FakeResolver{Deps: deps}, testutil.FakeInspector{Loadable: loadable})

	_, err := collector.Collect(ctx, staging)
	require.NoError(t, err)
	before := libListing(t, filepath.Join(staging, "lib"))

	// A second collection against the closed tree must detect the fixed
	// point immediately and change nothing.
	report, err := collector.Collect(ctx, staging)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Copied)
	assert.Equal(t, 1, report.Passes, "an already-closed tree converges on the first pass")
	if diff := cmp.Diff(before, libListing(t, filepath.Join(staging, "lib"))); diff != "" {
		t.Fatalf("library directory changed on re-collection (-before +after):\n%s", diff)
	}
}

func TestCollect_DeduplicatesByBasename(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Two executables pulling the same library from different directories:
	// only one copy may land in the flat library directory.
	tmpDir := t.TempDir()
	staging := filepath.Join(tmpDir, "staging")
	writeFile(t, filepath.Join(staging, "bin", "toolA"))
	writeFile(t, filepath.Join(staging, "bin", "toolB"))
	writeFile(t, filepath.Join(tmpDir, "libsA", "libshared.so"))
	writeFile(t, filepath.Join(tmpDir, "libsB", "libshared.so"))

	resolver := &testutil.FakeResolver{Deps: map[string][]string{
		"toolA": {filepath.Join(tmpDir, "libsA", "libshared.so")},
		"toolB": {filepath.Join(tmpDir, "libsB", "libshared.so")},
	}}
	inspector := testutil.FakeInspector{Loadable: map[string]inspect.Kind{
		"toolA":        inspect.KindExecutable,
		"toolB":        inspect.KindExecutable,
		"libshared.so": inspect.KindSharedLibrary,
	}}

	report, err := closure.New(resolver, inspector).Collect(ctx, staging)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, []string{"libshared.so"}, libListing(t, filepath.Join(staging, "lib")))
}

func TestCollect_NonLoadableFilesAreIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tmpDir := t.TempDir()
	staging := filepath.Join(tmpDir, "staging")
	writeFile(t, filepath.Join(staging, "share", "readme.txt"))
	writeFile(t, filepath.Join(staging, "share", "icon.png"))

	resolver := &testutil.FakeResolver{}
	report, err := closure.New(resolver, testutil.FakeInspector{}).Collect(ctx, staging)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Copied)
	assert.Equal(t, 0, resolver.Calls, "non-loadable files must never reach the resolver")
	assert.Equal(t, 0, report.InspectFailures)
}

func TestCollect_MissingStagingRootIsFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	collector := closure.New(&testutil.FakeResolver{}, testutil.FakeInspector{})
	_, err := collector.Collect(ctx, filepath.Join(t.TempDir(), "does-not-exist"))

	require.Error(t, err)
	assert.ErrorIs(t, err, closure.ErrStagingTreeUnavailable)
}

func TestCollect_PassCapGuardsConvergence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A three-link chain cannot converge within a two-pass cap.
	tmpDir := t.TempDir()
	staging := filepath.Join(tmpDir, "staging")
	writeFile(t, filepath.Join(staging, "bin", "mytool"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "liba.so"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "libb.so"))
	writeFile(t, filepath.Join(tmpDir, "hostlibs", "libc.so"))

	resolver := &testutil.FakeResolver{Deps: map[string][]string{
		"mytool":  {filepath.Join(tmpDir, "hostlibs", "liba.so")},
		"liba.so": {filepath.Join(tmpDir, "hostlibs", "libb.so")},
		"libb.so": {filepath.Join(tmpDir, "hostlibs", "libc.so")},
	}}
	inspector := testutil.FakeInspector{Loadable: map[string]inspect.Kind{
		"mytool":  inspect.KindExecutable,
		"liba.so": inspect.KindSharedLibrary,
		"libb.so": inspect.KindSharedLibrary,
		"libc.so": inspect.KindSharedLibrary,
	}}

	collector := closure.New(resolver, inspector, closure.WithMaxPasses(2))
	_, err := collector.Collect(ctx, staging)

	require.Error(t, err)
	assert.ErrorIs(t, err, closure.ErrDidNotConverge)
}
