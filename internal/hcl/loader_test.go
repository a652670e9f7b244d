package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/toolcrate/internal/config"
)

// writeConfig drops HCL sources into a fresh directory and returns its path.
func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const validConfig = `
platform "el9" {
  abi_min = "2.34"
  abi_max = "2.39"
}

platform "el8" {
  abi_min = "2.28"
  abi_max = "2.33"
}

tool "nvim" {
  order  = 0
  script = "scripts/build-nvim.sh"
}

tool "nvim" {
  order  = 2
  script = "scripts/build-nvim-musl.sh"
}

wrapper "nvim" {
  candidate {
    platform    = "el9"
    path        = "bin/nvim"
    runtime_env = true
  }
  candidate {
    platform = "el8"
    path     = "bin/nvim"
  }
}
`

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := writeConfig(t, map[string]string{"crate.hcl": validConfig})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)

	require.Len(t, model.Profiles, 2)
	assert.Equal(t, "el9", model.Profiles[0].ID, "declaration order is priority order")
	assert.Equal(t, "2.34", model.Profiles[0].ABIMin.String())
	assert.Equal(t, "2.39", model.Profiles[0].ABIMax.String())

	require.Len(t, model.Builds, 2)
	assert.Equal(t, 0, model.Builds[0].Order)
	assert.Equal(t, 2, model.Builds[1].Order)

	require.Len(t, model.Wrappers, 1)
	require.Len(t, model.Wrappers[0].Candidates, 2)
	assert.True(t, model.Wrappers[0].Candidates[0].RuntimeEnv)
	assert.False(t, model.Wrappers[0].Candidates[1].RuntimeEnv)
}

func TestLoad_SingleFilePath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := writeConfig(t, map[string]string{"crate.hcl": validConfig})

	model, err := NewLoader().Load(ctx, filepath.Join(dir, "crate.hcl"))
	require.NoError(t, err)
	assert.Len(t, model.Profiles, 2)
}

func TestLoad_PreservesOrderAcrossFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Recursive directory scan sorts by path, so file name order is
	// declaration order.
	dir := writeConfig(t, map[string]string{
		"01-platforms.hcl": `
platform "new" {
  abi_min = "2.34"
  abi_max = "2.39"
}
`,
		"02-more.hcl": `
platform "old" {
  abi_min = "2.17"
  abi_max = "2.33"
}
`,
	})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, model.Profiles, 2)
	assert.Equal(t, "new", model.Profiles[0].ID)
	assert.Equal(t, "old", model.Profiles[1].ID)
}

func TestLoad_InvalidOrderHints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	testCases := []struct {
		name  string
		order string
	}{
		{name: "fractional", order: "1.5"},
		{name: "negative", order: "-1"},
		{name: "string", order: `"first"`},
		{name: "boolean", order: "true"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeConfig(t, map[string]string{"crate.hcl": `
tool "nvim" {
  order  = ` + tc.order + `
  script = "build.sh"
}
`})

			_, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalidBuildOrder)
			assert.Contains(t, err.Error(), "nvim", "the diagnostic must name the offending tool")
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	testCases := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "duplicate platform id",
			config: `
platform "el9" {
  abi_min = "2.34"
  abi_max = "2.39"
}
platform "el9" {
  abi_min = "2.28"
  abi_max = "2.33"
}
`,
			wantErr: "duplicate platform",
		},
		{
			name: "malformed abi_min",
			config: `
platform "el9" {
  abi_min = "new"
  abi_max = "2.39"
}
`,
			wantErr: "invalid abi_min",
		},
		{
			name: "inverted abi range",
			config: `
platform "el9" {
  abi_min = "2.39"
  abi_max = "2.34"
}
`,
			wantErr: "exceeds abi_max",
		},
		{
			name: "empty build script",
			config: `
tool "nvim" {
  order  = 0
  script = ""
}
`,
			wantErr: "script must not be empty",
		},
		{
			name: "wrapper references unknown platform",
			config: `
wrapper "nvim" {
  candidate {
    platform = "ghost"
    path     = "bin/nvim"
  }
}
`,
			wantErr: `unknown platform "ghost"`,
		},
		{
			name: "wrapper without candidates",
			config: `
wrapper "nvim" {
}
`,
			wantErr: "declares no candidates",
		},
		{
			name: "duplicate wrapper",
			config: `
platform "el9" {
  abi_min = "2.34"
  abi_max = "2.39"
}
wrapper "nvim" {
  candidate {
    platform = "el9"
    path     = "bin/nvim"
  }
}
wrapper "nvim" {
  candidate {
    platform = "el9"
    path     = "bin/nvim"
  }
}
`,
			wantErr: "duplicate wrapper",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeConfig(t, map[string]string{"crate.hcl": tc.config})

			_, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := writeConfig(t, map[string]string{"broken.hcl": `platform "el9" {`})

	_, err := NewLoader().Load(ctx, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := NewLoader().Load(ctx, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl configuration files")
}
