package testutil

import (
	"context"
	"path/filepath"

	"github.com/vk/toolcrate/internal/inspect"
)

// FakeInspector classifies files by basename, standing in for real
// binary-header inspection. Unlisted files are not loadable.
type FakeInspector struct {
	Loadable map[string]inspect.Kind
}

// Inspect implements inspect.Inspector.
func (f FakeInspector) Inspect(path string) (*inspect.Object, error) {
	kind, ok := f.Loadable[filepath.Base(path)]
	if !ok {
		return nil, inspect.ErrNotLoadable
	}
	return &inspect.Object{Path: path, Format: "fake", Kind: kind}, nil
}

// FakeResolver maps object basenames to resolved dependency paths, standing
// in for the dynamic linker. Keying by basename means a staged library copy
// resolves the same way its origin did, which is exactly how ldd behaves for
// identical files.
type FakeResolver struct {
	Deps map[string][]string
	// Calls counts resolution requests, for pass-count assertions.
	Calls int
}

// ResolvedDeps implements closure.Resolver.
func (f *FakeResolver) ResolvedDeps(_ context.Context, objectPath string) ([]string, error) {
	f.Calls++
	return f.Deps[filepath.Base(objectPath)], nil
}
