// Package testutil provides shared helpers for package tests: a thread-safe
// log buffer, an app harness over a temporary workspace, and fake closure
// inspection/resolution implementations.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/toolcrate/internal/app"
	"github.com/vk/toolcrate/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an app-level test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Workspace string
}

// RunApp provides a standardized harness for app-level tests. It writes the
// given files (relative paths, "config.hcl" among them) into a temporary
// workspace, builds an App over it, and runs the given command. Staging and
// dist roots point into the workspace. A startup panic is recovered into
// HarnessResult.Err.
// Optional setup functions run against the constructed App before Run, for
// injecting fakes.
func RunApp(t *testing.T, files map[string]string, mutate func(*app.Config), setup ...func(*app.App)) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, mutate, setup...)
}

// RunAppWithContext is RunApp with a caller-provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, mutate func(*app.Config), setup ...func(*app.App)) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	appConfig := &app.Config{
		Command:     app.CmdMatch,
		ConfigPath:  filepath.Join(tmpDir, "config.hcl"),
		StagingRoot: filepath.Join(tmpDir, "staging"),
		DistRoot:    filepath.Join(tmpDir, "dist"),
		LogLevel:    "debug",
		LogFormat:   "text",
	}
	if mutate != nil {
		mutate(appConfig)
	}

	logBuffer := &SafeBuffer{}
	result := &HarnessResult{Workspace: tmpDir}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		result.App = app.NewApp(logBuffer, appConfig, hcl.NewLoader())
	}()

	if result.Err == nil {
		for _, fn := range setup {
			fn(result.App)
		}
		result.Err = result.App.Run(ctx)
	}

	result.LogOutput = logBuffer.String()
	return result
}
