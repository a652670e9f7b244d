package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/toolcrate/internal/abi"
	"github.com/vk/toolcrate/internal/closure"
	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/ctxlog"
	"github.com/vk/toolcrate/internal/platform"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: the loaded model, the platform registry built from it, and the
// host prober used by matching.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	model    *config.Model
	registry *platform.Registry
	prober   abi.Prober

	// collector overrides the default ldd-backed collector; set by tests.
	collector *closure.Collector
}

// NewApp is the constructor for the main application. It loads and validates
// the build configuration eagerly; a failure to load config is a fatal
// startup error and panics, to be recovered by the entrypoint.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	var prober abi.Prober = abi.GlibcProber{}
	if cfg.HostVersion != "" {
		v, err := abi.Parse(cfg.HostVersion)
		if err != nil {
			// An explicit host version that does not parse is the same hard
			// failure as an unreadable live host.
			panic(fmt.Errorf("%w: %v", platform.ErrUnsupportedHost, err))
		}
		prober = abi.StaticProber{Version: v}
	}

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		model:    model,
		registry: platform.NewRegistry(model.Profiles),
		prober:   prober,
	}
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// SetProber overrides the host prober. This is primarily for testing.
func (a *App) SetProber(p abi.Prober) {
	a.prober = p
}

// SetCollector overrides the closure collector. This is primarily for testing.
func (a *App) SetCollector(c *closure.Collector) {
	a.collector = c
}
