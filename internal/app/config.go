package app

import "errors"

// Commands understood by App.Run.
const (
	CmdBuild   = "build"
	CmdCollect = "collect"
	CmdWrap    = "wrap"
	CmdMatch   = "match"
	CmdDist    = "dist"
	CmdClean   = "clean"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string

	ConfigPath  string // build configuration file or directory
	StagingRoot string // parent of the per-platform staging trees
	DistRoot    string // distribution root receiving bundles and dispatchers

	// Tools and Platforms restrict build/collect to a subset. Empty means
	// all, announced explicitly in the log.
	Tools     []string
	Platforms []string

	// HostVersion overrides host probing for the match command.
	HostVersion string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config. Per-command flag requirements are enforced
// here so every execution path sees a coherent configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		return nil, errors.New("a command is required")
	}
	if cfg.ConfigPath == "" {
		return nil, errors.New("-config is a required flag and cannot be empty")
	}

	switch cfg.Command {
	case CmdBuild, CmdCollect, CmdClean:
		if cfg.StagingRoot == "" {
			return nil, errors.New("-staging is required for this command")
		}
	case CmdWrap:
		if cfg.DistRoot == "" {
			return nil, errors.New("-dist is required for this command")
		}
	case CmdDist:
		if cfg.DistRoot == "" {
			return nil, errors.New("-dist is required for this command")
		}
	case CmdMatch:
		// config only
	default:
		return nil, errors.New("unknown command " + cfg.Command)
	}

	return &cfg, nil
}
