package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/toolcrate/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(output)
		return nil, true, nil
	}

	command := args[0]
	if strings.HasPrefix(command, "-") {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected a command, got flag %q; see 'toolcrate help'", command)}
	}

	flagSet := flag.NewFlagSet("toolcrate "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() { printUsage(output) }

	configFlag := flagSet.String("config", "", "Path to the build configuration file or directory.")
	stagingFlag := flagSet.String("staging", "", "Parent directory of the per-platform staging trees.")
	distFlag := flagSet.String("dist", "", "Distribution root receiving bundles and dispatchers.")
	toolsFlag := flagSet.String("tools", "", "Comma-separated tools to operate on. Default: all configured tools.")
	platformsFlag := flagSet.String("platforms", "", "Comma-separated platforms to operate on. Default: all configured platforms.")
	hostFlag := flagSet.String("host", "", "Override the host ABI version for 'match' (e.g. \"2.28\").")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Command:     command,
		ConfigPath:  *configFlag,
		StagingRoot: *stagingFlag,
		DistRoot:    *distFlag,
		Tools:       splitList(*toolsFlag),
		Platforms:   splitList(*platformsFlag),
		HostVersion: *hostFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printUsage(output io.Writer) {
	fmt.Fprint(output, `
toolcrate - packages third-party tools into self-contained, multi-platform
binary distributions.

Usage:
  toolcrate <command> [options]

Commands:
  build     Run tool build scripts in resolved priority order
  collect   Stage the transitive shared-library closure of built artifacts
  wrap      Generate the platform-dispatching wrapper scripts
  match     Print the platform profile this host is compatible with
  dist      Full pipeline: build, collect, and wrap into one dist root
  clean     Remove collected libraries from the staging trees

Options:
  -config PATH       Build configuration file or directory (required)
  -staging DIR       Per-platform staging tree parent (build/collect/clean)
  -dist DIR          Distribution root (wrap/dist)
  -tools a,b         Restrict to the named tools
  -platforms a,b     Restrict to the named platforms
  -host VER          Override the host ABI version for 'match'
  -log-format FMT    'text' or 'json'
  -log-level LVL     'debug', 'info', 'warn' or 'error'
`)
}
