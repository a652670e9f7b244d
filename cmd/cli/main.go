package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gookit/color"

	"github.com/vk/toolcrate/internal/app"
	"github.com/vk/toolcrate/internal/cli"
	"github.com/vk/toolcrate/internal/hcl"
)

// main is the entrypoint for the toolcrate application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		exitErr := cli.FromError(err)
		color.Fprintf(os.Stderr, "<red>toolcrate:</> %s\n", exitErr.Message)
		os.Exit(exitErr.Code)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					runErr = fmt.Errorf("a critical startup error occurred: %w", err)
					return
				}
				runErr = fmt.Errorf("a critical startup error occurred: %v", r)
			}
		}()

		// Instantiate the concrete HCL loader to pass to the app.
		loader := hcl.NewLoader()
		toolcrateApp := app.NewApp(outW, appConfig, loader)
		runErr = toolcrateApp.Run(context.Background())
	}()

	return runErr
}
