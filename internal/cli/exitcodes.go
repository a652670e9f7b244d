package cli

import (
	"errors"

	"github.com/vk/toolcrate/internal/closure"
	"github.com/vk/toolcrate/internal/config"
	"github.com/vk/toolcrate/internal/platform"
	"github.com/vk/toolcrate/internal/wrapper"
)

// Process exit codes, one per error category. Calling automation branches on
// these; keep them stable.
const (
	ExitOK                     = 0
	ExitInternal               = 1
	ExitUsage                  = 2
	ExitInvalidBuildOrder      = 3
	ExitUnsupportedHost        = 4
	ExitCorruptDistribution    = 5
	ExitClosureDidNotConverge  = 6
	ExitStagingTreeUnavailable = 7
)

// FromError maps an application error onto its ExitError. Errors already
// carrying an exit code pass through unchanged; unrecognized errors become
// ExitInternal.
func FromError(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := ExitInternal
	switch {
	case errors.Is(err, config.ErrInvalidBuildOrder):
		code = ExitInvalidBuildOrder
	case errors.Is(err, platform.ErrUnsupportedHost):
		code = ExitUnsupportedHost
	case errors.Is(err, wrapper.ErrCorruptDistribution):
		code = ExitCorruptDistribution
	case errors.Is(err, closure.ErrDidNotConverge):
		code = ExitClosureDidNotConverge
	case errors.Is(err, closure.ErrStagingTreeUnavailable):
		code = ExitStagingTreeUnavailable
	}

	return &ExitError{Code: code, Message: err.Error()}
}
