package main

import (
	"errors"
	"os"

	sysreptor "github.com/5urpriser/sysreptor"
	"github.com/5urpriser/sysreptor/internal/config"
)

// Exit codes for reptor-render.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Report rendered
	ExitGeneral = 1 // General/unexpected error, or error-level render messages
	ExitUsage   = 2 // Invalid flags, config, or documents
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/worker errors
	ExitTimeout = 5 // Render exceeded the time limit
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Timeout (exit 5)
	if errors.Is(err, sysreptor.ErrRenderTimeout) {
		return ExitTimeout
	}

	// Browser/worker errors (exit 4)
	if errors.Is(err, sysreptor.ErrBrowserConnect) ||
		errors.Is(err, sysreptor.ErrPageCreate) ||
		errors.Is(err, sysreptor.ErrPageLoad) ||
		errors.Is(err, sysreptor.ErrPDFGeneration) ||
		errors.Is(err, sysreptor.ErrNoWorker) ||
		errors.Is(err, sysreptor.ErrTaskFailed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDocument) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/document errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidSetting) ||
		errors.Is(err, sysreptor.ErrEmptyTemplate) ||
		errors.Is(err, sysreptor.ErrInvalidFormat) ||
		errors.Is(err, sysreptor.ErrNoProjectType) ||
		errors.Is(err, ErrParseDocument) ||
		errors.Is(err, ErrQueueUnavailable) {
		return ExitUsage
	}

	return ExitGeneral
}
