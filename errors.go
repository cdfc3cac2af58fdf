package sysreptor

import "errors"

// Sentinel errors for library operations.
var (
	// Render orchestration errors.
	ErrRenderTimeout = errors.New("rendering timeout")
	ErrNoWorker      = errors.New("no rendering worker configured")
	ErrTaskFailed    = errors.New("rendering task failed")

	// Worker errors (in-process Chrome worker).
	ErrEmptyTemplate  = errors.New("report template cannot be empty")
	ErrTemplateRender = errors.New("template rendering failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Resolution errors. The formatter itself never returns these; user
	// stores signal a miss with ErrUserNotFound and the formatter degrades
	// the value to nil.
	ErrUserNotFound = errors.New("user not found")

	// Input validation errors.
	ErrNoProjectType = errors.New("project has no project type")
	ErrInvalidFormat = errors.New("invalid output format")
)
