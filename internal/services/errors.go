package services

import "errors"

// Cleaning service errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("file not found")

	// Upload errors
	ErrNoFilename = errors.New("uploaded file has no name")

	// Cleaning errors
	ErrInvalidOptions = errors.New("invalid cleaning options")

	// Export errors
	ErrExportNotFound = errors.New("cleaned file not found")
	ErrInvalidFormat  = errors.New("invalid format, use 'csv' or 'xlsx'")

	// Issue cleaning errors
	ErrNoIssuesSelected = errors.New("no issues selected")
)
