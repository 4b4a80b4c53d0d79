package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote service errors
	ErrAuth       = fmt.Errorf("authentication failed")
	ErrFetch      = fmt.Errorf("fetch failed")
	ErrCreateTask = fmt.Errorf("task creation failed")

	// Backup codec errors
	ErrParse      = fmt.Errorf("malformed backup")
	ErrValidation = fmt.Errorf("invalid backup structure")

	// Import session errors
	ErrNoSelection = fmt.Errorf("no tasks selected")
	ErrNotVerified = fmt.Errorf("target account not verified")

	// Storage errors
	ErrNotFound = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
