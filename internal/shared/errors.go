package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Store and service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPrincipalNotFound  = fmt.Errorf("auth principal not found")
	ErrEmailExists        = fmt.Errorf("email already registered")
	ErrProfileExists      = fmt.Errorf("profile document already exists")
	ErrProfileWrite       = fmt.Errorf("profile write failed")

	// Run-level errors
	ErrEnumerationFailed = fmt.Errorf("failed to enumerate source records")
	ErrReportPersistence = fmt.Errorf("failed to persist migration report")
	ErrRecordsFailed     = fmt.Errorf("one or more records failed to migrate")
	ErrInterrupted       = fmt.Errorf("run interrupted")
	ErrRunNotFound       = fmt.Errorf("run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
