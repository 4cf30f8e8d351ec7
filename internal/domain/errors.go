package domain

import "fmt"

// ConfigError reports invalid construction parameters. It is raised before
// any work starts and is the only error a caller should treat as fatal.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

// BackendError wraps the last failure of a generation call after retries
// were exhausted.
type BackendError struct {
	Attempts int
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ParseError reports a model response that could not be decoded as JSON.
// Snippet carries the offending text, truncated, for diagnostics.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON from model: %v (snippet: %s)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
