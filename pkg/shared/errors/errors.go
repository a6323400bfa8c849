package errors

import "fmt"

// ToolExecutionError indicates the external lint tool could not be started or
// exited abnormally. It is never retried, the caller decides what to do.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("lint tool %q execution failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// NewToolExecutionError creates a ToolExecutionError for the given tool.
func NewToolExecutionError(tool string, err error) error {
	return &ToolExecutionError{Tool: tool, Err: err}
}

// MalformedOutputError indicates the tool ran but produced a buffer that does
// not decode as a finding list. Distinct from ToolExecutionError so callers
// can tell "tool produced garbage" from "tool did not run".
type MalformedOutputError struct {
	Tool string
	Err  error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("lint tool %q produced malformed output: %v", e.Tool, e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// NewMalformedOutputError creates a MalformedOutputError for the given tool.
func NewMalformedOutputError(tool string, err error) error {
	return &MalformedOutputError{Tool: tool, Err: err}
}

// FileTrackerError indicates tracking could not be established for a path,
// typically because the source file is unreadable. Callers must not treat
// this as "file unchanged".
type FileTrackerError struct {
	Path string
	Err  error
}

func (e *FileTrackerError) Error() string {
	return fmt.Sprintf("source %q unreadable: %v", e.Path, e.Err)
}

func (e *FileTrackerError) Unwrap() error {
	return e.Err
}

// NewFileTrackerError creates a FileTrackerError for the given path.
func NewFileTrackerError(path string, err error) error {
	return &FileTrackerError{Path: path, Err: err}
}
