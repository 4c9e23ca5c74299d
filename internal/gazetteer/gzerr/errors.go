// Package gzerr defines the typed error taxonomy shared across the
// gazetteer build and search pipeline.
package gzerr

import "fmt"

// ConfigError indicates an invalid build or corpus format descriptor.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// IOError indicates a file could not be opened, read, or decompressed.
type IOError struct {
	Message string
}

func (e *IOError) Error() string { return e.Message }

// ParseError indicates a corpus row could not be mapped to a
// (search_term, label) pair under the configured column indices.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// InternalInvariantError indicates an Index observed a structural
// invariant violation during insertion. Fatal — callers should abort.
type InternalInvariantError struct {
	Message string
}

func (e *InternalInvariantError) Error() string { return e.Message }

// ErrConfig creates a ConfigError with a formatted message.
func ErrConfig(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ErrIO creates an IOError with a formatted message.
func ErrIO(format string, args ...interface{}) *IOError {
	return &IOError{Message: fmt.Sprintf(format, args...)}
}

// ErrParse creates a ParseError with a formatted message.
func ErrParse(format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ErrInternalInvariant creates an InternalInvariantError with a formatted message.
func ErrInternalInvariant(format string, args ...interface{}) *InternalInvariantError {
	return &InternalInvariantError{Message: fmt.Sprintf(format, args...)}
}
