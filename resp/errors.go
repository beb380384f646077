package resp

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for RESP protocol operations.
// These errors help clients determine appropriate error handling strategy,
// particularly regarding connection management (close vs. reuse).

// InvalidArgumentError is returned when an argument fails client-side
// validation before anything is written to the wire.
//
// Common causes:
//   - Empty key
//   - Bit value other than 0/1 or bool
//   - Unknown bit operation or existence mode token
//   - Empty key list or key/value pair list
//   - Violated presence constraint between optional arguments
//
// Connection handling: connection is untouched, the command was never sent
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Message
}

// ShouldCloseConnection returns false - nothing reached the connection
func (e *InvalidArgumentError) ShouldCloseConnection() bool {
	return false
}

// IsInvalidArgument reports whether err is a client-side validation failure.
func IsInvalidArgument(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

// CommandError represents an error reply from the server (-ERR, -WRONGTYPE,
// -EXECABORT, ...). The protocol exchange itself succeeded: the reply was
// well-formed, the server rejected the command.
//
// Connection handling: connection can be REUSED, protocol state is intact
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// Code returns the leading upper-case word of the error message
// ("ERR", "WRONGTYPE", ...), or "" if there is none.
func (e *CommandError) Code() string {
	word, _, _ := strings.Cut(e.Message, " ")
	if word != strings.ToUpper(word) {
		return ""
	}
	return word
}

// ShouldCloseConnection returns false - error replies don't corrupt protocol state
func (e *CommandError) ShouldCloseConnection() bool {
	return false
}

// ParseError represents a client-side parsing error.
// Indicates the client failed to parse the server reply, which suggests
// either a protocol violation by the server or a bug in the client parser.
//
// Connection handling: connection should be CLOSED as state is uncertain
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "parse error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - parse errors indicate corrupted state
func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps underlying I/O errors from connection operations.
// Used to distinguish network/connection issues from protocol errors.
//
// Connection handling: connection is already broken, CLOSE it
type ConnectionError struct {
	Op  string // Operation that failed (read, write, dial, ...)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is an interface for errors that indicate
// whether the connection should be closed.
// Implemented by all protocol error types.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection is a helper function to determine if an error
// requires closing the connection.
//
// Returns true for:
//   - ParseError
//   - ConnectionError
//   - unknown error types (conservative)
//
// Returns false for:
//   - InvalidArgumentError
//   - CommandError
//   - nil
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}
