package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailure indicates a script bundle could not be split into module spans
	ParseFailure ErrorCode = "PARSE_FAILURE"
	// MissingOwnershipLink indicates an entry node or group root without a module
	MissingOwnershipLink ErrorCode = "MISSING_OWNERSHIP_LINK"
	// ThresholdViolation indicates a size exceeded its configured limit
	ThresholdViolation ErrorCode = "THRESHOLD_VIOLATION"
	// IOFailure indicates the report could not be read or persisted
	IOFailure ErrorCode = "IO_FAILURE"
	// ConfigInvalid indicates a malformed configuration value
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StatsInvalid indicates malformed build stats input
	StatsInvalid ErrorCode = "STATS_INVALID"
	// BuildFailed indicates the bundler reported errors
	BuildFailed ErrorCode = "BUILD_FAILED"
	// ReportNotFound indicates no report is available to serve
	ReportNotFound ErrorCode = "REPORT_NOT_FOUND"
	// ReportMismatch indicates two compared reports attribute sizes differently
	ReportMismatch ErrorCode = "REPORT_MISMATCH"
	// InvalidRequest indicates a malformed viewer request
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Severity separates warnings from errors in collected diagnostics
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ReportError represents a size report error with code, message and optional details
type ReportError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ReportError
func New(code ErrorCode, message string, cause error) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a ReportError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *ReportError {
	return &ReportError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *ReportError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ReportError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ReportError) WithDetails(details interface{}) *ReportError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first ReportError in err's chain
func CodeOf(err error) ErrorCode {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// Is reports whether err carries the given code
func Is(err error, code ErrorCode) bool {
	var re *ReportError
	return errors.As(err, &re) && re.Code == code
}

// ParseFailureMessage renders a bundle parse failure the way it is recorded in
// the build error list: missing files collapse to "no such file", anything
// else keeps its raw message.
func ParseFailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
		return "no such file"
	}
	return err.Error()
}

// ExitCode maps an error code to a process exit status
func ExitCode(code ErrorCode) int {
	switch code {
	case ThresholdViolation:
		return 3
	case ConfigInvalid, StatsInvalid:
		return 2
	case BuildFailed:
		return 4
	case IOFailure:
		return 5
	default:
		return 1
	}
}
