package errors

import (
	"errors"
	"fmt"
)

// Domain enumerates the possible error domains
type Domain string

const (
	DomainHarness Domain = "harness"
	DomainProxy   Domain = "proxy"
	DomainProcfs  Domain = "procfs"
	DomainReport  Domain = "report"
	DomainStore   Domain = "store"
	DomainBuild   Domain = "build"
)

// Code enumerates possible error codes for each domain
type Code string

// Harness error codes
const (
	CodeInvalidSuite  Code = "invalid_suite"
	CodeRoundFailed   Code = "round_failed"
	CodeRoundTimeout  Code = "round_timeout"
	CodeRunCancelled  Code = "run_cancelled"
	CodeInternalError Code = "internal_error"
)

// Proxy error codes
const (
	CodeStartFailed  Code = "start_failed"
	CodeNotReady     Code = "not_ready"
	CodeProcessGone  Code = "process_gone"
	CodePidNotFound  Code = "pid_not_found"
	CodeAdminFailed  Code = "admin_failed"
	CodeAlreadyGone  Code = "already_stopped"
)

// Procfs error codes
const (
	CodeStatusUnreadable Code = "status_unreadable"
	CodeFieldMissing     Code = "field_missing"
	CodeMalformedLine    Code = "malformed_line"
)

// Report error codes
const (
	CodeReportNotFound  Code = "report_not_found"
	CodeMalformedReport Code = "malformed_report"
	CodeEmptyReport     Code = "empty_report"
)

// Store error codes
const (
	CodeRunNotFound Code = "run_not_found"
	CodeStoreError  Code = "store_error"
)

// Build error codes
const (
	CodeUnknownBackend  Code = "unknown_backend"
	CodeBuildFailed     Code = "build_failed"
	CodeArtifactMissing Code = "artifact_missing"
	CodeMissingTooling  Code = "missing_tooling"
)

// DomainError represents a domain-specific error.
type DomainError struct {
	// The error domain (harness, proxy, procfs, etc.)
	ErrDomain Domain

	// Error code unique within the domain
	ErrCode Code

	// Human-readable error message
	Message string

	// Optional fields for context
	Backend   string
	Instances int
	Details   map[string]interface{}

	// Original error that caused this one, if any
	Cause error
}

// Error returns the error message.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.ErrDomain, e.ErrCode, e.Message)

	// Add round details if available
	if e.Backend != "" {
		if e.Instances > 0 {
			msg = fmt.Sprintf("%s (round: %s, %d instances)", msg, e.Backend, e.Instances)
		} else {
			msg = fmt.Sprintf("%s (backend: %s)", msg, e.Backend)
		}
	}

	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

// Unwrap returns the cause of this error
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// New creates a new DomainError.
func New(domain Domain, code Code, message string) *DomainError {
	return &DomainError{
		ErrDomain: domain,
		ErrCode:   code,
		Message:   message,
	}
}

// WithBackend adds backend context to the error
func (e *DomainError) WithBackend(backend string) *DomainError {
	e.Backend = backend
	return e
}

// WithInstances adds the instance count of the failing round
func (e *DomainError) WithInstances(n int) *DomainError {
	e.Instances = n
	return e
}

// WithCause adds the causing error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetails adds additional context details
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// Wrap wraps an error with domain context.
func Wrap(domain Domain, code Code, message string, err error) *DomainError {
	return &DomainError{
		ErrDomain: domain,
		ErrCode:   code,
		Message:   message,
		Cause:     err,
	}
}

// Is checks if an error is a DomainError with the specified domain and code.
func Is(err error, domain Domain, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.ErrDomain == domain && de.ErrCode == code
	}
	return false
}

// Common proxy errors
var (
	ErrProxyNotReady = New(DomainProxy, CodeNotReady, "Proxy did not report readiness in time")
	ErrPidNotFound   = New(DomainProxy, CodePidNotFound, "No proxy process found for binary")
)

// Common harness errors
var (
	ErrRoundTimeout = New(DomainHarness, CodeRoundTimeout, "Benchmark round timed out")
	ErrRunCancelled = New(DomainHarness, CodeRunCancelled, "Benchmark run was cancelled")
)

// Common store errors
var (
	ErrRunNotFound = New(DomainStore, CodeRunNotFound, "Run not found in history")
)
