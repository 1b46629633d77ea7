// Package types defines shared error and result types for the document
// translation pipeline.
package types

// DocumentFormat identifies the input format of a translation job.
type DocumentFormat string

const (
	FormatPDF   DocumentFormat = "pdf"
	FormatDocx  DocumentFormat = "docx"
	FormatPptx  DocumentFormat = "pptx"
	FormatAudio DocumentFormat = "audio"
)

// ErrorCode classifies pipeline failures.
type ErrorCode string

const (
	// ErrExtraction covers unsupported/legacy formats, corrupt containers
	// and empty input files. Fatal to the job.
	ErrExtraction ErrorCode = "EXTRACTION_ERROR"
	// ErrEmptyDocument means extraction succeeded but found no text blocks.
	ErrEmptyDocument ErrorCode = "EMPTY_DOCUMENT"
	// ErrTranslation is a per-block translation failure; always recovered.
	ErrTranslation ErrorCode = "TRANSLATION_ERROR"
	// ErrReconstruction covers output-side failures.
	ErrReconstruction ErrorCode = "RECONSTRUCTION_ERROR"
	ErrNetwork        ErrorCode = "NETWORK_ERROR"
	ErrConfig         ErrorCode = "CONFIG_ERROR"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternal       ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error type surfaced across package boundaries. Details
// carries the user-actionable part of the message (remediation hints for
// format confusions).
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
