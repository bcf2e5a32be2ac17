package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeMessagingError     ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Input error codes.  These are the only fatal failures of an analyze call:
// they are returned to the caller before any analyzer runs.
const (
	ErrCodeInputEmpty    ErrorCode = "INP_001"
	ErrCodeInputTooLarge ErrorCode = "INP_002"
	ErrCodeInputEncoding ErrorCode = "INP_003"
)

// Analyzer error codes.  All recoverable: the pipeline continues with
// partial data and surfaces them as warnings on the AnalysisResult.
const (
	ErrCodeAnalyzerDegraded    ErrorCode = "ANL_001"
	ErrCodeAnalyzerUnavailable ErrorCode = "ANL_002"
	ErrCodeAnalyzerTimeout     ErrorCode = "ANL_003"
	ErrCodePartiallyChecked    ErrorCode = "ANL_004"
)

// Reconciliation and scoring error codes.
const (
	ErrCodeReconcileFailed   ErrorCode = "REC_001"
	ErrCodeInvalidSpan       ErrorCode = "REC_002"
	ErrCodeScoreOutOfRange   ErrorCode = "SCR_001"
	ErrCodeScorePersistError ErrorCode = "SCR_002"
)

// Short aliases used throughout the codebase.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeTimeout      = ErrCodeTimeout
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeInputEmpty:    http.StatusBadRequest,
	ErrCodeInputTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInputEncoding: http.StatusBadRequest,

	ErrCodeAnalyzerDegraded:    http.StatusOK,
	ErrCodeAnalyzerUnavailable: http.StatusOK,
	ErrCodeAnalyzerTimeout:     http.StatusOK,
	ErrCodePartiallyChecked:    http.StatusOK,

	ErrCodeReconcileFailed:   http.StatusInternalServerError,
	ErrCodeInvalidSpan:       http.StatusInternalServerError,
	ErrCodeScoreOutOfRange:   http.StatusInternalServerError,
	ErrCodeScorePersistError: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default human-readable messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "message publish failed",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeInputEmpty:    "submission text is empty",
	ErrCodeInputTooLarge: "submission text exceeds the size limit",
	ErrCodeInputEncoding: "submission text is not valid UTF-8",

	ErrCodeAnalyzerDegraded:    "analyzer returned a degraded result",
	ErrCodeAnalyzerUnavailable: "analyzer backend unavailable",
	ErrCodeAnalyzerTimeout:     "analyzer did not complete in time",
	ErrCodePartiallyChecked:    "sentence was only partially checked",

	ErrCodeReconcileFailed:   "issue reconciliation failed",
	ErrCodeInvalidSpan:       "issue span is out of bounds",
	ErrCodeScoreOutOfRange:   "session score out of range",
	ErrCodeScorePersistError: "failed to persist score record",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsFatal reports whether an ErrorCode aborts the whole analyze call.
// Only malformed input is fatal; every analyzer-side failure is recoverable.
func IsFatal(code ErrorCode) bool {
	return strings.HasPrefix(string(code), "INP_")
}

// IsRecoverable reports whether an ErrorCode represents a degraded-but-usable
// analyzer outcome that should be surfaced as a warning, not an error.
func IsRecoverable(code ErrorCode) bool {
	return strings.HasPrefix(string(code), "ANL_")
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
