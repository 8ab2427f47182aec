package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
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
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"

	// ErrCodeOK is the zero code returned by GetCode for a nil error.
	ErrCodeOK ErrorCode = "OK"

	// ErrCodeUnknown is returned by GetCode when the chain carries no AppError.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// Dataset / ingestion error codes.
const (
	ErrCodeDatasetNotFound   ErrorCode = "DATA_001"
	ErrCodeDatasetEmpty      ErrorCode = "DATA_002"
	ErrCodeSourceFetchFailed ErrorCode = "DATA_003"
	ErrCodeSourceParseFailed ErrorCode = "DATA_004"
	ErrCodeImportFailed      ErrorCode = "DATA_005"
	ErrCodeStaleImport       ErrorCode = "DATA_006"
)

// Geographic resolution error codes.
const (
	ErrCodeUnknownSector   ErrorCode = "GEO_001"
	ErrCodeInvalidYear     ErrorCode = "GEO_002"
	ErrCodeInvalidLanguage ErrorCode = "GEO_003"
)

// httpStatusByCode maps error codes onto HTTP status codes for the interface
// layer. Codes not listed here map to 500.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeUnknownSector:      http.StatusBadRequest,
	ErrCodeInvalidYear:        http.StatusBadRequest,
	ErrCodeInvalidLanguage:    http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeDatasetNotFound:    http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeStaleImport:        http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeDatasetEmpty:       http.StatusOK,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
