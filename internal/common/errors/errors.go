package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode is a machine readable error class.
type ErrorCode string

const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeCampaignNotFound ErrorCode = "CAMPAIGN_NOT_FOUND"
	ErrCodeNotOwner         ErrorCode = "NOT_OWNER"
	ErrCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"

	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
	ErrCodeStorageError      ErrorCode = "STORAGE_ERROR"
	ErrCodeCacheError        ErrorCode = "CACHE_ERROR"
	ErrCodeExternalAPI       ErrorCode = "EXTERNAL_API_ERROR"
)

// Class groups codes that are logged and answered alike.
type Class int

const (
	ClassInternal Class = iota
	ClassInput
	ClassAuth
	ClassMissing
	ClassConflict
	ClassUpstream
)

type codeSpec struct {
	class  Class
	status int
}

var codeSpecs = map[ErrorCode]codeSpec{
	ErrCodeInternal:          {ClassInternal, http.StatusInternalServerError},
	ErrCodeDatabaseError:     {ClassInternal, http.StatusInternalServerError},
	ErrCodeTransactionFailed: {ClassInternal, http.StatusInternalServerError},
	ErrCodeStorageError:      {ClassInternal, http.StatusInternalServerError},
	ErrCodeCacheError:        {ClassInternal, http.StatusServiceUnavailable},
	ErrCodeValidation:        {ClassInput, http.StatusBadRequest},
	ErrCodeBadRequest:        {ClassInput, http.StatusBadRequest},
	ErrCodePayloadTooLarge:   {ClassInput, http.StatusRequestEntityTooLarge},
	ErrCodeTooManyRequests:   {ClassInput, http.StatusTooManyRequests},
	ErrCodeUnauthorized:      {ClassAuth, http.StatusUnauthorized},
	ErrCodeForbidden:         {ClassAuth, http.StatusForbidden},
	ErrCodeNotOwner:          {ClassAuth, http.StatusForbidden},
	ErrCodeNotFound:          {ClassMissing, http.StatusNotFound},
	ErrCodeUserNotFound:      {ClassMissing, http.StatusNotFound},
	ErrCodeCampaignNotFound:  {ClassMissing, http.StatusNotFound},
	ErrCodeConflict:          {ClassConflict, http.StatusConflict},
	ErrCodeExternalAPI:       {ClassUpstream, http.StatusBadGateway},
}

// ClassOf reports the class of code. Unknown codes are internal.
func ClassOf(code ErrorCode) Class {
	return codeSpecs[code].class
}

// StatusOf maps code to an HTTP status, 500 for unknown codes.
func StatusOf(code ErrorCode) int {
	if spec, ok := codeSpecs[code]; ok {
		return spec.status
	}
	return http.StatusInternalServerError
}

// AppError is a typed application error carried up to the HTTP layer.
// Origin holds file:line of the code that built it.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Origin    string                 `json:"-"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Class() Class { return ClassOf(e.Code) }

func (e *AppError) IsNotFound() bool     { return e.Class() == ClassMissing }
func (e *AppError) IsValidation() bool   { return e.Class() == ClassInput }
func (e *AppError) IsUnauthorized() bool { return e.Class() == ClassAuth }
func (e *AppError) IsInternal() bool     { return e.Class() == ClassInternal }

func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = map[string]string{}
	}
	e.Context[key] = value
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID string) *AppError {
	e.UserID = userID
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Origin:    origin(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// origin finds the first frame outside this package.
func origin() string {
	pcs := make([]uintptr, 8)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasSuffix(frame.File, "internal/common/errors/errors.go") {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewCampaignNotFoundError(campaignID string) *AppError {
	return New(ErrCodeCampaignNotFound, "campaign not found: "+campaignID).
		WithDetail("campaign_id", campaignID)
}

func NewUserNotFoundError(userID string) *AppError {
	return New(ErrCodeUserNotFound, "user not found: "+userID).
		WithDetail("user_id", userID)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, "unauthorized: "+reason).
		WithDetail("reason", reason)
}

func NewNotOwnerError(campaignID string) *AppError {
	return New(ErrCodeNotOwner, "you are not the owner of this campaign").
		WithDetail("campaign_id", campaignID)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "database operation failed: "+operation).
		WithDetail("operation", operation)
}

func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageError, "object storage operation failed: "+operation).
		WithDetail("operation", operation)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil && stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
