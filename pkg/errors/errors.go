package errors

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrType represents different types of errors
type ErrType string

const (
	// ErrTypeConfig represents configuration errors, including a missing server identifier
	ErrTypeConfig ErrType = "config"
	// ErrTypeValidation represents validation errors
	ErrTypeValidation ErrType = "validation"
	// ErrTypeAWS represents AWS service errors
	ErrTypeAWS ErrType = "aws"
	// ErrTypeSSM represents SSM command errors
	ErrTypeSSM ErrType = "ssm"
	// ErrTypeNotFound represents lookups that matched nothing
	ErrTypeNotFound ErrType = "not_found"
)

// IISError represents an iisctl error with context
type IISError struct {
	Type       ErrType
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *IISError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s error: %s (caused by: %v)", e.Type, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *IISError) Unwrap() error {
	return e.Underlying
}

// New creates a new IISError
func New(errType ErrType, message string) *IISError {
	return &IISError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an IISError
func Wrap(errType ErrType, message string, err error) *IISError {
	return &IISError{
		Type:       errType,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *IISError) WithContext(key string, value interface{}) *IISError {
	e.Context[key] = value
	return e
}

// GetContext returns context value
func (e *IISError) GetContext(key string) (interface{}, bool) {
	val, exists := e.Context[key]
	return val, exists
}

// IsType reports whether any IISError in err's chain has the given type
func IsType(err error, errType ErrType) bool {
	var iisErr *IISError
	for err != nil {
		if !errors.As(err, &iisErr) {
			return false
		}
		if iisErr.Type == errType {
			return true
		}
		err = iisErr.Underlying
	}
	return false
}

// AWSErrorCode returns the API error code carried by an AWS SDK error, or "" if there is none
func AWSErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// Common error constructors

func NewConfigError(message string, err error) *IISError {
	if err != nil {
		return Wrap(ErrTypeConfig, message, err)
	}
	return New(ErrTypeConfig, message)
}

func NewSSMError(message string, err error) *IISError {
	if err != nil {
		return Wrap(ErrTypeSSM, message, err).WithContext("aws_code", AWSErrorCode(err))
	}
	return New(ErrTypeSSM, message)
}

func NewAWSError(message string, err error) *IISError {
	if err != nil {
		return Wrap(ErrTypeAWS, message, err).WithContext("aws_code", AWSErrorCode(err))
	}
	return New(ErrTypeAWS, message)
}

func NewNotFoundError(message string) *IISError {
	return New(ErrTypeNotFound, message)
}

func NewValidationError(message string) *IISError {
	return New(ErrTypeValidation, message)
}
