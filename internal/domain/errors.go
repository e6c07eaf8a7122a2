package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups errors by how the enrollment station reacts to them
type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindPermission ErrorKind = "permission"
	KindDetector   ErrorKind = "detector"
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindRegistry   ErrorKind = "registry"
)

type AppError struct {
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"-"`
	Err        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so sentinels keep working
// after WithError/WithMessage produced a copy.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Kind:       e.Kind,
		Err:        err,
	}
}

// WithMessage replaces the user-facing message, e.g. with one sourced from the registry
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Kind:       e.Kind,
		Err:        e.Err,
	}
}

// KindOf reports the kind of the first AppError in err's chain
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// UserMessage returns the message to show to the operator for err
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
		Kind:       KindInternal,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
		Kind:       KindValidation,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
		Kind:       KindValidation,
	}

	// Camera

	ErrCameraPermission = &AppError{
		Code:       "CAMERA_PERMISSION_DENIED",
		Message:    "Camera access was denied, check the camera permissions and retry",
		StatusCode: 403,
		Kind:       KindPermission,
	}

	ErrCameraUnavailable = &AppError{
		Code:       "CAMERA_UNAVAILABLE",
		Message:    "Camera could not be started",
		StatusCode: 503,
		Kind:       KindPermission,
	}

	ErrCameraInactive = &AppError{
		Code:       "CAMERA_INACTIVE",
		Message:    "Start the camera before enrolling",
		StatusCode: 409,
		Kind:       KindValidation,
	}

	// Detection

	ErrDetectorFailed = &AppError{
		Code:       "DETECTOR_FAILED",
		Message:    "Face detection failed, please retry",
		StatusCode: 503,
		Kind:       KindDetector,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected, face the camera and retry",
		StatusCode: 422,
		Kind:       KindValidation,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, make sure only one person is in view",
		StatusCode: 422,
		Kind:       KindValidation,
	}

	ErrIdentifierRequired = &AppError{
		Code:       "IDENTIFIER_REQUIRED",
		Message:    "Enter an identifier",
		StatusCode: 422,
		Kind:       KindValidation,
	}

	// Enrollment

	ErrFaceExists = &AppError{
		Code:       "FACE_ALREADY_EXISTS",
		Message:    "Identifier is already enrolled, confirm to overwrite it",
		StatusCode: 409,
		Kind:       KindConflict,
	}

	ErrOverwriteDeclined = &AppError{
		Code:       "OVERWRITE_DECLINED",
		Message:    "Enrollment cancelled, existing face kept",
		StatusCode: 409,
		Kind:       KindConflict,
	}

	ErrEnrollmentInProgress = &AppError{
		Code:       "ENROLLMENT_IN_PROGRESS",
		Message:    "An enrollment is already being processed",
		StatusCode: 409,
		Kind:       KindConflict,
	}

	ErrFaceNotFound = &AppError{
		Code:       "FACE_NOT_FOUND",
		Message:    "Face not found",
		StatusCode: 404,
		Kind:       KindValidation,
	}

	// Registry

	ErrRegistry = &AppError{
		Code:       "REGISTRY_ERROR",
		Message:    "The registry request failed, please retry",
		StatusCode: 502,
		Kind:       KindRegistry,
	}
)
