package model

import (
	"errors"
	"fmt"
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeStatusDrift           = "STATUS_DRIFT"
	CodeNotACandidate         = "NOT_A_CANDIDATE"
	CodeOwnedByOtherProvider  = "OWNED_BY_OTHER_PROVIDER"
	CodeInvalidOTP            = "INVALID_OTP"
	CodeGraceExpired          = "GRACE_EXPIRED"
	CodeCaptureFailed         = "CAPTURE_FAILED"
	CodeBookingNotFound       = "BOOKING_NOT_FOUND"
	CodeForbidden             = "FORBIDDEN"
	CodeValidation            = "VALIDATION_ERROR"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidTransition    = errors.New("transition not permitted")
	ErrStatusDrift          = errors.New("booking status changed concurrently")
	ErrNotACandidate        = errors.New("provider is not a dispatch candidate")
	ErrOwnedByOtherProvider = errors.New("booking is claimed by another provider")
	ErrInvalidOTP           = errors.New("invalid OTP")
	ErrGraceExpired         = errors.New("grace window closed")
	ErrCaptureFailed        = errors.New("payment capture failed")
	ErrNotOwner             = errors.New("booking belongs to another customer")
)

// =====================================================
// CUSTOM BOOKING ERROR
// =====================================================

type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewBookingError(code, message string, err error) *BookingError {
	return &BookingError{Code: code, Message: message, Err: err}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewInvalidTransitionError(from, to string, role Role) *BookingError {
	return NewBookingError(
		CodeInvalidTransition,
		fmt.Sprintf("cannot move booking from %s to %s as %s", from, to, role),
		ErrInvalidTransition,
	)
}

func NewStatusDriftError(expected, actual string) *BookingError {
	return NewBookingError(
		CodeStatusDrift,
		fmt.Sprintf("expected status %s, found %s", expected, actual),
		ErrStatusDrift,
	)
}

func NewNotACandidateError(uid string) *BookingError {
	return NewBookingError(
		CodeNotACandidate,
		fmt.Sprintf("provider %s is not on the candidate list", uid),
		ErrNotACandidate,
	)
}

func NewOwnedByOtherProviderError() *BookingError {
	return NewBookingError(
		CodeOwnedByOtherProvider,
		"booking is claimed by another provider",
		ErrOwnedByOtherProvider,
	)
}

func NewInvalidOTPError() *BookingError {
	return NewBookingError(CodeInvalidOTP, "supplied OTP does not match", ErrInvalidOTP)
}

func NewGraceExpiredError() *BookingError {
	return NewBookingError(CodeGraceExpired, "grace window closed", ErrGraceExpired)
}

func NewCaptureFailedError(err error) *BookingError {
	return NewBookingError(CodeCaptureFailed, "payment capture failed; retry complete", errors.Join(ErrCaptureFailed, err))
}

func NewForbiddenError(msg string) *BookingError {
	return NewBookingError(CodeForbidden, msg, ErrNotOwner)
}

func NewNotFoundError() *BookingError {
	return NewBookingError(CodeBookingNotFound, "booking not found", ErrBookingNotFound)
}
