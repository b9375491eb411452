package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrIntentNotFound     = errors.New("payment intent not found")
	ErrNoAuthorizedIntent = errors.New("booking has no authorized payment intent")
	ErrAlreadyAuthorized  = errors.New("booking already has an authorized intent")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMissingEventID     = errors.New("webhook payload is missing an event id")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

const (
	CodeIntentNotFound     = "INTENT_NOT_FOUND"
	CodeNoAuthorizedIntent = "NO_AUTHORIZED_INTENT"
	CodeGatewayError       = "GATEWAY_ERROR"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
	CodeMissingEventID     = "MISSING_EVENT_ID"
)

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

func NewNoAuthorizedIntentError(bookingID string) *PaymentError {
	return NewPaymentError(
		CodeNoAuthorizedIntent,
		fmt.Sprintf("booking %s has no authorized intent to act on", bookingID),
		ErrNoAuthorizedIntent,
	)
}

func NewGatewayError(op string, err error) *PaymentError {
	return NewPaymentError(
		CodeGatewayError,
		fmt.Sprintf("gateway %s failed", op),
		errors.Join(ErrGatewayUnavailable, err),
	)
}
