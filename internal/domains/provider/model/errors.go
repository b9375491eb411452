package model

import "errors"

var (
	ErrProviderNotFound  = errors.New("provider not found")
	ErrAlreadyRegistered = errors.New("provider profile already exists")
)
