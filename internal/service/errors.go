package service

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
