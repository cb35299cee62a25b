package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrEmailTaken        = errors.New("email already exists")
	ErrIncorrectEmail    = errors.New("incorrect email")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrUserNotFound      = errors.New("user not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrGeneration        = errors.New("answer generation failed")
)
