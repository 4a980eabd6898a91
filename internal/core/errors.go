package core

import "errors"

var (
	// ErrEmailExists is returned by CreateUser when the email is taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrUserNotFound is returned by user lookups that match nothing.
	ErrUserNotFound = errors.New("user not found")
)
