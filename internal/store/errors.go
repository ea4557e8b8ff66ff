package store

import "errors"

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrWrongPassword is returned by Verify on a password mismatch.
	ErrWrongPassword = errors.New("wrong password")
	// ErrDuplicateTitle is returned by Create when the post title exists.
	ErrDuplicateTitle = errors.New("title already exists")
	// ErrUnauthenticated is returned when a comment has no authenticated author.
	ErrUnauthenticated = errors.New("authentication required")
)
