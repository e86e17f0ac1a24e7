// Package common holds error values shared by the storage layers of the
// individual apps.
package common

import "errors"

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("webcourse: record not found")
	// ErrDuplicate is returned when a value collides with a unique column
	// (teacher/student email, author name, book ISBN).
	ErrDuplicate = errors.New("webcourse: duplicate value for unique field")
	// ErrForeignKey is returned when a record references a parent that does
	// not exist (teacher/student → course, book → author).
	ErrForeignKey = errors.New("webcourse: referenced record does not exist")
)
