package search

import "errors"

var (
	// ErrNoGlossaries reports a course without any glossary. Callers show it
	// as a notice rather than a failure.
	ErrNoGlossaries = errors.New("there are no glossaries in this course")
	// ErrInvalidCourse reports a course id that does not exist.
	ErrInvalidCourse = errors.New("invalid course id")
)
