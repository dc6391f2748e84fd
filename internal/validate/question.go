// Package validate holds the input rules a question must satisfy before it
// is submitted.
package validate

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

const (
	MinQuestionLength = 10
	MaxQuestionLength = 500
)

var (
	ErrTooShort        = errors.New("question is shorter than 10 characters")
	ErrTooLong         = errors.New("question is longer than 500 characters")
	ErrDisallowedChars = errors.New("question contains disallowed characters")
)

var allowedChars = regexp.MustCompile(`^[a-zA-Z0-9\s.,?!]+$`)

// Question checks length and character set.
func Question(q string) error {
	n := utf8.RuneCountInString(q)
	switch {
	case n < MinQuestionLength:
		return ErrTooShort
	case n > MaxQuestionLength:
		return ErrTooLong
	case !allowedChars.MatchString(q):
		return ErrDisallowedChars
	}
	return nil
}

// Message returns the user-facing text for a validation error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooShort), errors.Is(err, ErrTooLong):
		return "Question must be between 10 and 500 characters."
	case errors.Is(err, ErrDisallowedChars):
		return "Question contains disallowed characters."
	default:
		return err.Error()
	}
}
