package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidInput is matched by every validation failure in this package.
var ErrInvalidInput = errors.New("invalid input")

// invalid wraps ErrInvalidInput with a client-facing message.
func invalid(msg string) error {
	return &InputError{Msg: msg}
}

// InputError is a validation failure.  errors.Is(err, ErrInvalidInput)
// holds for every InputError.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// lengthRule pairs an optional value with the character limit of its
// VARCHAR column.
type lengthRule struct {
	field string
	value *string
	max   int
}

func checkLengths(rules ...lengthRule) error {
	for _, r := range rules {
		if r.value != nil && utf8.RuneCountInString(*r.value) > r.max {
			return invalid(fmt.Sprintf("%s must be at most %d characters", r.field, r.max))
		}
	}
	return nil
}
