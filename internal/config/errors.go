package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches every *FieldError returned by Validate.
	ErrInvalid = errors.New("invalid configuration")

	// ErrInvalidEnv is wrapped by errors for GLYPHCORE_ variables that do
	// not parse.
	ErrInvalidEnv = errors.New("invalid environment override")
)

// DecodeError reports TOML that could not be decoded. Line and Column are
// zero when the decoder gave no position.
type DecodeError struct {
	Source string
	Line   int
	Column int
	Err    error
}

func (e *DecodeError) Error() string {
	where := e.Source
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
		if e.Column > 0 {
			where = fmt.Sprintf("%s:%d", where, e.Column)
		}
	}
	return fmt.Sprintf("config %s: %v", where, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FieldError names a setting whose value was rejected.
type FieldError struct {
	Key    string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Key, e.Value, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalid }
