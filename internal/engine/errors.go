package engine

import (
	"errors"
	"fmt"
)

// Errors returned by TextStore operations.
var (
	// ErrPasteTooLarge indicates an insert exceeded the paste size limit.
	ErrPasteTooLarge = errors.New("paste exceeds size limit")

	// ErrFileTooLarge indicates a load exceeded the file size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrInvalidEncoding is wrapped by an *IOError when bytes cannot be
	// converted between the file encoding and UTF-8 without loss.
	ErrInvalidEncoding = errors.New("content does not round-trip through its encoding")
)

// LimitKind identifies which size ceiling was exceeded.
type LimitKind uint8

const (
	// LimitPaste is the ceiling applied to a single insert.
	LimitPaste LimitKind = iota
	// LimitFile is the ceiling applied to Load.
	LimitFile
)

// String returns the limit name.
func (k LimitKind) String() string {
	switch k {
	case LimitPaste:
		return "paste"
	case LimitFile:
		return "file"
	default:
		return "unknown"
	}
}

// SizeLimitError reports input that exceeded a configured ceiling.
// The store is left unmodified when it is returned.
type SizeLimitError struct {
	Kind  LimitKind
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s size %d exceeds limit %d", e.Kind, e.Size, e.Limit)
}

// Is matches ErrPasteTooLarge or ErrFileTooLarge according to Kind.
func (e *SizeLimitError) Is(target error) bool {
	switch e.Kind {
	case LimitPaste:
		return target == ErrPasteTooLarge
	case LimitFile:
		return target == ErrFileTooLarge
	}
	return false
}

// IOError wraps a read or write failure. The store is left unmodified.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}
