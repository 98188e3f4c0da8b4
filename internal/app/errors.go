package app

import (
	"errors"
	"fmt"
)

var (
	// ErrQuit is returned by HandleEvent for a quit key. Run treats it as a
	// normal exit.
	ErrQuit = errors.New("quit")

	ErrAlreadyRunning = errors.New("app: loop already running")
	ErrNoFilePath     = errors.New("app: document has no path")

	// ErrNoSnapshot is returned by RunHeadless when the frame producer has
	// no offscreen surface to encode.
	ErrNoSnapshot = errors.New("app: no offscreen surface to snapshot")
)

// InitError wraps the failure of one bootstrap step.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// DocumentError wraps a failed read or write of the document file.
type DocumentError struct {
	Op   string
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
