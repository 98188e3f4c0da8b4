package gpu

import (
	"errors"
	"fmt"
)

// Errors returned by devices and the driver registry.
var (
	// ErrNoDevice indicates that no device could be acquired.
	ErrNoDevice = errors.New("gpu: no device available")

	// ErrDrawableTimeout indicates that no drawable became free in time.
	ErrDrawableTimeout = errors.New("gpu: drawable unavailable")

	// ErrSubmit indicates that a command buffer could not be submitted.
	ErrSubmit = errors.New("gpu: command submission failed")

	// ErrClosed indicates the device has been closed.
	ErrClosed = errors.New("gpu: device closed")

	// ErrTextureSize indicates a texture request outside the device limits.
	ErrTextureSize = errors.New("gpu: invalid texture size")
)

// PipelineError reports a failure to build a render pipeline.
type PipelineError struct {
	// Pipeline is the name of the pipeline being built.
	Pipeline string
	// Stage is the step that failed, such as "vertex" or "blend".
	Stage string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("gpu: pipeline %q failed at %s: %v", e.Pipeline, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}
