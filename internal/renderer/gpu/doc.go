// Package gpu defines the device abstraction used by the atlas renderer.
//
// A Device hands out drawables, allocates textures and accepts command
// buffers. Submission is asynchronous: Submit queues the frame and returns
// without waiting for the device to finish drawing it.
//
// Devices are provided by drivers registered with Register and opened by
// name with Open. The offscreen driver in the offscreen subpackage draws on
// the CPU and is always available; it backs headless runs and tests.
//
// Errors follow a simple policy. ErrNoDevice from Open is permanent for the
// session. A *PipelineError from NewPipeline means the hardware path cannot
// be built. ErrDrawableTimeout and ErrSubmit are per-frame failures that the
// caller absorbs by skipping the frame.
package gpu
