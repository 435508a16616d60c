package shaderlink

import "errors"

// Errors returned by Context operations. Failures carrying device or
// translator detail wrap these sentinels, so callers match with errors.Is.
var (
	// ErrNilDevice is returned when creating a context without a device.
	ErrNilDevice = errors.New("shaderlink: device is nil")

	// ErrNilProgram is returned when compiling a nil IR program.
	ErrNilProgram = errors.New("shaderlink: program IR is nil")

	// ErrShaderParse is returned when the upstream translator reported
	// errors for the IR being compiled. The first translator message is
	// attached.
	ErrShaderParse = errors.New("shaderlink: shader IR has parse errors")

	// ErrInvalidLink is returned when linking without both a vertex and a
	// fragment shader bound.
	ErrInvalidLink = errors.New("shaderlink: link requires a vertex and a fragment shader")

	// ErrIncompleteBlobStore is returned when a configured blob store has
	// no binary for a requested shader content hash.
	ErrIncompleteBlobStore = errors.New("shaderlink: shader binary missing from blob store")

	// ErrDeviceCompile is returned when the device rejects a shader
	// binary. The device's error text is attached.
	ErrDeviceCompile = errors.New("shaderlink: device shader compilation failed")

	// ErrNoProgramBound is returned when pushing uniforms with no linked
	// program bound.
	ErrNoProgramBound = errors.New("shaderlink: no program bound")
)
