// Package shaderlink links previously-compiled shader IR into GPU device
// programs and keeps per-draw constant data flowing into them.
//
// # Overview
//
// A host compiles shader bytecode into shaderir.Program values using an
// external translator, wraps them in reference-counted Shader objects, binds
// a vertex/fragment pair, and asks the Context to link them for a concrete
// vertex input layout. Linking is cached: the same (vertex shader, fragment
// shader, input layout) triple always yields the same Program without
// touching the device again.
//
//	ctx, _ := shaderlink.NewContext(device, nil)
//	vs, _ := ctx.CompileShader(vertexIR)
//	fs, _ := ctx.CompileShader(fragmentIR)
//	ctx.BindShaders(vs, fs)
//	prog, _ := ctx.LinkProgram(layout)
//
//	// Per draw:
//	ctx.VertexRegisters().SetFloats(0, mvp[:])
//	_ = ctx.UpdateUniformBuffers()
//
// On a cache miss the Context specializes a private clone of the vertex
// shader's SPIR-V for the layout (spirvpatch), links vertex outputs to
// fragment inputs, and compiles both stages through the Device interface.
// When a precompiled blob store is configured (blobstore), offline-compiled
// binaries are looked up by content hash instead and no patching happens.
//
// Releasing a shader whose reference count reaches zero destroys every
// cached program linked from it; a program never outlives either of its
// shaders.
//
// # Concurrency
//
// A Context is single-threaded by contract. All calls, register writes
// included, must be serialized by the caller and are expected to run on the
// goroutine that owns the graphics device. No internal locking is performed.
package shaderlink

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
