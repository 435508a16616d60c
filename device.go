package shaderlink

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shaderlink/shaderir"
)

// DeviceShader is an opaque device-level shader handle. Its concrete type
// belongs to the Device implementation (backend/wgpu returns a
// hal.ShaderModule); the Context only stores and returns it.
type DeviceShader any

// ShaderDescriptor carries everything a Device needs to compile one stage.
type ShaderDescriptor struct {
	// Code is the device-bound SPIR-V, patch table already stripped.
	Code []uint32

	// Entry is the entry-point function name.
	Entry string

	// Stage is the pipeline stage being compiled.
	Stage shaderir.Stage

	// SamplerCount is the number of sampler slots the stage binds,
	// sparse slots included.
	SamplerCount uint32

	// UniformBufferCount is the number of uniform buffers the stage
	// binds. The register-file model always packs into exactly one.
	UniformBufferCount uint32
}

// Device is the graphics-device surface the Context compiles against.
//
// Every call is treated as fallible and atomic. Implementations are not
// required to be safe for concurrent use; the Context calls them from the
// caller's (single) thread only.
type Device interface {
	// CreateShader compiles a device shader from SPIR-V words.
	CreateShader(desc *ShaderDescriptor) (DeviceShader, error)

	// ReleaseShader frees a shader previously returned by CreateShader.
	// A nil handle is a no-op.
	ReleaseShader(sh DeviceShader)

	// PushUniforms uploads a stage's packed uniform buffer for the next
	// draw. slot is the uniform-buffer binding index, always 0 under the
	// register-file model.
	PushUniforms(stage shaderir.Stage, slot uint32, data []byte) error
}

// DeviceHandle provides GPU device access from a host application.
//
// Hosts built on the gpucontext ecosystem (gogpu.App and friends) implement
// DeviceProvider already; backend/wgpu.FromProvider adopts the shared device
// directly from one. shaderlink RECEIVES a device from the host, it never
// creates one.
type DeviceHandle = gpucontext.DeviceProvider
