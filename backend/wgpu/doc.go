//go:build !nogpu

// Package wgpu adapts a gogpu/wgpu HAL device to the shaderlink.Device
// interface.
//
// The Compiler turns linked SPIR-V into hal.ShaderModule objects and keeps
// one uniform buffer per stage, grown on demand and rewritten in place on
// every push. Hosts that already run on a gogpu device can construct a
// Compiler straight from their gpucontext.DeviceProvider via FromProvider.
package wgpu
