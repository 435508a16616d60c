//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderlink"
	"github.com/gogpu/shaderlink/shaderir"
)

// Compiler errors.
var (
	// ErrNilDevice is returned when NewCompiler receives a nil device or queue.
	ErrNilDevice = errors.New("shaderlink/wgpu: nil device or queue")

	// ErrEmptyCode is returned when a shader descriptor carries no SPIR-V.
	ErrEmptyCode = errors.New("shaderlink/wgpu: empty SPIR-V code")
)

// stageBuffer is one stage's device-side uniform buffer. The buffer is
// created on first push and recreated larger whenever a push outgrows it.
type stageBuffer struct {
	buf  hal.Buffer
	size uint64
}

// Compiler implements shaderlink.Device over a gogpu/wgpu HAL device.
//
// Shader handles returned by CreateShader are hal.ShaderModule values, ready
// to plug into a hal.RenderPipelineDescriptor. The Compiler does not own the
// device or queue; Destroy frees only the uniform buffers it created.
type Compiler struct {
	device hal.Device
	queue  hal.Queue

	// One uniform buffer per stage, indexed by shaderir.Stage.
	uniforms [2]stageBuffer
}

var _ shaderlink.Device = (*Compiler)(nil)

// NewCompiler creates a Compiler over an existing device and queue.
func NewCompiler(device hal.Device, queue hal.Queue) (*Compiler, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Compiler{device: device, queue: queue}, nil
}

// FromProvider creates a Compiler from a host's device provider. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue, as gogpu application contexts do.
func FromProvider(provider shaderlink.DeviceHandle) (*Compiler, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("shaderlink/wgpu: provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("shaderlink/wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("shaderlink/wgpu: provider HalQueue is not hal.Queue")
	}
	return NewCompiler(device, queue)
}

// CreateShader compiles SPIR-V words into a hal.ShaderModule.
func (c *Compiler) CreateShader(desc *shaderlink.ShaderDescriptor) (shaderlink.DeviceShader, error) {
	if len(desc.Code) == 0 {
		return nil, ErrEmptyCode
	}
	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: desc.Entry,
		Source: hal.ShaderSource{
			SPIRV: desc.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink/wgpu: create %s shader module: %w", desc.Stage, err)
	}
	return module, nil
}

// ReleaseShader destroys a shader module created by CreateShader. Handles of
// any other type, including nil, are ignored.
func (c *Compiler) ReleaseShader(sh shaderlink.DeviceShader) {
	if module, ok := sh.(hal.ShaderModule); ok && module != nil {
		c.device.DestroyShaderModule(module)
	}
}

// PushUniforms writes a stage's packed uniform data into the stage's device
// buffer, creating or growing the buffer first when needed. slot is unused:
// the register-file model binds exactly one uniform buffer per stage.
func (c *Compiler) PushUniforms(stage shaderir.Stage, _ uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	sb := &c.uniforms[stage]
	if size := uint64(len(data)); sb.buf == nil || sb.size < size {
		if sb.buf != nil {
			c.device.DestroyBuffer(sb.buf)
			sb.buf = nil
			sb.size = 0
		}
		buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("shaderlink_%s_uniforms", stage),
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("shaderlink/wgpu: create %s uniform buffer: %w", stage, err)
		}
		sb.buf = buf
		sb.size = size
	}

	c.queue.WriteBuffer(sb.buf, 0, data)
	return nil
}

// UniformBuffer returns the stage's device uniform buffer for bind-group
// construction, or nil when the stage has never had uniforms pushed.
func (c *Compiler) UniformBuffer(stage shaderir.Stage) hal.Buffer {
	return c.uniforms[stage].buf
}

// Destroy frees the uniform buffers. Shader modules are released through
// ReleaseShader as the Context tears programs down; the device and queue
// stay with their owner.
func (c *Compiler) Destroy() {
	for i := range c.uniforms {
		if c.uniforms[i].buf != nil {
			c.device.DestroyBuffer(c.uniforms[i].buf)
			c.uniforms[i].buf = nil
			c.uniforms[i].size = 0
		}
	}
}
