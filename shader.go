package shaderlink

import (
	"fmt"

	"github.com/gogpu/shaderlink/shaderir"
)

// ShaderID identifies a live shader object within its Context.
//
// IDs are assigned from a 32-bit monotonic counter and never reused, so two
// live shaders can always be told apart by ID alone without comparing
// binaries. (The width is deliberately larger than strictly needed: a
// 16-bit counter would wrap within reach of a long-lived process.)
type ShaderID uint32

// Shader is one reference-counted compiled shader stage.
//
// The Context hands out Shaders with a reference count of 1; AddRef and
// Context.ReleaseShader adjust it. Cached programs hold their shaders
// weakly, by ID: linking never bumps the count, and releasing the last
// reference tears down every program linked from the shader.
type Shader struct {
	ir   *shaderir.Program
	id   ShaderID
	refs int

	samplerSlots      uint32
	uniformBufferSize int
}

// CompileShader wraps translator-produced IR in a shader object.
//
// It fails with ErrShaderParse, surfacing the translator's first message, if
// the IR carries parse errors. On success the shader's sampler slot count
// and packed uniform buffer size are derived once and fixed.
func (c *Context) CompileShader(p *shaderir.Program) (*Shader, error) {
	if p == nil {
		return nil, ErrNilProgram
	}
	if len(p.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrShaderParse, p.Errors[0])
	}

	c.nextShaderID++
	s := &Shader{
		ir:   p,
		id:   c.nextShaderID,
		refs: 1,
	}

	// Empty slots in the middle of the binding range are legal, so the
	// slot count is the highest bound index plus one, not the declaration
	// count.
	maxSamplerIndex := 0
	for _, smp := range p.Samplers {
		if smp.Index > maxSamplerIndex {
			maxSamplerIndex = smp.Index
		}
	}
	s.samplerSlots = uint32(maxSamplerIndex) + 1

	for _, u := range p.Uniforms {
		s.uniformBufferSize += registerSlots(u.ArrayCount) * uniformSlotSize
	}

	Logger().Debug("shaderlink: compiled shader",
		"stage", p.Stage.String(),
		"id", uint32(s.id),
		"samplerSlots", s.samplerSlots,
		"uniformBufferSize", s.uniformBufferSize)
	return s, nil
}

// AddRef increments the shader's reference count. Safe on a nil shader.
func (s *Shader) AddRef() {
	if s == nil {
		return
	}
	s.refs++
}

// ReleaseShader decrements the shader's reference count. When the count
// reaches zero every cached program linked from the shader is destroyed,
// device resources included, and the shader's IR reference is dropped.
// Safe on a nil shader.
func (c *Context) ReleaseShader(s *Shader) {
	if s == nil {
		return
	}
	if s.refs > 1 {
		s.refs--
		return
	}
	if s.refs < 1 {
		Logger().Warn("shaderlink: release of already-freed shader", "id", uint32(s.id))
		return
	}

	// Tear down every program this shader participates in. The key list
	// is captured up front so removal cannot disturb iteration; a shader
	// that was never linked simply has no keys.
	for _, key := range c.cache.keysFor(s.id) {
		if p, ok := c.cache.get(key); ok {
			c.cache.remove(key)
			c.DeleteProgram(p)
		}
	}

	if c.boundVertex == s {
		c.boundVertex = nil
	}
	if c.boundFragment == s {
		c.boundFragment = nil
	}

	s.refs = 0
	s.ir = nil
}

// ID returns the shader's context-unique identity.
func (s *Shader) ID() ShaderID { return s.id }

// Stage returns the pipeline stage the shader was compiled for.
func (s *Shader) Stage() shaderir.Stage { return s.ir.Stage }

// IR returns the shader's intermediate representation, or nil after the
// shader has been released.
func (s *Shader) IR() *shaderir.Program {
	if s == nil {
		return nil
	}
	return s.ir
}

// SamplerSlots returns the number of sampler slots the shader binds.
func (s *Shader) SamplerSlots() uint32 { return s.samplerSlots }

// UniformBufferSize returns the byte size of the shader's packed uniform
// buffer.
func (s *Shader) UniformBufferSize() int { return s.uniformBufferSize }

// VertexAttributeLocation returns the declaration index of the vertex
// attribute with the given usage, or -1 if the shader does not declare it.
func (s *Shader) VertexAttributeLocation(usage shaderir.VertexUsage, usageIndex int) int {
	if s == nil {
		return -1
	}
	for i, a := range s.ir.Attributes {
		if a.Usage == usage && a.UsageIndex == usageIndex {
			return i
		}
	}
	return -1
}
