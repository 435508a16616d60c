package shaderlink

import (
	"fmt"

	"github.com/gogpu/shaderlink/blobstore"
	"github.com/gogpu/shaderlink/shaderir"
	"github.com/gogpu/shaderlink/spirvpatch"
)

// Program is a linked vertex/fragment pair: the two device-level shader
// objects plus weak references to the shader objects they were linked from.
// Exactly one Program exists per distinct (vertex, fragment, input layout)
// triple at any time; the link cache owns it.
type Program struct {
	vertexShader   DeviceShader
	fragmentShader DeviceShader

	vertexData   *Shader
	fragmentData *Shader
}

// VertexShader returns the program's device-level vertex shader handle.
func (p *Program) VertexShader() DeviceShader { return p.vertexShader }

// FragmentShader returns the program's device-level fragment shader handle.
func (p *Program) FragmentShader() DeviceShader { return p.fragmentShader }

// VertexData returns the shader object the vertex stage was linked from.
func (p *Program) VertexData() *Shader { return p.vertexData }

// FragmentData returns the shader object the fragment stage was linked from.
func (p *Program) FragmentData() *Shader { return p.fragmentData }

// LinkProgram links the bound shader pair for the given input layout and
// binds the result.
//
// The cache is consulted first: a hit returns the existing program with no
// device work. On a miss, either the configured blob store supplies
// offline-specialized binaries for both stages, or the vertex shader's IR
// is patched (on a private clone) for the layout, attribute-linked against
// the fragment shader, and both stages are compiled through the device.
//
// Fails with ErrInvalidLink when either bound shader is missing,
// ErrIncompleteBlobStore when an active blob store lacks a stage's binary,
// and ErrDeviceCompile when the device rejects a binary. A device failure
// on the second stage releases the first stage's already-created shader
// before returning.
func (c *Context) LinkProgram(layout []shaderir.VertexAttribute) (*Program, error) {
	vshader := c.boundVertex
	fshader := c.boundFragment
	if vshader == nil || fshader == nil {
		return nil, ErrInvalidLink
	}

	c.cache.init()
	key := newLinkKey(vshader, fshader, layout)
	if p, ok := c.cache.get(key); ok {
		Logger().Debug("shaderlink: link cache hit", "key", key.hash())
		c.boundProgram = p
		return p, nil
	}
	Logger().Debug("shaderlink: link cache miss",
		"key", key.hash(),
		"vertex", uint32(vshader.id),
		"fragment", uint32(fshader.id),
		"attributes", len(layout))

	var (
		vs, fs DeviceShader
		err    error
	)
	if c.blobs != nil {
		vs, fs, err = c.linkFromBlobStore(vshader, fshader, layout)
	} else {
		vs, fs, err = c.linkFromIR(vshader, fshader, layout)
	}
	if err != nil {
		return nil, err
	}

	p := &Program{
		vertexShader:   vs,
		fragmentShader: fs,
		vertexData:     vshader,
		fragmentData:   fshader,
	}
	c.cache.put(key, p)
	c.boundProgram = p
	return p, nil
}

// linkFromIR specializes the vertex IR for the layout and compiles both
// stages from their (possibly patched) SPIR-V.
func (c *Context) linkFromIR(vshader, fshader *Shader, layout []shaderir.VertexAttribute) (vs, fs DeviceShader, err error) {
	// Patch private clones: the shaders' own IR stays generic so the same
	// pair can be linked again under a different layout.
	vir := vshader.ir.Clone()
	spirvpatch.Apply(vir, layout)
	fir := fshader.ir.Clone()
	spirvpatch.LinkAttributes(vir, fir)

	vs, err = c.device.CreateShader(&ShaderDescriptor{
		Code:               vir.Code(),
		Entry:              vir.Entry,
		Stage:              shaderir.StageVertex,
		SamplerCount:       vshader.samplerSlots,
		UniformBufferCount: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: vertex: %v", ErrDeviceCompile, err)
	}

	fs, err = c.device.CreateShader(&ShaderDescriptor{
		Code:               fir.Code(),
		Entry:              fir.Entry,
		Stage:              shaderir.StageFragment,
		SamplerCount:       fshader.samplerSlots,
		UniformBufferCount: 1,
	})
	if err != nil {
		c.device.ReleaseShader(vs)
		return nil, nil, fmt.Errorf("%w: fragment: %v", ErrDeviceCompile, err)
	}
	return vs, fs, nil
}

// linkFromBlobStore compiles both stages from offline-specialized binaries.
// No patching or attribute linking happens: the offline compiler already
// baked the layout into the vertex binary.
func (c *Context) linkFromBlobStore(vshader, fshader *Shader, layout []shaderir.VertexAttribute) (vs, fs DeviceShader, err error) {
	vhash := blobstore.HashVertexShader(vshader.ir.Bytecode, layout)
	fhash := blobstore.HashShader(fshader.ir.Bytecode)

	ventry, ok := c.blobs.Find(vhash)
	if !ok {
		return nil, nil, fmt.Errorf("%w: vertex hash %#x", ErrIncompleteBlobStore, vhash)
	}
	fentry, ok := c.blobs.Find(fhash)
	if !ok {
		return nil, nil, fmt.Errorf("%w: fragment hash %#x", ErrIncompleteBlobStore, fhash)
	}

	vcode, err := c.blobCode(ventry)
	if err != nil {
		return nil, nil, err
	}
	fcode, err := c.blobCode(fentry)
	if err != nil {
		return nil, nil, err
	}

	vs, err = c.device.CreateShader(&ShaderDescriptor{
		Code:               vcode,
		Entry:              vshader.ir.Entry,
		Stage:              shaderir.StageVertex,
		SamplerCount:       vshader.samplerSlots,
		UniformBufferCount: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: vertex: %v", ErrDeviceCompile, err)
	}

	fs, err = c.device.CreateShader(&ShaderDescriptor{
		Code:               fcode,
		Entry:              fshader.ir.Entry,
		Stage:              shaderir.StageFragment,
		SamplerCount:       fshader.samplerSlots,
		UniformBufferCount: 1,
	})
	if err != nil {
		c.device.ReleaseShader(vs)
		return nil, nil, fmt.Errorf("%w: fragment: %v", ErrDeviceCompile, err)
	}
	return vs, fs, nil
}

// blobCode fetches an entry's payload and converts it to SPIR-V words.
func (c *Context) blobCode(e blobstore.Entry) ([]uint32, error) {
	payload, err := c.blobs.Payload(e)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: %w", err)
	}
	words, err := shaderir.WordsFromBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: blob %#x: %w", e.Hash, err)
	}
	return words, nil
}

// DeleteProgram releases the program's device shader handles and unbinds it
// if it was bound. The cache entry, when one exists, is removed by whoever
// initiated the deletion (cascading shader release or Destroy); DeleteProgram
// itself never touches the cache.
func (c *Context) DeleteProgram(p *Program) {
	if p == nil {
		return
	}
	if c.boundProgram == p {
		c.boundProgram = nil
	}
	c.releaseProgramResources(p)
}

func (c *Context) releaseProgramResources(p *Program) {
	if p.vertexShader != nil {
		c.device.ReleaseShader(p.vertexShader)
		p.vertexShader = nil
	}
	if p.fragmentShader != nil {
		c.device.ReleaseShader(p.fragmentShader)
		p.fragmentShader = nil
	}
}

// Shaders returns the bound program's device shader handles, for the host
// to plug into its pipeline descriptor. Both are nil when no program is
// bound.
func (c *Context) Shaders() (vertex, fragment DeviceShader) {
	if c.boundProgram == nil {
		return nil, nil
	}
	return c.boundProgram.vertexShader, c.boundProgram.fragmentShader
}
