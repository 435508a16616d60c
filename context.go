package shaderlink

import (
	"github.com/gogpu/shaderlink/blobstore"
	"github.com/gogpu/shaderlink/shaderir"
)

// Config carries optional Context settings.
type Config struct {
	// BlobStore, when set, supplies offline-compiled shader binaries by
	// content hash. Links are then served from the store and the on-the-fly
	// patch-and-compile path is never taken.
	BlobStore *blobstore.Store
}

// Context owns the shader linking state for one graphics device: the
// per-stage constant register files, the currently bound shader pair and
// program, and the link cache.
//
// A Context is not safe for concurrent use. All methods, including register
// writes through VertexRegisters/FragmentRegisters, must run on the thread
// that owns the device and its command buffers; no locking is performed
// internally and no call is reentrant.
type Context struct {
	device Device
	blobs  *blobstore.Store

	vsRegs *RegisterFile
	fsRegs *RegisterFile

	boundVertex   *Shader
	boundFragment *Shader
	boundProgram  *Program

	cache        linkCache
	nextShaderID ShaderID
}

// NewContext creates a linking context over device. cfg may be nil.
func NewContext(device Device, cfg *Config) (*Context, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	c := &Context{
		device: device,
		vsRegs: newRegisterFile(),
		fsRegs: newRegisterFile(),
	}
	if cfg != nil && cfg.BlobStore != nil {
		c.blobs = cfg.BlobStore
		Logger().Info("shaderlink: using precompiled blob store",
			"shaders", c.blobs.Len())
	}
	return c, nil
}

// Destroy tears down every cached program and resets the context. Shaders
// compiled through the context stay valid for the host to release; only
// device program resources are freed here.
func (c *Context) Destroy() {
	for key, p := range c.cache.entries {
		delete(c.cache.entries, key)
		c.releaseProgramResources(p)
	}
	c.cache.byShader = nil
	c.cache.entries = nil
	c.boundProgram = nil
	c.boundVertex = nil
	c.boundFragment = nil
}

// BindShaders selects the vertex/fragment pair the next LinkProgram call
// will link. Either shader may be nil, which leaves the pair incomplete and
// linking invalid.
func (c *Context) BindShaders(vertex, fragment *Shader) {
	c.boundVertex = vertex
	c.boundFragment = fragment
}

// BoundShaders returns the currently bound vertex and fragment shaders.
func (c *Context) BoundShaders() (vertex, fragment *Shader) {
	return c.boundVertex, c.boundFragment
}

// BindProgram makes p the currently bound program. Binding nil unbinds.
func (c *Context) BindProgram(p *Program) {
	c.boundProgram = p
}

// BoundProgram returns the currently bound program, or nil.
func (c *Context) BoundProgram() *Program {
	return c.boundProgram
}

// VertexRegisters returns the vertex stage's constant register file.
func (c *Context) VertexRegisters() *RegisterFile { return c.vsRegs }

// FragmentRegisters returns the fragment stage's constant register file.
func (c *Context) FragmentRegisters() *RegisterFile { return c.fsRegs }

// CachedPrograms returns the number of live linked programs.
func (c *Context) CachedPrograms() int { return c.cache.len() }

// registersFor returns the register file feeding the given stage.
func (c *Context) registersFor(stage shaderir.Stage) *RegisterFile {
	if stage == shaderir.StageVertex {
		return c.vsRegs
	}
	return c.fsRegs
}
