package shaderlink

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/shaderlink/shaderir"
)

func TestCompileShader(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)

	ir := testFragmentIR()
	ir.Uniforms = []shaderir.Uniform{
		{Type: shaderir.UniformFloat, Index: 0, ArrayCount: 4, Name: "bones"},
		{Type: shaderir.UniformBool, Index: 0, ArrayCount: 0, Name: "lit"},
	}
	s, err := ctx.CompileShader(ir)
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	if s.Stage() != shaderir.StageFragment {
		t.Errorf("Stage = %v, want fragment", s.Stage())
	}
	if s.UniformBufferSize() != 4*16+16 {
		t.Errorf("UniformBufferSize = %d, want 80", s.UniformBufferSize())
	}
	if s.IR() != ir {
		t.Error("IR() does not return the wrapped program")
	}
}

func TestCompileShaderNil(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	if _, err := ctx.CompileShader(nil); !errors.Is(err, ErrNilProgram) {
		t.Errorf("CompileShader(nil) = %v, want ErrNilProgram", err)
	}
}

func TestCompileShaderParseErrors(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)

	ir := testVertexIR()
	ir.Errors = []string{"unknown opcode at token 42", "second error"}
	_, err := ctx.CompileShader(ir)
	if !errors.Is(err, ErrShaderParse) {
		t.Fatalf("CompileShader = %v, want ErrShaderParse", err)
	}
	// The first translator message is the one surfaced.
	if !strings.Contains(err.Error(), "unknown opcode at token 42") {
		t.Errorf("error %q does not carry the first parse message", err)
	}
}

func TestCompileShaderIdentitiesUnique(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)

	seen := make(map[ShaderID]bool)
	for i := 0; i < 32; i++ {
		s, err := ctx.CompileShader(testFragmentIR())
		if err != nil {
			t.Fatalf("CompileShader: %v", err)
		}
		if seen[s.ID()] {
			t.Fatalf("duplicate shader id %d", s.ID())
		}
		seen[s.ID()] = true
	}
}

func TestSamplerSlotsSparse(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)

	tests := []struct {
		name     string
		samplers []shaderir.Sampler
		want     uint32
	}{
		{"no samplers", nil, 1},
		{"dense", []shaderir.Sampler{{Index: 0}, {Index: 1}}, 2},
		// Empty slots in the middle are legal; the count covers the
		// highest bound index.
		{"sparse", []shaderir.Sampler{{Index: 0}, {Index: 3}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := testFragmentIR()
			ir.Samplers = tt.samplers
			s, err := ctx.CompileShader(ir)
			if err != nil {
				t.Fatalf("CompileShader: %v", err)
			}
			if s.SamplerSlots() != tt.want {
				t.Errorf("SamplerSlots = %d, want %d", s.SamplerSlots(), tt.want)
			}
		})
	}
}

func TestAddRefNil(t *testing.T) {
	var s *Shader
	s.AddRef() // must not panic
}

func TestReleaseShaderDecrementsOnly(t *testing.T) {
	ctx, dev, vs, _ := newTestContext(t)

	if _, err := ctx.LinkProgram(testLayout()); err != nil {
		t.Fatalf("LinkProgram: %v", err)
	}

	vs.AddRef()
	ctx.ReleaseShader(vs)

	if vs.IR() == nil {
		t.Error("shader destroyed while references remained")
	}
	if ctx.CachedPrograms() != 1 {
		t.Error("release with refs > 1 touched the cache")
	}
	if len(dev.released) != 0 {
		t.Error("release with refs > 1 released device resources")
	}
}

func TestReleaseShaderCascades(t *testing.T) {
	ctx, dev, vs, fs := newTestContext(t)

	// Link vs against two layouts and an unrelated pair that must survive.
	if _, err := ctx.LinkProgram(testLayout()); err != nil {
		t.Fatalf("link 1: %v", err)
	}
	single := []shaderir.VertexAttribute{
		{Usage: shaderir.UsagePosition, UsageIndex: 0, Format: shaderir.FormatVector4},
	}
	if _, err := ctx.LinkProgram(single); err != nil {
		t.Fatalf("link 2: %v", err)
	}

	otherVS, err := ctx.CompileShader(testVertexIR())
	if err != nil {
		t.Fatalf("compile other vertex: %v", err)
	}
	ctx.BindShaders(otherVS, fs)
	survivor, err := ctx.LinkProgram(testLayout())
	if err != nil {
		t.Fatalf("link survivor: %v", err)
	}

	if ctx.CachedPrograms() != 3 {
		t.Fatalf("cache holds %d programs, want 3", ctx.CachedPrograms())
	}

	ctx.ReleaseShader(vs)

	if vs.IR() != nil {
		t.Error("released shader still holds IR")
	}
	if ctx.CachedPrograms() != 1 {
		t.Errorf("cache holds %d programs after cascade, want 1", ctx.CachedPrograms())
	}
	// The two cascaded programs released 2 device shaders each.
	if len(dev.released) != 4 {
		t.Errorf("released %d device shaders, want 4", len(dev.released))
	}
	// The survivor is untouched and still linkable from cache.
	ctx.BindShaders(otherVS, fs)
	again, err := ctx.LinkProgram(testLayout())
	if err != nil {
		t.Fatalf("relink survivor: %v", err)
	}
	if again != survivor {
		t.Error("unrelated cache entry was disturbed by the cascade")
	}
}

func TestReleaseFragmentCascades(t *testing.T) {
	ctx, _, _, fs := newTestContext(t)

	if _, err := ctx.LinkProgram(testLayout()); err != nil {
		t.Fatalf("LinkProgram: %v", err)
	}
	ctx.ReleaseShader(fs)

	if ctx.CachedPrograms() != 0 {
		t.Error("releasing the fragment shader did not remove its program")
	}
	if ctx.BoundProgram() != nil {
		t.Error("cascade left a dangling bound program")
	}
}

func TestReleaseShaderNeverLinked(t *testing.T) {
	ctx, dev, _, _ := newTestContext(t)

	s, err := ctx.CompileShader(testFragmentIR())
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	ctx.ReleaseShader(s) // never linked: nothing to cascade, no error
	if s.IR() != nil {
		t.Error("released shader still holds IR")
	}
	if len(dev.released) != 0 {
		t.Error("releasing an unlinked shader released device resources")
	}
}

func TestReleaseShaderNil(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	ctx.ReleaseShader(nil) // must not panic
}

func TestVertexAttributeLocation(t *testing.T) {
	ctx, _, vs, _ := newTestContext(t)
	_ = ctx

	if got := vs.VertexAttributeLocation(shaderir.UsagePosition, 0); got != 0 {
		t.Errorf("position location = %d, want 0", got)
	}
	if got := vs.VertexAttributeLocation(shaderir.UsageTexCoord, 0); got != 1 {
		t.Errorf("texcoord location = %d, want 1", got)
	}
	if got := vs.VertexAttributeLocation(shaderir.UsageNormal, 0); got != -1 {
		t.Errorf("undeclared attribute location = %d, want -1", got)
	}
	var nilShader *Shader
	if got := nilShader.VertexAttributeLocation(shaderir.UsagePosition, 0); got != -1 {
		t.Errorf("nil shader location = %d, want -1", got)
	}
}
