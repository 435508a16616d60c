package shaderlink

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/shaderlink/shaderir"
)

func compileWithUniforms(t *testing.T, ctx *Context, stage shaderir.Stage, uniforms []shaderir.Uniform) *Shader {
	t.Helper()
	var ir *shaderir.Program
	if stage == shaderir.StageVertex {
		ir = testVertexIR()
	} else {
		ir = testFragmentIR()
	}
	ir.Uniforms = uniforms
	s, err := ctx.CompileShader(ir)
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	return s
}

func TestBuildUniformBufferFloat(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	s := compileWithUniforms(t, ctx, shaderir.StageVertex, []shaderir.Uniform{
		{Type: shaderir.UniformFloat, Index: 2, ArrayCount: 0, Name: "tint"},
	})

	regs := ctx.VertexRegisters()
	want := []float32{1.5, -2.25, 3.75, 0.125}
	regs.SetFloats(2, want)

	buf := buildUniformBuffer(s, regs)
	if len(buf) != 16 {
		t.Fatalf("buffer length = %d, want 16", len(buf))
	}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("component %d = %v, want %v", i, got, w)
		}
	}
}

func TestBuildUniformBufferFloatArray(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	s := compileWithUniforms(t, ctx, shaderir.StageVertex, []shaderir.Uniform{
		{Type: shaderir.UniformFloat, Index: 4, ArrayCount: 3, Name: "bones"},
	})

	regs := ctx.VertexRegisters()
	vals := make([]float32, 12)
	for i := range vals {
		vals[i] = float32(i) + 0.5
	}
	regs.SetFloats(4, vals)

	buf := buildUniformBuffer(s, regs)
	if len(buf) != 48 {
		t.Fatalf("buffer length = %d, want 48", len(buf))
	}
	for i, w := range vals {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("component %d = %v, want %v", i, got, w)
		}
	}
}

func TestBuildUniformBufferInt(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	s := compileWithUniforms(t, ctx, shaderir.StageFragment, []shaderir.Uniform{
		{Type: shaderir.UniformInt, Index: 1, ArrayCount: 0, Name: "mode"},
	})

	regs := ctx.FragmentRegisters()
	regs.SetInts(1, []int32{7, -3, 0, 42})

	buf := buildUniformBuffer(s, regs)
	if len(buf) != 16 {
		t.Fatalf("buffer length = %d, want 16", len(buf))
	}
	want := []int32{7, -3, 0, 42}
	for i, w := range want {
		got := int32(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("component %d = %d, want %d", i, got, w)
		}
	}
}

func TestBuildUniformBufferBoolArray(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	s := compileWithUniforms(t, ctx, shaderir.StageFragment, []shaderir.Uniform{
		{Type: shaderir.UniformBool, Index: 0, ArrayCount: 3, Name: "flags"},
	})

	regs := ctx.FragmentRegisters()
	regs.SetBools(0, []bool{true, false, true})

	buf := buildUniformBuffer(s, regs)
	if len(buf) != 48 {
		t.Fatalf("buffer length = %d, want 48", len(buf))
	}
	// Each bool widens to a 32-bit integer in the lead 4 bytes of its
	// 16-byte slot; everything else stays zero.
	wantLead := []uint32{1, 0, 1}
	for slot, w := range wantLead {
		if got := binary.LittleEndian.Uint32(buf[slot*16:]); got != w {
			t.Errorf("slot %d lead word = %d, want %d", slot, got, w)
		}
		for b := 4; b < 16; b++ {
			if buf[slot*16+b] != 0 {
				t.Errorf("slot %d byte %d = %d, want 0", slot, b, buf[slot*16+b])
			}
		}
	}
}

func TestBuildUniformBufferDeclarationOrder(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	s := compileWithUniforms(t, ctx, shaderir.StageVertex, []shaderir.Uniform{
		{Type: shaderir.UniformFloat, Index: 0, ArrayCount: 2, Name: "mvp"},
		{Type: shaderir.UniformInt, Index: 0, ArrayCount: 0, Name: "mode"},
		{Type: shaderir.UniformBool, Index: 1, ArrayCount: 0, Name: "lit"},
	})
	if s.UniformBufferSize() != 32+16+16 {
		t.Fatalf("UniformBufferSize = %d, want 64", s.UniformBufferSize())
	}

	regs := ctx.VertexRegisters()
	regs.SetFloats(0, []float32{1, 2, 3, 4, 5, 6, 7, 8})
	regs.SetInts(0, []int32{9, 10, 11, 12})
	regs.SetBools(1, []bool{true})

	buf := buildUniformBuffer(s, regs)
	if len(buf) != 64 {
		t.Fatalf("buffer length = %d, want 64", len(buf))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])); got != 8 {
		t.Errorf("last float component = %v, want 8", got)
	}
	if got := int32(binary.LittleEndian.Uint32(buf[32:])); got != 9 {
		t.Errorf("int lead component = %d, want 9", got)
	}
	if got := binary.LittleEndian.Uint32(buf[48:]); got != 1 {
		t.Errorf("bool word = %d, want 1", got)
	}
}

func TestBuildUniformBufferEmpty(t *testing.T) {
	ctx, _, vs, _ := newTestContext(t)
	if buf := buildUniformBuffer(vs, ctx.VertexRegisters()); buf != nil {
		t.Errorf("shader without uniforms packed %d bytes, want nil", len(buf))
	}
}

func TestBuildUniformBufferSizeInvariant(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	s := compileWithUniforms(t, ctx, shaderir.StageVertex, []shaderir.Uniform{
		{Type: shaderir.UniformFloat, Index: 0, ArrayCount: 1, Name: "a"},
	})
	// Growing the declared uniforms after compilation breaks the
	// precomputed size; the packer must refuse to continue.
	s.ir.Uniforms = append(s.ir.Uniforms, shaderir.Uniform{
		Type: shaderir.UniformFloat, Index: 1, Name: "b",
	})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on uniform size mismatch")
		}
	}()
	buildUniformBuffer(s, ctx.VertexRegisters())
}

func TestUpdateUniformBuffers(t *testing.T) {
	dev := newMockDevice()
	ctx, err := NewContext(dev, nil)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	vir := testVertexIR()
	vir.Uniforms = []shaderir.Uniform{{Type: shaderir.UniformFloat, Index: 0, Name: "mvp", ArrayCount: 4}}
	vs, err := ctx.CompileShader(vir)
	if err != nil {
		t.Fatalf("compile vertex: %v", err)
	}
	fir := testFragmentIR()
	fir.Uniforms = []shaderir.Uniform{{Type: shaderir.UniformBool, Index: 0, Name: "lit"}}
	fs, err := ctx.CompileShader(fir)
	if err != nil {
		t.Fatalf("compile fragment: %v", err)
	}
	ctx.BindShaders(vs, fs)
	if _, err := ctx.LinkProgram(testLayout()); err != nil {
		t.Fatalf("LinkProgram: %v", err)
	}

	ctx.VertexRegisters().SetFloats(0, []float32{1, 2, 3, 4})
	ctx.FragmentRegisters().SetBools(0, []bool{true})

	if err := ctx.UpdateUniformBuffers(); err != nil {
		t.Fatalf("UpdateUniformBuffers: %v", err)
	}
	if len(dev.pushes) != 2 {
		t.Fatalf("pushed %d buffers, want 2", len(dev.pushes))
	}

	vp := dev.pushes[0]
	if vp.stage != shaderir.StageVertex || vp.slot != 0 {
		t.Errorf("first push = stage %v slot %d, want vertex slot 0", vp.stage, vp.slot)
	}
	if len(vp.data) != vs.UniformBufferSize() {
		t.Errorf("vertex push size = %d, want %d", len(vp.data), vs.UniformBufferSize())
	}
	fp := dev.pushes[1]
	if fp.stage != shaderir.StageFragment {
		t.Errorf("second push stage = %v, want fragment", fp.stage)
	}
	if binary.LittleEndian.Uint32(fp.data) != 1 {
		t.Error("fragment bool uniform did not reach the device as 1")
	}
}

func TestUpdateUniformBuffersSkipsEmptyStage(t *testing.T) {
	ctx, dev, _, _ := newTestContext(t)
	if _, err := ctx.LinkProgram(testLayout()); err != nil {
		t.Fatalf("LinkProgram: %v", err)
	}
	// Neither fixture shader declares uniforms.
	if err := ctx.UpdateUniformBuffers(); err != nil {
		t.Fatalf("UpdateUniformBuffers: %v", err)
	}
	if len(dev.pushes) != 0 {
		t.Errorf("pushed %d buffers for uniform-less shaders, want 0", len(dev.pushes))
	}
}

func TestUpdateUniformBuffersNoProgram(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	if err := ctx.UpdateUniformBuffers(); !errors.Is(err, ErrNoProgramBound) {
		t.Errorf("UpdateUniformBuffers = %v, want ErrNoProgramBound", err)
	}
}

func TestUpdateUniformBuffersDeviceError(t *testing.T) {
	dev := newMockDevice()
	ctx, err := NewContext(dev, nil)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	vir := testVertexIR()
	vir.Uniforms = []shaderir.Uniform{{Type: shaderir.UniformFloat, Index: 0, Name: "mvp"}}
	vs, _ := ctx.CompileShader(vir)
	fs, _ := ctx.CompileShader(testFragmentIR())
	ctx.BindShaders(vs, fs)
	if _, err := ctx.LinkProgram(testLayout()); err != nil {
		t.Fatalf("LinkProgram: %v", err)
	}

	dev.pushErr = errors.New("queue full")
	if err := ctx.UpdateUniformBuffers(); err == nil {
		t.Error("expected device push error to surface")
	}
}

func BenchmarkBuildUniformBuffer(b *testing.B) {
	dev := newMockDevice()
	ctx, err := NewContext(dev, nil)
	if err != nil {
		b.Fatal(err)
	}
	ir := testVertexIR()
	ir.Uniforms = []shaderir.Uniform{
		{Type: shaderir.UniformFloat, Index: 0, ArrayCount: 64, Name: "bones"},
		{Type: shaderir.UniformInt, Index: 0, ArrayCount: 0, Name: "mode"},
		{Type: shaderir.UniformBool, Index: 0, ArrayCount: 4, Name: "flags"},
	}
	s, err := ctx.CompileShader(ir)
	if err != nil {
		b.Fatal(err)
	}
	regs := ctx.VertexRegisters()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = buildUniformBuffer(s, regs)
	}
}
