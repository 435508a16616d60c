package spirvpatch

import (
	"fmt"

	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderlink/shaderir"
)

// Opcodes written into attribute load sites. naga's spirv package declares
// only the opcodes its writer emits, so the conversion opcodes used for
// packed-integer attributes are declared here with their SPIR-V values.
const (
	opCopyObject  spirv.OpCode = 83
	opConvertSToF spirv.OpCode = 111
	opConvertUToF spirv.OpCode = 112
)

// opcodeMask selects the opcode half of a SPIR-V instruction's first word.
// The high half is the instruction word count and is preserved by patching.
const opcodeMask = 0x0000FFFF

// Apply rewrites p's input declarations and load sites to match layout.
//
// For a packed-integer attribute the input variable is retyped to the
// unsigned or signed 4-component integer vector and every load site's
// consuming opcode becomes the matching integer-to-float conversion. All
// other attributes are (re)typed to the generic float vector with a
// pass-through OpCopyObject, which makes Apply idempotent on a fresh clone
// regardless of what a previous layout selected.
//
// Preconditions, not checked defensively: p is a vertex-stage program with a
// patch table, and every layout entry names a slot the table has an entry
// for. Violations panic.
func Apply(p *shaderir.Program, layout []shaderir.VertexAttribute) {
	table := p.Patch
	if table == nil {
		panic("spirvpatch: program has no patch table")
	}
	if len(layout) > shaderir.MaxVertexAttributes {
		panic(fmt.Sprintf("spirvpatch: input layout has %d attributes, max %d",
			len(layout), shaderir.MaxVertexAttributes))
	}

	for _, attr := range layout {
		var (
			declType uint32
			loadType uint32
			loadOp   spirv.OpCode
		)
		switch {
		case attr.Format.PackedInteger() && !attr.Format.SignedInteger():
			declType = table.PtrUVec4ID
			loadType = table.UVec4ID
			loadOp = opConvertUToF
		case attr.Format.PackedInteger():
			declType = table.PtrIVec4ID
			loadType = table.IVec4ID
			loadOp = opConvertSToF
		default:
			declType = table.PtrVec4ID
			loadType = table.Vec4ID
			loadOp = opCopyObject
		}

		key := shaderir.AttributeKey{Usage: attr.Usage, UsageIndex: attr.UsageIndex}
		slot, ok := table.Slots[key]
		if !ok {
			panic(fmt.Sprintf("spirvpatch: no patch slot for usage %d index %d",
				attr.Usage, attr.UsageIndex))
		}

		p.Words[slot.TypeDeclOffset] = declType
		for _, load := range slot.Loads {
			p.Words[load.TypeOffset] = loadType
			op := p.Words[load.OpcodeOffset]
			p.Words[load.OpcodeOffset] = (op &^ opcodeMask) | uint32(loadOp)
		}
	}
}

// LinkAttributes assigns interface location numbers so the fragment
// program's inputs line up with the vertex program's outputs.
//
// Vertex outputs get consecutive locations in declaration order. Each
// fragment input matching a vertex output by usage/usageIndex receives that
// output's location; unmatched inputs are parked on locations past the last
// output so they never collide. Location operands are written straight into
// the recorded decoration words of both programs.
//
// Must run after Apply and before device compilation.
func LinkAttributes(v, f *shaderir.Program) {
	locations := make(map[shaderir.AttributeKey]uint32, len(v.Outputs))
	for i, out := range v.Outputs {
		loc := uint32(i)
		v.Words[out.LocationOffset] = loc
		locations[out.Key()] = loc
	}

	next := uint32(len(v.Outputs))
	for _, in := range f.Inputs {
		if loc, ok := locations[in.Key()]; ok {
			f.Words[in.LocationOffset] = loc
			continue
		}
		f.Words[in.LocationOffset] = next
		next++
	}
}
