package shaderir

// LoadSite records one load of a vertex attribute inside the shader body.
//
// TypeOffset is the word offset of the result-type reference to rewrite;
// OpcodeOffset is the word offset of the consuming instruction's opcode
// word. Only the low 16 bits of the opcode word are rewritten, the high 16
// bits hold the instruction word count and must survive patching.
type LoadSite struct {
	TypeOffset   uint32
	OpcodeOffset uint32
}

// SlotPatch describes every word that must be rewritten to retype one
// vertex attribute slot.
type SlotPatch struct {
	// TypeDeclOffset is the word offset of the input variable's
	// pointer-type reference in its OpVariable declaration.
	TypeDeclOffset uint32

	// Loads are all sites where the attribute's value is loaded.
	Loads []LoadSite
}

// PatchTable is the retyping metadata a translator appends after a vertex
// shader's executable words. A generically-compiled vertex shader treats
// every attribute as a 4-component float; the table records where to rewrite
// type and opcode words so the shader can instead read packed-integer
// attribute data and convert it.
//
// The table region itself (Program.PatchWords words at the end of
// Program.Words) is never shipped to the device.
type PatchTable struct {
	// Result ids of the vector types a slot can be retyped to.
	Vec4ID  uint32
	UVec4ID uint32
	IVec4ID uint32

	// Result ids of the matching Input-storage pointer types.
	PtrVec4ID  uint32
	PtrUVec4ID uint32
	PtrIVec4ID uint32

	// Slots maps each declared attribute slot to its rewrite sites.
	Slots map[AttributeKey]SlotPatch
}
