package shaderlink

// Register file capacities, per stage. Bool registers are 4-wide in storage
// like the others but only the lead component of each register is consumed
// when packing.
const (
	// MaxFloatRegisters is the number of float4 constant registers.
	MaxFloatRegisters = 8192

	// MaxIntRegisters is the number of int4 constant registers.
	MaxIntRegisters = 2047

	// MaxBoolRegisters is the number of bool constant registers.
	MaxBoolRegisters = 2047
)

// RegisterFile is one stage's flat constant storage: float4, int4 and bool
// registers written by the host before a draw and read only while packing
// that draw's uniform buffer.
//
// The file is shared mutable state under the Context's single-thread
// contract: write whenever you like between draws, but the last write for a
// draw must land before UpdateUniformBuffers. Nothing is buffered or
// snapshotted.
//
// TODO: the three arrays are allocated at full capacity up front (256 KiB of
// floats per stage); allocate on demand once a profile shows titles that
// never touch the high registers.
type RegisterFile struct {
	f []float32
	i []int32
	b []bool
}

func newRegisterFile() *RegisterFile {
	return &RegisterFile{
		f: make([]float32, MaxFloatRegisters*4),
		i: make([]int32, MaxIntRegisters*4),
		b: make([]bool, MaxBoolRegisters),
	}
}

// SetFloats copies packed float4 data into the file starting at register
// startRegister. len(v) need not be a multiple of 4; trailing components of
// the last register keep their previous values.
func (r *RegisterFile) SetFloats(startRegister int, v []float32) {
	copy(r.f[startRegister*4:], v)
}

// SetInts copies packed int4 data into the file starting at register
// startRegister.
func (r *RegisterFile) SetInts(startRegister int, v []int32) {
	copy(r.i[startRegister*4:], v)
}

// SetBools copies bool registers starting at startRegister. Bool registers
// are scalar: one value per register.
func (r *RegisterFile) SetBools(startRegister int, v []bool) {
	copy(r.b[startRegister:], v)
}

// Floats returns the backing float storage, 4 components per register.
// Mutating it is equivalent to SetFloats.
func (r *RegisterFile) Floats() []float32 { return r.f }

// Ints returns the backing int storage, 4 components per register.
func (r *RegisterFile) Ints() []int32 { return r.i }

// Bools returns the backing bool storage, one value per register.
func (r *RegisterFile) Bools() []bool { return r.b }
