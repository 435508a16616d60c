package shaderir

import (
	"encoding/binary"
	"fmt"
)

// IOSlot records where a shader's interface location decoration lives.
//
// LocationOffset is the word offset (into Program.Words) of the location
// operand of the OpDecorate instruction for the variable carrying this
// usage/usageIndex pair. Attribute linking rewrites that word so vertex
// outputs and fragment inputs agree on location numbers.
type IOSlot struct {
	Usage          VertexUsage
	UsageIndex     int
	LocationOffset uint32
}

// Key returns the attribute key for the slot.
func (s IOSlot) Key() AttributeKey {
	return AttributeKey{Usage: s.Usage, UsageIndex: s.UsageIndex}
}

// Program is one compiled shader stage as produced by an upstream bytecode
// translator.
//
// Words holds the full SPIR-V module including the patch-table region
// appended after the executable words; Code returns the device-bound prefix.
// A Program is immutable once produced. The link path never patches a shared
// Program in place: it clones first, so one vertex shader can be linked
// against any number of input layouts (see Clone).
type Program struct {
	// Stage is the pipeline stage the program was compiled for.
	Stage Stage

	// Entry is the entry-point function name.
	Entry string

	// Words is the SPIR-V module, patch-table region included.
	Words []uint32

	// PatchWords is the length in words of the patch-table region at the
	// end of Words. Zero for fragment shaders and offline-specialized
	// binaries.
	PatchWords int

	// Bytecode is the original compiled bytecode the program was
	// translated from. It is the input to blob-store content hashing and
	// is not otherwise interpreted.
	Bytecode []byte

	// Uniforms, Samplers and Attributes are the program's declarations,
	// in declaration order.
	Uniforms   []Uniform
	Samplers   []Sampler
	Attributes []Attribute

	// Outputs are the vertex stage's interface outputs; Inputs are the
	// fragment stage's interface inputs. Only the slice matching Stage is
	// populated.
	Outputs []IOSlot
	Inputs  []IOSlot

	// Patch is the vertex-attribute patch table, nil for fragment shaders.
	Patch *PatchTable

	// Errors holds upstream translation errors. A program with errors
	// cannot be compiled into a shader object.
	Errors []string
}

// Code returns the device-bound words: everything except the patch-table
// region. The returned slice aliases Words.
func (p *Program) Code() []uint32 {
	return p.Words[:len(p.Words)-p.PatchWords]
}

// Clone returns a copy of the program with its own Words backing array.
//
// Only Words is deep-copied: patching rewrites words in place, while the
// declaration metadata and the patch table are read-only and safely shared.
func (p *Program) Clone() *Program {
	q := *p
	q.Words = append([]uint32(nil), p.Words...)
	return &q
}

// WordsFromBytes converts a little-endian SPIR-V byte stream to words.
func WordsFromBytes(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("shaderir: SPIR-V byte length %d is not word-aligned", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// BytesFromWords converts SPIR-V words to a little-endian byte stream.
func BytesFromWords(w []uint32) []byte {
	b := make([]byte, len(w)*4)
	for i, word := range w {
		binary.LittleEndian.PutUint32(b[i*4:], word)
	}
	return b
}
