package shaderlink

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/shaderlink/shaderir"
)

// uniformSlotSize is the byte size every uniform register occupies in the
// packed buffer. Yes, even the bool registers.
const uniformSlotSize = 16

// registerSlots returns how many 16-byte slots a uniform occupies.
func registerSlots(arrayCount int) int {
	if arrayCount > 0 {
		return arrayCount
	}
	return 1
}

// buildUniformBuffer flattens the shader's declared uniforms against a
// register file into a single tightly-packed buffer, in declaration order.
//
// Float and int uniforms are raw 16-byte-slot copies from register 4*index.
// Bool uniforms expand each register to a full slot: the value widened to a
// 32-bit integer in the lead 4 bytes, the remaining 12 left zero.
//
// The result length always equals the size precomputed at compile time; a
// mismatch means the IR was mutated after compilation and is a programming
// error, not a runtime condition.
func buildUniformBuffer(s *Shader, regs *RegisterFile) []byte {
	if s.uniformBufferSize == 0 {
		return nil
	}

	buf := make([]byte, s.uniformBufferSize)
	offset := 0
	for _, u := range s.ir.Uniforms {
		slots := registerSlots(u.ArrayCount)
		size := slots * uniformSlotSize

		switch u.Type {
		case shaderir.UniformFloat:
			base := u.Index * 4
			for w := 0; w < slots*4; w++ {
				binary.LittleEndian.PutUint32(buf[offset+w*4:], math.Float32bits(regs.f[base+w]))
			}

		case shaderir.UniformInt:
			base := u.Index * 4
			for w := 0; w < slots*4; w++ {
				binary.LittleEndian.PutUint32(buf[offset+w*4:], uint32(regs.i[base+w]))
			}

		case shaderir.UniformBool:
			for j := 0; j < slots; j++ {
				if regs.b[u.Index+j] {
					binary.LittleEndian.PutUint32(buf[offset+j*uniformSlotSize:], 1)
				}
			}

		default:
			panic(fmt.Sprintf("shaderlink: unknown uniform type %d", u.Type))
		}

		offset += size
	}

	if offset != s.uniformBufferSize {
		panic(fmt.Sprintf("shaderlink: packed %d uniform bytes, precomputed %d",
			offset, s.uniformBufferSize))
	}
	return buf
}

// UpdateUniformBuffers packs both bound stages' register files and pushes
// the resulting buffers to the device, one per stage that declares
// uniforms. Call after the last register write for a draw and before the
// draw's submission.
//
// The buffers are repacked on every call. Skipping the push when the
// registers a shader reads are unchanged since the previous draw would be a
// worthwhile optimization; nothing tracks dirtiness yet.
func (c *Context) UpdateUniformBuffers() error {
	p := c.boundProgram
	if p == nil {
		return ErrNoProgramBound
	}

	for _, s := range [...]*Shader{p.vertexData, p.fragmentData} {
		if s.uniformBufferSize == 0 {
			continue
		}
		stage := s.ir.Stage
		buf := buildUniformBuffer(s, c.registersFor(stage))
		if err := c.device.PushUniforms(stage, 0, buf); err != nil {
			return fmt.Errorf("shaderlink: push %s uniforms: %w", stage, err)
		}
	}
	return nil
}
