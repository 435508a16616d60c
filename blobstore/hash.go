package blobstore

import (
	"hash/fnv"

	"github.com/gogpu/shaderlink/shaderir"
)

// HashShader computes the 64-bit content hash of a shader's original
// compiled bytecode. Fragment shaders are looked up under this hash alone.
func HashShader(bytecode []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(bytecode) // fnv.Write never returns an error
	return h.Sum64()
}

// HashVertexShader computes the content hash of a vertex shader specialized
// for an input layout. The offline compiler bakes the layout's element
// formats into the binary, so the layout is part of the shader's identity.
func HashVertexShader(bytecode []byte, layout []shaderir.VertexAttribute) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(bytecode)
	buf := make([]byte, 0, 3*len(layout))
	for _, attr := range layout {
		buf = append(buf, byte(attr.Usage), byte(attr.UsageIndex), byte(attr.Format))
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}
