package shaderlink

import "github.com/gogpu/shaderlink/shaderir"

// linkKey is the composite identity of a linked program: which two shaders,
// linked under which input layout. It is a comparable value type so the Go
// map resolves lookups by exact element-wise equality — attribute order and
// count included — and the rolling hash below is never trusted on its own.
type linkKey struct {
	vertexID   ShaderID
	fragmentID ShaderID
	attrCount  int
	attrs      [shaderir.MaxVertexAttributes]shaderir.VertexAttribute
}

func newLinkKey(v, f *Shader, layout []shaderir.VertexAttribute) linkKey {
	k := linkKey{
		vertexID:   v.id,
		fragmentID: f.id,
		attrCount:  len(layout),
	}
	copy(k.attrs[:], layout)
	return k
}

// hashFactor is the multiplier of the polynomial rolling hash.
const hashFactor = 31

// hash folds the key into a compact 32-bit tag: attribute count, then each
// attribute's usage/usageIndex/format, then the two shader identities.
// Stable across runs, not cryptographic; used as a log/diagnostic tag.
func (k *linkKey) hash() uint32 {
	h := uint32(k.attrCount)
	for i := 0; i < k.attrCount; i++ {
		h = h*hashFactor + uint32(k.attrs[i].Usage)
		h = h*hashFactor + uint32(k.attrs[i].UsageIndex)
		h = h*hashFactor + uint32(k.attrs[i].Format)
	}
	h = h*hashFactor + uint32(k.vertexID)
	h = h*hashFactor + uint32(k.fragmentID)
	return h
}

// linkCache maps link keys to their unique live Program. Alongside the
// primary map it keeps a secondary index from shader ID to the keys
// referencing it, so cascading invalidation on shader release walks exactly
// the affected entries instead of scanning the whole cache.
//
// The cache owns its keys and Program values but references the underlying
// shaders weakly, by ID: entries never hold a shader alive.
type linkCache struct {
	entries  map[linkKey]*Program
	byShader map[ShaderID]map[linkKey]struct{}
}

// init allocates the maps on first use.
func (lc *linkCache) init() {
	if lc.entries == nil {
		lc.entries = make(map[linkKey]*Program)
		lc.byShader = make(map[ShaderID]map[linkKey]struct{})
	}
}

func (lc *linkCache) get(key linkKey) (*Program, bool) {
	p, ok := lc.entries[key]
	return p, ok
}

func (lc *linkCache) put(key linkKey, p *Program) {
	lc.entries[key] = p
	lc.index(key.vertexID, key)
	lc.index(key.fragmentID, key)
}

func (lc *linkCache) index(id ShaderID, key linkKey) {
	keys := lc.byShader[id]
	if keys == nil {
		keys = make(map[linkKey]struct{})
		lc.byShader[id] = keys
	}
	keys[key] = struct{}{}
}

// remove drops the entry and its index records. The Program itself is the
// caller's to destroy.
func (lc *linkCache) remove(key linkKey) {
	delete(lc.entries, key)
	lc.unindex(key.vertexID, key)
	lc.unindex(key.fragmentID, key)
}

func (lc *linkCache) unindex(id ShaderID, key linkKey) {
	keys := lc.byShader[id]
	delete(keys, key)
	if len(keys) == 0 {
		delete(lc.byShader, id)
	}
}

// keysFor returns a snapshot of every key referencing the shader, so the
// caller can remove entries without disturbing iteration.
func (lc *linkCache) keysFor(id ShaderID) []linkKey {
	keys := lc.byShader[id]
	if len(keys) == 0 {
		return nil
	}
	out := make([]linkKey, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	return out
}

func (lc *linkCache) len() int { return len(lc.entries) }
