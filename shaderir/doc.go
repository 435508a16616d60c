// Package shaderir defines the data model for compiled shader intermediate
// representation consumed by the shaderlink runtime.
//
// A Program is the output of an upstream bytecode translator: SPIR-V words,
// the entry point, and the metadata the runtime needs to link and feed the
// shader (declared uniforms, samplers, vertex attributes, interface slots,
// and the vertex-attribute patch table appended after the executable words).
//
// shaderir performs no translation itself. Producing a Program from compiled
// shader bytecode is the job of an external translator; this package only
// fixes the shape of what such a translator hands over.
package shaderir
