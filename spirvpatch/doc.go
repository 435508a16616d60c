// Package spirvpatch specializes generically-compiled vertex-shader SPIR-V
// for a concrete input layout, and links vertex outputs to fragment inputs
// so a patched pair can be compiled into a device program.
//
// Translators compile vertex shaders as if every attribute were a
// 4-component float. Packed-integer element formats (Byte4, Short2, Short4)
// break that assumption: the shader must declare an integer input and
// convert the loaded value to float. Apply rewrites the type and opcode
// words recorded in the program's patch table to make that switch.
//
// Apply and LinkAttributes mutate the programs they are handed. Callers
// patch private clones (shaderir.Program.Clone), never IR shared with other
// linked programs.
package spirvpatch
