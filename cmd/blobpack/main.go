// Command blobpack packs offline-compiled shader binaries into a blob file
// and inspects existing blob files.
//
// Packing:
//
//	blobpack -output shaders.blob vertex.spv fragment.spv ...
//
// Each input file is stored under the FNV-1a content hash of its bytes.
// Vertex shaders specialized for a particular input layout must be hashed by
// the offline compiler itself (the layout participates in the hash); blobpack
// is for binaries whose content hash alone identifies them.
//
// Listing:
//
//	blobpack -list shaders.blob
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderlink/blobstore"
)

func main() {
	var (
		output = flag.String("output", "shaders.blob", "output blob file")
		list   = flag.Bool("list", false, "list the entries of a blob file instead of packing")
	)
	flag.Parse()

	if *list {
		if flag.NArg() != 1 {
			log.Fatal("usage: blobpack -list <file>")
		}
		if err := listBlob(flag.Arg(0)); err != nil {
			log.Fatalf("Failed to list: %v", err)
		}
		return
	}

	if flag.NArg() == 0 {
		log.Fatal("usage: blobpack [-output file] <shader.spv> ...")
	}
	if err := pack(*output, flag.Args()); err != nil {
		log.Fatalf("Failed to pack: %v", err)
	}
}

func pack(output string, inputs []string) error {
	w := blobstore.NewWriter()
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !validSPIRV(data) {
			log.Printf("warning: %s does not start with the SPIR-V magic number", path)
		}
		hash := blobstore.HashShader(data)
		w.Add(hash, data)
		log.Printf("%s: hash %#016x, %d bytes", path, hash, len(data))
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	written, err := w.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Printf("Packed %d shaders into %s (%d bytes)", w.Len(), output, written)
	return nil
}

func listBlob(path string) error {
	store, err := blobstore.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d shaders\n", path, store.Len())
	for _, e := range store.Entries() {
		payload, err := store.Payload(e)
		if err != nil {
			return err
		}
		note := ""
		if !validSPIRV(payload) {
			note = "  (not SPIR-V)"
		}
		fmt.Printf("  %#016x  offset %8d  %8d bytes%s\n", e.Hash, e.Offset, e.Size, note)
	}
	return nil
}

// validSPIRV reports whether data starts with the little-endian SPIR-V magic
// number.
func validSPIRV(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == spirv.MagicNumber
}
