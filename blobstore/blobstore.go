// Package blobstore serves offline-compiled shader binaries by content hash.
//
// A blob file is produced ahead of time by an offline shader compiler (or by
// Writer) and contains every device binary a title will ever link. At
// startup the file is loaded once into an open-addressed table sized exactly
// to the declared shader count; the store is immutable afterwards and lookup
// replaces on-the-fly shader patching and compilation entirely.
//
// File layout, all little-endian:
//
//	uint32  count N
//	N × { uint64 contentHash; uint32 offset; uint32 size }  (placement order)
//	payload bytes at their declared offsets
//
// There is no version header and no checksum; a malformed file surfaces only
// as a short read. The records appear in the same open-addressed placement
// order used to probe at load time, so loading and writing must share one
// probe sequence (see probeStart/probeNext).
package blobstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Entry locates one shader binary inside the store's payload region.
type Entry struct {
	Hash   uint64
	Offset uint32
	Size   uint32
}

// headerSize and recordSize are the fixed sizes of the file preamble.
const (
	headerSize = 4
	recordSize = 16
)

// Store is the loaded, immutable lookup table. Capacity equals the declared
// shader count, so the table runs completely full and lookups are resolved
// by exact hash match rather than empty-slot termination.
type Store struct {
	slots    []Entry
	occupied []bool
	payload  []byte
}

// probeStart returns the first slot to probe for hash. The table is
// populated starting one step past the naive hash % capacity, so lookup
// begins there too.
func probeStart(hash uint64, capacity int) int {
	return int((hash + 1) % uint64(capacity))
}

// probeNext advances one slot, wrapping at capacity.
func probeNext(i, capacity int) int {
	i++
	if i == capacity {
		return 0
	}
	return i
}

// Load reads a blob file from r and builds the lookup table.
func Load(r io.Reader) (*Store, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("blobstore: read count: %w", err)
	}
	count := int(binary.LittleEndian.Uint32(header[:]))
	if count == 0 {
		return nil, fmt.Errorf("blobstore: empty blob file")
	}

	s := &Store{
		slots:    make([]Entry, count),
		occupied: make([]bool, count),
	}

	var record [recordSize]byte
	payloadEnd := uint64(0)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, record[:]); err != nil {
			return nil, fmt.Errorf("blobstore: read record %d: %w", i, err)
		}
		e := Entry{
			Hash:   binary.LittleEndian.Uint64(record[0:]),
			Offset: binary.LittleEndian.Uint32(record[8:]),
			Size:   binary.LittleEndian.Uint32(record[12:]),
		}
		s.insert(e)
		if end := uint64(e.Offset) + uint64(e.Size); end > payloadEnd {
			payloadEnd = end
		}
	}

	dataStart := uint64(headerSize + count*recordSize)
	if payloadEnd < dataStart {
		return nil, fmt.Errorf("blobstore: payload region ends before records")
	}
	s.payload = make([]byte, payloadEnd-dataStart)
	if _, err := io.ReadFull(r, s.payload); err != nil {
		return nil, fmt.Errorf("blobstore: read payloads: %w", err)
	}
	return s, nil
}

// LoadFile reads a blob file from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blobstore: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// insert places e at the first free slot along its probe sequence. The
// table holds exactly count entries, so a free slot always exists during
// load.
func (s *Store) insert(e Entry) {
	i := probeStart(e.Hash, len(s.slots))
	for s.occupied[i] {
		i = probeNext(i, len(s.slots))
	}
	s.slots[i] = e
	s.occupied[i] = true
}

// Find looks up a content hash, probing at most Capacity slots along the
// shared probe sequence. The second result is false when no entry carries
// the hash; for a store backing a link, that means the offline compiler
// never produced the requested shader.
func (s *Store) Find(hash uint64) (Entry, bool) {
	i := probeStart(hash, len(s.slots))
	for probes := 0; probes < len(s.slots); probes++ {
		if s.occupied[i] && s.slots[i].Hash == hash {
			return s.slots[i], true
		}
		i = probeNext(i, len(s.slots))
	}
	return Entry{}, false
}

// Payload returns the binary located by e.
func (s *Store) Payload(e Entry) ([]byte, error) {
	dataStart := uint32(headerSize + len(s.slots)*recordSize)
	if e.Offset < dataStart {
		return nil, fmt.Errorf("blobstore: entry offset %d inside record region", e.Offset)
	}
	start := uint64(e.Offset) - uint64(dataStart)
	end := start + uint64(e.Size)
	if end > uint64(len(s.payload)) {
		return nil, fmt.Errorf("blobstore: entry %#x extends past payload region", e.Hash)
	}
	return s.payload[start:end], nil
}

// Entries returns every stored entry in slot order, which matches the
// record order of the file the store was loaded from.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.slots))
	for i, e := range s.slots {
		if s.occupied[i] {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of stored shaders.
func (s *Store) Len() int { return len(s.slots) }

// Capacity returns the table capacity. Equal to Len by construction.
func (s *Store) Capacity() int { return len(s.slots) }
