package blobstore

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer accumulates shader binaries and serializes them in the blob file
// format. It places records with the same probe sequence Load uses, so a
// written file loads back into an identical table.
type Writer struct {
	hashes   []uint64
	payloads [][]byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Add appends one shader binary under its content hash. The payload is
// retained by reference until WriteTo.
func (w *Writer) Add(hash uint64, payload []byte) {
	w.hashes = append(w.hashes, hash)
	w.payloads = append(w.payloads, payload)
}

// Len returns the number of added shaders.
func (w *Writer) Len() int { return len(w.hashes) }

// WriteTo serializes the blob file to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	count := len(w.hashes)
	if count == 0 {
		return 0, fmt.Errorf("blobstore: nothing to write")
	}

	// Open-addressed placement, shared with Store.insert.
	slotOf := make([]int, count) // slot index -> payload index
	occupied := make([]bool, count)
	for idx, hash := range w.hashes {
		i := probeStart(hash, count)
		for occupied[i] {
			i = probeNext(i, count)
		}
		slotOf[i] = idx
		occupied[i] = true
	}

	// Payload offsets follow slot order so the file reads front to back.
	offsets := make([]uint32, count)
	offset := uint32(headerSize + count*recordSize)
	for slot := 0; slot < count; slot++ {
		offsets[slot] = offset
		offset += uint32(len(w.payloads[slotOf[slot]]))
	}

	var written int64
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[:], uint32(count))
	n, err := out.Write(header[:])
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("blobstore: write count: %w", err)
	}

	var record [recordSize]byte
	for slot := 0; slot < count; slot++ {
		idx := slotOf[slot]
		binary.LittleEndian.PutUint64(record[0:], w.hashes[idx])
		binary.LittleEndian.PutUint32(record[8:], offsets[slot])
		binary.LittleEndian.PutUint32(record[12:], uint32(len(w.payloads[idx])))
		n, err = out.Write(record[:])
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("blobstore: write record %d: %w", slot, err)
		}
	}

	for slot := 0; slot < count; slot++ {
		n, err = out.Write(w.payloads[slotOf[slot]])
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("blobstore: write payload %d: %w", slot, err)
		}
	}
	return written, nil
}
