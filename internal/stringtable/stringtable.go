// Package stringtable interns tag keys/values into stable numeric ids
// shared across every other component in the pipeline.
package stringtable

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
)

// StringID is a stable numeric handle for an interned string.
type StringID = uint32

// Table interns strings, returning stable ids. GetID is thread-safe: intern
// (the write path) is serialized under a mutex, lookups of already-known
// strings take the read lock only (spec §5).
type Table struct {
	mu      sync.RWMutex
	byValue map[string]StringID
	byID    []string

	path string
	mf   mmap.MMap
	file *os.File
}

// New creates an empty, unpersisted string table.
func New() *Table {
	return &Table{
		byValue: make(map[string]StringID),
	}
}

// GetID interns str if it hasn't been seen before and returns its id.
func (t *Table) GetID(str string) StringID {
	t.mu.RLock()
	if id, ok := t.byValue[str]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byValue[str]; ok {
		return id
	}
	id := StringID(len(t.byID))
	t.byID = append(t.byID, str)
	t.byValue[str] = id
	return id
}

// String resolves an id back to its string. The zero value is returned for
// an id that was never interned on this table instance.
func (t *Table) String(id StringID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.byID) {
		return ""
	}
	return t.byID[id]
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// Open loads a persisted string table snapshot from path, mmap'ing the
// file read-only for the initial scan (adapted from
// internal/nodeindex.MmapIndex's mmap-backed fixed-record layout to this
// table's variable-length, length-prefixed record format). If path does
// not exist, an empty table is returned and Save will create it later.
func Open(path string) (*Table, error) {
	t := New()
	t.path = path

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stringtable: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stringtable: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return t, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("stringtable: mmap %s: %w", path, err)
	}

	offset := 0
	for offset < len(m) {
		if offset+4 > len(m) {
			m.Unmap()
			return nil, fmt.Errorf("stringtable: %s: truncated length prefix", path)
		}
		n := int(binary.LittleEndian.Uint32(m[offset:]))
		offset += 4
		if offset+n > len(m) {
			m.Unmap()
			return nil, fmt.Errorf("stringtable: %s: truncated record", path)
		}
		s := string(m[offset : offset+n])
		offset += n

		id := StringID(len(t.byID))
		t.byID = append(t.byID, s)
		t.byValue[s] = id
	}

	if err := m.Unmap(); err != nil {
		return nil, fmt.Errorf("stringtable: unmap %s: %w", path, err)
	}
	return t, nil
}

// Save persists the current table to path; the path a table was opened
// from is not used. Layout: a sequence of
// [uint32 length little-endian][bytes] records, written in id order so
// Open can rebuild the same id assignment.
func (t *Table) Save(path string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stringtable: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var lenBuf [4]byte
	for _, s := range t.byID {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("stringtable: write %s: %w", path, err)
		}
		if _, err := io.WriteString(w, s); err != nil {
			return fmt.Errorf("stringtable: write %s: %w", path, err)
		}
	}
	return w.Flush()
}
