package store

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// File store layout:
//
//	[8]  magic "STRMSTR1"
//	[..] records, back to back, in write order
//	[..] index: one 20-byte entry per record (id u64, offset u64, length u32)
//	[24] trailer: index offset u64, entry count u64, magic
//
// Records carry no framing of their own; the index is the only way in.
// All integers are little-endian.
var fileMagic = [8]byte{'S', 'T', 'R', 'M', 'S', 'T', 'R', '1'}

const (
	indexEntrySize = 20
	trailerSize    = 24
)

type indexEntry struct {
	offset uint64
	length uint32
}

// FileWriter writes closure records to a single append-only file. It is not
// safe for concurrent use; traversal is sequential and writes from one
// goroutine. The index and trailer are written on Close, so a file without
// a valid trailer is an interrupted build and will not open.
type FileWriter struct {
	f      *os.File
	w      *bufio.Writer
	offset uint64
	index  map[int64]indexEntry
	closed bool
}

// CreateFile creates a closure store file at path, truncating any previous
// file. Parent directories are created as needed.
func CreateFile(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriterSize(f, 1<<20)
	if _, err := w.Write(fileMagic[:]); err != nil {
		f.Close()
		return nil, err
	}
	return &FileWriter{
		f:      f,
		w:      w,
		offset: uint64(len(fileMagic)),
		index:  make(map[int64]indexEntry),
	}, nil
}

// Put encodes and appends one closure record. Writing the same id twice
// keeps only the last record.
func (s *FileWriter) Put(_ context.Context, id int64, ancestors []int64) error {
	if s.closed {
		return ErrClosed
	}
	record, err := Encode(ancestors)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(record); err != nil {
		return err
	}
	s.index[id] = indexEntry{offset: s.offset, length: uint32(len(record))}
	s.offset += uint64(len(record))
	return nil
}

// Len returns the number of records written so far.
func (s *FileWriter) Len() int { return len(s.index) }

// Close writes the index and trailer and syncs the file. The store is only
// readable after a successful Close.
func (s *FileWriter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	ids := make([]int64, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	indexOffset := s.offset
	var entry [indexEntrySize]byte
	for _, id := range ids {
		e := s.index[id]
		binary.LittleEndian.PutUint64(entry[0:], uint64(id))
		binary.LittleEndian.PutUint64(entry[8:], e.offset)
		binary.LittleEndian.PutUint32(entry[16:], e.length)
		if _, err := s.w.Write(entry[:]); err != nil {
			s.f.Close()
			return err
		}
	}

	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint64(trailer[0:], indexOffset)
	binary.LittleEndian.PutUint64(trailer[8:], uint64(len(ids)))
	copy(trailer[16:], fileMagic[:])
	if _, err := s.w.Write(trailer[:]); err != nil {
		s.f.Close()
		return err
	}

	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// FileStore reads closure records from a file produced by FileWriter. The
// index is loaded into memory on open; record payloads are fetched with
// positional reads, so Get is safe for concurrent use.
type FileStore struct {
	f     *os.File
	index map[int64]indexEntry
}

// OpenFile opens a closure store file for reading and loads its index.
func OpenFile(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() < int64(len(fileMagic)+trailerSize) {
		f.Close()
		return nil, fmt.Errorf("%s: not a closure store (too small)", path)
	}

	var head [8]byte
	if _, err := f.ReadAt(head[:], 0); err != nil {
		f.Close()
		return nil, err
	}
	var trailer [trailerSize]byte
	if _, err := f.ReadAt(trailer[:], st.Size()-trailerSize); err != nil {
		f.Close()
		return nil, err
	}
	if head != fileMagic || [8]byte(trailer[16:24]) != fileMagic {
		f.Close()
		return nil, fmt.Errorf("%s: not a closure store (bad magic)", path)
	}

	indexOffset := binary.LittleEndian.Uint64(trailer[0:])
	count := binary.LittleEndian.Uint64(trailer[8:])
	indexSize := int64(count) * indexEntrySize
	if int64(indexOffset)+indexSize+trailerSize != st.Size() {
		f.Close()
		return nil, fmt.Errorf("%s: index does not match file size", path)
	}

	raw := make([]byte, indexSize)
	if _, err := f.ReadAt(raw, int64(indexOffset)); err != nil {
		f.Close()
		return nil, err
	}

	index := make(map[int64]indexEntry, count)
	for i := uint64(0); i < count; i++ {
		e := raw[i*indexEntrySize:]
		id := int64(binary.LittleEndian.Uint64(e[0:]))
		index[id] = indexEntry{
			offset: binary.LittleEndian.Uint64(e[8:]),
			length: binary.LittleEndian.Uint32(e[16:]),
		}
	}

	return &FileStore{f: f, index: index}, nil
}

// Get fetches and decodes the closure of one segment.
func (s *FileStore) Get(_ context.Context, id int64) ([]int64, error) {
	e, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	record := make([]byte, e.length)
	if _, err := s.f.ReadAt(record, int64(e.offset)); err != nil {
		return nil, err
	}
	return Decode(record)
}

// Len returns the number of records in the store.
func (s *FileStore) Len() int { return len(s.index) }

// Close releases the underlying file.
func (s *FileStore) Close() error { return s.f.Close() }

// Ensure the file store implements both halves.
var (
	_ Writer = (*FileWriter)(nil)
	_ Reader = (*FileStore)(nil)
)
