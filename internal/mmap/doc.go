// Package mmap provides memory-mapped file access for zero-copy reads.
//
// Descriptor matrices are persisted once and then read randomly,
// column by column, by many workers at the same time. Mapping the
// backing file keeps the working set in the kernel page cache instead
// of materializing the matrix per worker.
//
//	m, err := mmap.Open("matrix.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	m.Advise(mmap.AccessRandom)
//
// Unix platforms use mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and treats hints as no-ops.
//
// Mapping is safe for concurrent read access. Close is idempotent,
// but callers must ensure no goroutine touches Bytes() after Close
// returns.
package mmap
