// Package matrix implements the out-of-core descriptor matrix: a
// column-major float64 backing file written once after preprocessing
// and memory-mapped read-only for random column slicing during the
// evolutionary search. Hot columns are served from an LRU cache so
// population-wide evaluation does not re-decode the same descriptors
// every generation.
package matrix

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/descgo/internal/cache"
	"github.com/hupe1980/descgo/internal/mmap"
)

const (
	// MagicNumber identifies descriptor matrix files (ASCII: "DGMX").
	MagicNumber = 0x44474D58
	// Version is the current backing file format version.
	Version = 1

	headerSize = 32
)

var (
	ErrInvalidMagic   = errors.New("matrix: invalid magic number")
	ErrInvalidVersion = errors.New("matrix: unsupported version")
	ErrTruncated      = errors.New("matrix: file smaller than header declares")
	ErrColumnRange    = errors.New("matrix: column index out of range")
)

// Matrix is a read-only, randomly sliceable view over a backing file.
// It is safe for concurrent use; workers share one Matrix instance.
type Matrix struct {
	path  string
	m     *mmap.Mapping
	rows  int
	cols  int
	cache cache.ColumnCache
}

// Open maps the backing file at path. If c is nil, columns are decoded
// on every access without caching.
func Open(path string, c cache.ColumnCache) (*Matrix, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	data := m.Bytes()
	if len(data) < headerSize {
		m.Close()
		return nil, fmt.Errorf("%w: %s", ErrTruncated, path)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != MagicNumber {
		m.Close()
		return nil, fmt.Errorf("%w: %s", ErrInvalidMagic, path)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != Version {
		m.Close()
		return nil, fmt.Errorf("%w: %s has version %d", ErrInvalidVersion, path, v)
	}

	rows := binary.LittleEndian.Uint64(data[8:16])
	cols := binary.LittleEndian.Uint64(data[16:24])
	want := headerSize + rows*cols*8
	if uint64(len(data)) < want {
		m.Close()
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrTruncated, path, len(data), want)
	}

	// Column slicing is random access by construction.
	_ = m.Advise(mmap.AccessRandom)

	return &Matrix{
		path:  path,
		m:     m,
		rows:  int(rows),
		cols:  int(cols),
		cache: c,
	}, nil
}

// Rows returns the number of compounds.
func (x *Matrix) Rows() int { return x.rows }

// Cols returns the number of descriptors.
func (x *Matrix) Cols() int { return x.cols }

// Close unmaps the backing file. Columns returned earlier stay valid
// only if they were cache copies; callers must not use the Matrix
// after Close.
func (x *Matrix) Close() error {
	if x.cache != nil {
		x.cache.Invalidate(func(key cache.Key) bool { return key.Path == x.path })
	}
	return x.m.Close()
}

// Column returns the j-th descriptor column. The returned slice is
// shared and must be treated as read-only.
func (x *Matrix) Column(j int) ([]float64, error) {
	if j < 0 || j >= x.cols {
		return nil, fmt.Errorf("%w: %d of %d", ErrColumnRange, j, x.cols)
	}

	key := cache.Key{Path: x.path, Col: uint64(j)}
	if x.cache != nil {
		if col, ok := x.cache.Get(key); ok {
			return col, nil
		}
	}

	col, err := x.decode(j)
	if err != nil {
		return nil, err
	}
	if x.cache != nil {
		x.cache.Set(key, col)
	}
	return col, nil
}

// Slice assembles the given columns into a flattened row-major
// sub-matrix of shape rows × len(cols), the layout the clustering
// primitive consumes. dst is reused when large enough.
func (x *Matrix) Slice(cols []int, dst []float64) ([]float64, error) {
	k := len(cols)
	need := x.rows * k
	if cap(dst) < need {
		dst = make([]float64, need)
	}
	dst = dst[:need]

	for c, j := range cols {
		col, err := x.Column(j)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			dst[i*k+c] = v
		}
	}
	return dst, nil
}

func (x *Matrix) decode(j int) ([]float64, error) {
	data := x.m.Bytes()
	if data == nil {
		return nil, mmap.ErrClosed
	}

	off := headerSize + j*x.rows*8
	col := make([]float64, x.rows)
	for i := 0; i < x.rows; i++ {
		col[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[off+i*8:]))
	}
	return col, nil
}
