package matrix

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Write persists columns to a backing file at path. The write is
// atomic: data goes to a temp file renamed into place on success.
func Write(path string, cols [][]float64) error {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return errors.New("matrix: nothing to write")
	}
	rows := len(cols[0])
	for i, col := range cols {
		if len(col) != rows {
			return fmt.Errorf("matrix: column %d has %d rows, want %d", i, len(col), rows)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := bufio.NewWriterSize(tmp, 1<<20)

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], MagicNumber)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	binary.LittleEndian.PutUint64(header[8:16], uint64(rows))
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(cols)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	var buf [8]byte
	for _, col := range cols {
		for _, v := range col {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
