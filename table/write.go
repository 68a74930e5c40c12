package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Write persists the table to path as a delimited text file, one
// header row of descriptor names followed by one row per compound.
// Names ending in .gz are gzip-compressed. The write is atomic: data
// goes to a temp file in the same directory which is renamed into
// place on success.
func Write(t *Table, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	var w io.Writer = tmp
	var gz *gzip.Writer
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz = gzip.NewWriter(tmp)
		w = gz
	}

	if err := writeRecords(t, w); err != nil {
		return fmt.Errorf("table: write %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("table: write %s: %w", path, err)
		}
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeRecords(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Names()); err != nil {
		return err
	}

	record := make([]string, t.Columns())
	for r := 0; r < t.Rows(); r++ {
		for c := 0; c < t.Columns(); c++ {
			record[c] = strconv.FormatFloat(t.Column(c)[r], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
