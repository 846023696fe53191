// Package csvio loads and stores meet-result tables as CSV files or
// spreadsheet imports.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/liftsheet/internal/domain/table"
)

// File permission constants.
const (
	outputFilePermission = 0o644
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses a comma separated table. The first record is the header.
// A leading UTF-8 BOM is skipped and blank lines are ignored; every row must
// have as many cells as the header.
func Read(r io.Reader) (*table.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = table.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return table.New(header, rows)
}

// Write serializes t with a header line, escaping cells as needed.
func Write(w io.Writer, t *table.Table) error {
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writeLine(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, cells []string) error {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = table.Escape(c)
	}
	if _, err := w.WriteString(strings.Join(escaped, string(table.Delimiter)) + "\n"); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// ReadFile loads a table from path. Paths ending in .xlsx are imported from
// the first sheet of the workbook.
func ReadFile(path string) (*table.Table, error) {
	if IsWorkbook(path) {
		return ReadXLSX(path, "")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile stores t at path. The data goes to a temporary file in the same
// directory first and is renamed into place, so readers never see a partial file.
func WriteFile(path string, t *table.Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Write(tmp, t); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(outputFilePermission); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
