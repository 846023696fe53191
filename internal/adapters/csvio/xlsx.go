package csvio

import (
	"fmt"
	"strings"

	"github.com/okian/liftsheet/internal/domain/table"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX imports a sheet of an Excel workbook. With an empty sheet name the
// first sheet is used. The first non-blank row becomes the header; blank rows
// are skipped, short rows are padded to the header width and trailing blank
// cells past it are dropped. A row with data past the header is an error. Cells are taken
// as displayed text.
func ReadXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: %w", path, ErrNoSheet)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrNoSheet, sheet)
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	return fromRows(raw)
}

// fromRows shapes spreadsheet rows into a table.
func fromRows(raw [][]string) (*table.Table, error) {
	var header []string
	var rows [][]string
	for _, r := range raw {
		if blank(r) {
			continue
		}
		if header == nil {
			header = make([]string, len(r))
			for i, h := range r {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}
		for len(r) > len(header) && strings.TrimSpace(r[len(r)-1]) == "" {
			r = r[:len(r)-1]
		}
		if len(r) > len(header) {
			// table.New rejects it as ragged.
			rows = append(rows, r)
			continue
		}
		row := make([]string, len(header))
		copy(row, r)
		rows = append(rows, row)
	}
	if header == nil {
		return nil, ErrEmptyInput
	}
	return table.New(header, rows)
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
