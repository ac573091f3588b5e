// Package xlsx renders documents as Excel workbooks, one sheet per table.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/leefowlercu/docexport/internal/document"
)

var (
	// ErrEmptyDocument is returned when there are no tables to export.
	ErrEmptyDocument = errors.New("document has no tables to export")

	// ErrUnknownTable is returned when the tableId option names a missing table.
	ErrUnknownTable = errors.New("unknown table")
)

// OptionTableID restricts the export to a single table.
const OptionTableID = "tableId"

// maxSheetName is Excel's sheet name length limit, in characters.
const maxSheetName = 31

// Exporter renders documents as XLSX workbooks.
type Exporter struct{}

// NewExporter creates a new Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders doc as an XLSX workbook. Export options are read from query;
// see OptionTableID.
func (e *Exporter) Export(ctx context.Context, doc *document.Document, query url.Values) ([]byte, error) {
	tables := doc.Tables()
	if id := query.Get(OptionTableID); id != "" {
		t := doc.Table(id)
		if t == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, id)
		}
		tables = []*document.Table{t}
	}

	if len(tables) == 0 {
		return nil, ErrEmptyDocument
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style; %w", err)
	}

	names := sheetNames(tables)
	defaultSheet := f.GetSheetName(0)

	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, names[i]); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q; %w", names[i], err)
			}
		} else if _, err := f.NewSheet(names[i]); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q; %w", names[i], err)
		}

		if err := writeTable(f, names[i], t, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to write table %s; %w", t.ID, err)
		}
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook; %w", err)
	}

	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, t *document.Table, headerStyle int) error {
	row := 1

	if len(t.Columns) > 0 {
		header := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}

		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		row++
	}

	for _, record := range t.Rows {
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = cellValue(v)
		}

		start, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return err
		}
		row++
	}

	return nil
}

// decimalPattern matches plain decimal numbers without leading zeros.
var decimalPattern = regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// maxIntegerDigits is the number of integer digits a float64 cell keeps exactly.
const maxIntegerDigits = 15

// cellValue stores plain decimal numbers as numbers and everything else as
// text, unchanged. Values that would lose digits as a float64 stay text.
func cellValue(s string) any {
	m := decimalPattern.FindStringSubmatch(s)
	if m == nil || len(m[1]) > maxIntegerDigits {
		return s
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return n
}

// sheetNames maps table ids to valid, case-insensitively unique sheet names.
func sheetNames(tables []*document.Table) []string {
	used := make(map[string]bool, len(tables))
	names := make([]string, len(tables))

	for i, t := range tables {
		base := sanitizeSheetName(t.ID)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}

	return names
}

func sanitizeSheetName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, id)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	return truncateRunes(name, maxSheetName)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
