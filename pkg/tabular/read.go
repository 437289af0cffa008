// Package tabular reads source spreadsheets and writes validated output.
// It only moves cells in and out; all matching happens in package resolve.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// Table is a rectangular sheet: a header and rows of equal width.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadOptions control how an input file is read.
type ReadOptions struct {
	Sheet    string // XLSX sheet name; default first sheet
	Encoding string // CSV/TSV source encoding; default UTF-8
}

// Read loads a .csv, .tsv, .xlsx or .xlsm file.
func Read(path string, opts ReadOptions) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = readDelimited(path, ',', opts.Encoding)
	case ".tsv":
		records, err = readDelimited(path, '\t', opts.Encoding)
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q: use .xlsx, .csv or .tsv", ext)
	}
	if err != nil {
		return nil, err
	}
	return newTable(records)
}

func readDelimited(path string, comma rune, enc string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// newTable takes the first row as header. Exported spreadsheets often start
// with a blank row; when every header cell is empty the next row is used.
func newTable(records [][]string) (*Table, error) {
	if len(records) > 0 && blankRow(records[0]) {
		slog.Warn("blank header row detected, using next row as header")
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input has no header row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) // Excel CSV exports carry a BOM
	}

	width := len(header)
	for _, rec := range records[1:] {
		width = max(width, len(rec))
	}
	for len(header) < width {
		header = append(header, fmt.Sprintf("Unnamed: %d", len(header)))
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, width)
		copy(row, rec)
		rows = append(rows, row)
	}
	return &Table{Header: header, Rows: rows}, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found, available: %s", name, strings.Join(t.Header, ", "))
}

// Values returns the named column as raw values. Empty cells are null.
func (t *Table) Values(column string) ([]resolve.Value, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	out := make([]resolve.Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = cellValue(row[idx])
	}
	return out, nil
}

func cellValue(cell string) resolve.Value {
	if cell == "" {
		return resolve.Null
	}
	return resolve.Of(cell)
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
