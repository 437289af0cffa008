package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// Mode selects the shape of the output sheet.
type Mode string

const (
	// ModeMapping writes one row per distinct raw value.
	ModeMapping Mode = "mapping"
	// ModeFull writes every source row with the validation columns appended.
	ModeFull Mode = "full"
)

// ParseMode validates a --mode flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMapping, ModeFull:
		return Mode(s), nil
	case "":
		return ModeMapping, nil
	}
	return "", fmt.Errorf("unknown output mode %q (want mapping or full)", s)
}

// Output column names.
const (
	ColRaw       = "Raw Country of Origin"
	ColFirst     = "First Country Parsed"
	ColValidated = "Validated COO"
	ColMethod    = "Match Method"
)

// Output is an assembled result sheet, independent of file format.
type Output struct {
	Mode      Mode
	SheetName string
	Header    []string
	Rows      [][]resolve.Value
	Summary   resolve.Summary
	// Records is set in mapping mode only.
	Records []resolve.Record

	// per-row styling facts, parallel to Rows
	unknown []bool
	methods []resolve.Method
}

// Assemble builds the output sheet. Full mode needs the source table and
// the resolved column; mapping mode only uses res.
func Assemble(mode Mode, t *Table, column string, res *resolve.BatchResult) (*Output, error) {
	out := &Output{Mode: mode, Summary: res.Summary, Rows: [][]resolve.Value{}}

	switch mode {
	case ModeMapping:
		out.SheetName = "COO Validation"
		out.Header = []string{ColRaw, ColFirst, ColValidated, ColMethod}
		out.Records = res.Records
		for _, rec := range res.Records {
			out.add(res, rec, []resolve.Value{rec.Raw})
		}

	case ModeFull:
		if t == nil {
			return nil, fmt.Errorf("full mode needs the source table")
		}
		idx, err := t.ColumnIndex(column)
		if err != nil {
			return nil, err
		}
		byRaw := res.Index()
		out.SheetName = "Full Data + COO Validation"
		out.Header = append(append([]string{}, t.Header...), ColFirst, ColValidated, ColMethod)
		for _, row := range t.Rows {
			rec, ok := byRaw[cellValue(row[idx])]
			if !ok {
				return nil, fmt.Errorf("no resolution for value %q", row[idx])
			}
			prefix := make([]resolve.Value, len(row))
			for i, cell := range row {
				prefix[i] = cellValue(cell)
			}
			out.add(res, rec, prefix)
		}

	default:
		return nil, fmt.Errorf("unknown output mode %q", mode)
	}
	return out, nil
}

func (o *Output) add(res *resolve.BatchResult, rec resolve.Record, prefix []resolve.Value) {
	row := append(prefix, rec.FirstSegment, resolve.Of(rec.Resolved), resolve.Of(rec.Method.String()))
	o.Rows = append(o.Rows, row)
	o.unknown = append(o.unknown, res.IsUnknown(rec))
	o.methods = append(o.methods, rec.Method)
}

// DefaultOutputPath derives <stem>_validated.xlsx (or _validated_full.xlsx)
// next to the input file.
func DefaultOutputPath(input string, mode Mode) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	suffix := "_validated"
	if mode == ModeFull {
		suffix = "_validated_full"
	}
	return filepath.Join(filepath.Dir(input), stem+suffix+".xlsx")
}

// Write saves out in the format implied by path's extension.
func Write(path string, out *Output) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return writeXLSX(path, out)
	case ".csv":
		return writeDelimited(path, ',', out)
	case ".tsv":
		return writeDelimited(path, '\t', out)
	case ".json":
		return writeJSON(path, out)
	default:
		return fmt.Errorf("unsupported output type %q: use .xlsx, .csv, .tsv or .json", ext)
	}
}

func writeDelimited(path string, comma rune, out *Output) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = comma

	if err := w.Write(out.Header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(out.Header))
	for _, row := range out.Rows {
		for i, v := range row {
			line[i] = v.Text // null cells stay empty
		}
		if err := w.Write(line); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return f.Close()
}

type mappingJSON struct {
	Mode    Mode             `json:"mode"`
	Records []resolve.Record `json:"records"`
	Summary resolve.Summary  `json:"summary"`
}

type fullJSON struct {
	Mode    Mode              `json:"mode"`
	Columns []string          `json:"columns"`
	Rows    [][]resolve.Value `json:"rows"`
	Summary resolve.Summary   `json:"summary"`
}

// writeJSON emits records in mapping mode and header plus rows in full mode.
func writeJSON(path string, out *Output) error {
	var doc any = fullJSON{Mode: out.Mode, Columns: out.Header, Rows: out.Rows, Summary: out.Summary}
	if out.Mode == ModeMapping {
		records := out.Records
		if records == nil {
			records = []resolve.Record{}
		}
		doc = mappingJSON{Mode: out.Mode, Records: records, Summary: out.Summary}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
