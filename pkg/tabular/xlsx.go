package tabular

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/coo-registry/pkg/resolve"
)

// Fill colours for the styled workbook.
const (
	colorGreen      = "C6EFCE"
	colorAmber      = "FFEB9C"
	colorRed        = "FFC7CE"
	colorBlue       = "DDEBF7"
	colorGrey       = "EFEFEF"
	colorHeaderDark = "1F4E79"
	colorHeaderMid  = "2E75B6"

	maxColumnWidth = 60
)

var methodColors = map[resolve.Method]string{
	resolve.MethodExact:      colorGreen,
	resolve.MethodAlias:      colorBlue,
	resolve.MethodNormalised: colorBlue,
	resolve.MethodRegional:   colorAmber,
	resolve.MethodNoMatch:    colorRed,
	resolve.MethodNull:       colorGrey,
}

// validationColumns get the dark header; source columns the mid-blue one.
var validationColumns = map[string]bool{
	ColRaw: true, ColFirst: true, ColValidated: true, ColMethod: true,
}

// styleSet caches style IDs by fill colour.
type styleSet struct {
	f     *excelize.File
	fills map[string]int
}

func (s *styleSet) fill(color string) (int, error) {
	if id, ok := s.fills[color]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("create fill style: %w", err)
	}
	s.fills[color] = id
	return id, nil
}

func (s *styleSet) header(color string) (int, error) {
	return s.f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

func writeXLSX(path string, out *Output) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := out.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	styles := &styleSet{f: f, fills: make(map[string]int)}
	darkID, err := styles.header(colorHeaderDark)
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	midID, err := styles.header(colorHeaderMid)
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	widths := make([]int, len(out.Header))
	validatedCol, methodCol := -1, -1
	for c, h := range out.Header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		style := midID
		if validationColumns[h] {
			style = darkID
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		widths[c] = utf8.RuneCountInString(h)
		switch h {
		case ColValidated:
			validatedCol = c
		case ColMethod:
			methodCol = c
		}
	}

	for r, row := range out.Rows {
		for c, v := range row {
			if !v.Valid {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheet, cell, v.Text); err != nil {
				return fmt.Errorf("write row %d: %w", r+2, err)
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(v.Text))
		}

		validatedColor := colorGreen
		if out.unknown[r] {
			validatedColor = colorAmber
		}
		if err := styleCell(f, styles, sheet, validatedCol, r+2, validatedColor); err != nil {
			return err
		}
		if err := styleCell(f, styles, sheet, methodCol, r+2, methodColors[out.methods[r]]); err != nil {
			return err
		}
	}

	for c, w := range widths {
		name, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, name, name, float64(min(w+4, maxColumnWidth))); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func styleCell(f *excelize.File, styles *styleSet, sheet string, col, row int, color string) error {
	if col < 0 || color == "" {
		return nil
	}
	id, err := styles.fill(color)
	if err != nil {
		return err
	}
	cell, _ := excelize.CoordinatesToCellName(col+1, row)
	if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
		return fmt.Errorf("style cell %s: %w", cell, err)
	}
	return nil
}
