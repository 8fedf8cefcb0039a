package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheet string
}

// NewXLSXExporter builds an exporter writing to the named sheet.
func NewXLSXExporter(sheet string) *XLSXExporter {
	if sheet == "" {
		sheet = defaultSheet
	}
	return &XLSXExporter{sheet: sheet}
}

// Render writes a bold header row followed by one row per record.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if e.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, e.sheet); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range data.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(e.sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write xlsx header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err := f.SetCellStyle(e.sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style xlsx header: %w", err)
	}

	for i, row := range data.Rows {
		for col, header := range data.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(e.sheet, cell, row[header]); err != nil {
				return nil, fmt.Errorf("write xlsx row: %w", err)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
