package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"

	"leadgen/models"
)

// XLSXSheet is the worksheet leads are written to.
const XLSXSheet = "Leads"

// XLSXWriter exports leads to an Excel workbook with the same columns as the
// CSV export. Like CSVWriter, every Write re-renders the whole workbook.
type XLSXWriter struct {
	mu    sync.Mutex
	path  string
	leads []*models.CanonicalLead
}

// NewXLSXWriter creates an empty workbook at path.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	x := &XLSXWriter{path: path}
	if err := x.render(); err != nil {
		return nil, err
	}
	return x, nil
}

// Write adds leads to the workbook.
func (x *XLSXWriter) Write(leads []*models.CanonicalLead) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.leads = append(x.leads, leads...)
	return x.render()
}

func (x *XLSXWriter) render() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	cols := Columns(x.leads)
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return fmt.Errorf("xlsx: header range: %w", err)
	}
	if err := f.SetCellStyle(XLSXSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, l := range x.leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
		row := typedRow(l, cols)
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

// typedRow keeps numbers and booleans native so spreadsheets can sort them.
func typedRow(l *models.CanonicalLead, cols []string) []interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		switch c {
		case "website_present":
			row[i] = l.WebsitePresent
		case "score":
			row[i] = l.Score
		case "analysis.confidence":
			row[i] = l.Analysis.Confidence
		default:
			v := cellValue(l, c)
			if prefix, _ := splitDotted(c); prefix == "metrics." && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					row[i] = f
					continue
				}
			}
			row[i] = v
		}
	}
	return row
}

// Close is a no-op; every Write already saved the workbook.
func (x *XLSXWriter) Close() error {
	return nil
}
