package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"leadgen/models"
)

// CSVWriter exports leads to a CSV file. The header depends on which nested
// map keys the leads carry, so every Write rewrites the file with all leads
// seen so far. It is safe for concurrent use.
type CSVWriter struct {
	mu    sync.Mutex
	file  *os.File
	leads []*models.CanonicalLead
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the fixed header row. Intermediate directories are created
// automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	c := &CSVWriter{file: f}
	if err := c.render(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

// Write adds leads to the export.
func (c *CSVWriter) Write(leads []*models.CanonicalLead) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.leads = append(c.leads, leads...)
	return c.render()
}

func (c *CSVWriter) render() error {
	if err := c.file.Truncate(0); err != nil {
		return fmt.Errorf("csv: truncate: %w", err)
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("csv: seek: %w", err)
	}
	return WriteCSV(c.file, c.leads)
}

// Close closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

// WriteCSV writes a header and one row per lead to w.
func WriteCSV(w io.Writer, leads []*models.CanonicalLead) error {
	cw := csv.NewWriter(w)
	cols := Columns(leads)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range leads {
		if err := cw.Write(Row(l, cols)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export produced by WriteCSV back into leads.
func ReadCSV(r io.Reader) ([]*models.CanonicalLead, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	cols, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	var leads []*models.CanonicalLead
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read line %d: %w", line, err)
		}
		l, err := parseRow(cols, record)
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		leads = append(leads, l)
	}
	return leads, nil
}
