package enrichment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TableHeader is the exported column order.
var TableHeader = []string{
	"Category", "Term", "Count", "%", "Pvalue", "Genes", "List Total",
	"Pop Hits", "Pop Total", "Fold Enrichment", "Bonferroni", "Benjamini", "FDR",
}

// Row renders a record in TableHeader order.
func (r Record) Row() []string {
	return []string{
		r.Category,
		r.Term,
		strconv.Itoa(r.ListHits),
		r.Percent,
		formatFloat(r.PValue),
		r.GeneIDs,
		strconv.Itoa(r.ListTotal),
		strconv.Itoa(r.PopHits),
		strconv.Itoa(r.PopTotal),
		formatFloat(r.FoldEnrichment),
		formatFloat(r.Bonferroni),
		formatFloat(r.Benjamini),
		formatFloat(r.FDR),
	}
}

// WriteTable writes the header and one line per record.
func WriteTable(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(TableHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(rec.Row()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// SaveTable writes the table to path, creating parent directories.
func SaveTable(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := WriteTable(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTable parses a table written by WriteTable.
func ReadTable(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(TableHeader)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty table")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		if cleanCell(col) != TableHeader[i] {
			return nil, fmt.Errorf("unexpected column %d: %q", i+1, col)
		}
	}
	var out []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordFromRow(row []string) (Record, error) {
	var (
		rec  Record
		errs []error
	)
	atoi := func(col int) int {
		v, err := strconv.Atoi(strings.TrimSpace(row[col]))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", TableHeader[col], err))
		}
		return v
	}
	atof := func(col int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", TableHeader[col], err))
		}
		return v
	}
	rec.Category = row[0]
	rec.Term = row[1]
	rec.ListHits = atoi(2)
	rec.Percent = row[3]
	rec.PValue = atof(4)
	rec.GeneIDs = row[5]
	rec.ListTotal = atoi(6)
	rec.PopHits = atoi(7)
	rec.PopTotal = atoi(8)
	rec.FoldEnrichment = atof(9)
	rec.Bonferroni = atof(10)
	rec.Benjamini = atof(11)
	rec.FDR = atof(12)
	return rec, errors.Join(errs...)
}
