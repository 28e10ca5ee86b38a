package enrichment

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// InputFileMetadata provides header information and the suggested gene column.
type InputFileMetadata struct {
	Columns   []string
	Samples   []string
	Suggested string
	Encoding  string
}

const sampleScanRows = 50

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ParseGeneListFile reads identifiers from a CSV, TSV or plain text file.
// column selects the CSV/TSV column by header name or 1-based "#N"; empty
// means auto-detect.
func ParseGeneListFile(path, column string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return ParseGeneList(data, filepath.Base(path), column)
}

// ParseGeneList is ParseGeneListFile for already loaded content, such as an upload.
func ParseGeneList(data []byte, name, column string) ([]string, error) {
	decoded, _, err := decodeInput(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	comma, delimited := delimiterFor(name)
	if !delimited {
		return parsePlainTextList(decoded)
	}
	rows, err := readRows(decoded, comma)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}
	header := cleanRow(rows[0])
	col, err := resolveGeneColumn(header, column)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if v := cleanCell(row[col]); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// ReadInputFileMetadata returns the header and the suggested gene column of a
// CSV/TSV file. Plain text files yield empty metadata.
func ReadInputFileMetadata(path string) (InputFileMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InputFileMetadata{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return InspectInput(data, filepath.Base(path))
}

// InspectInput is ReadInputFileMetadata for loaded content.
func InspectInput(data []byte, name string) (InputFileMetadata, error) {
	meta := InputFileMetadata{}
	decoded, enc, err := decodeInput(data)
	if err != nil {
		return meta, fmt.Errorf("decode %s: %w", name, err)
	}
	meta.Encoding = enc
	comma, delimited := delimiterFor(name)
	if !delimited {
		return meta, nil
	}
	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return meta, nil
		}
		return meta, fmt.Errorf("read %s: %w", name, err)
	}
	meta.Columns = cleanRow(row)
	meta.Samples = columnSamples(reader, len(meta.Columns))
	if idx := DetectGeneColumn(meta.Columns); idx >= 0 {
		meta.Suggested = headerNameForIndex(meta.Columns, idx)
	} else if len(meta.Columns) > 0 {
		meta.Suggested = headerNameForIndex(meta.Columns, 0)
	}
	return meta, nil
}

// columnSamples returns the first non-empty value of each column within the
// first sampleScanRows data rows.
func columnSamples(reader *csv.Reader, width int) []string {
	samples := make([]string, width)
	missing := width
	for i := 0; i < sampleScanRows && missing > 0; i++ {
		row, err := reader.Read()
		if err != nil {
			break
		}
		for col := 0; col < width && col < len(row); col++ {
			if samples[col] != "" {
				continue
			}
			if v := cleanCell(row[col]); v != "" {
				samples[col] = v
				missing--
			}
		}
	}
	return samples
}

func delimiterFor(name string) (rune, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ',', true
	case ".tsv":
		return '\t', true
	default:
		return 0, false
	}
}

// decodeInput converts BOM-marked UTF-8/UTF-16 and Latin-1 input to UTF-8.
func decodeInput(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, "", err
		}
		if bytes.HasPrefix(data, bomUTF16LE) {
			return out, "utf-16le", nil
		}
		return out, "utf-16be", nil
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", err
		}
		return out, "latin-1", nil
	}
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func parsePlainTextList(data []byte) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		tokens := strings.FieldsFunc(scanner.Text(), func(r rune) bool {
			return r == ',' || r == ';' || r == '\t'
		})
		for _, token := range tokens {
			if v := cleanCell(token); v != "" {
				out = append(out, v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan text: %w", err)
	}
	return out, nil
}

func resolveGeneColumn(header []string, explicit string) (int, error) {
	trimmed := strings.TrimSpace(explicit)
	if trimmed != "" {
		for i, col := range header {
			if strings.EqualFold(col, trimmed) {
				return i, nil
			}
		}
		if strings.HasPrefix(trimmed, "#") {
			idx, err := parseColumnIndex(trimmed)
			if err != nil {
				return -1, err
			}
			if idx >= len(header) {
				return -1, fmt.Errorf("column index %s is out of range", trimmed)
			}
			return idx, nil
		}
		return -1, fmt.Errorf("column %q not found", explicit)
	}
	if idx := DetectGeneColumn(header); idx >= 0 {
		return idx, nil
	}
	if len(header) == 0 {
		return -1, errors.New("no usable gene column found")
	}
	return 0, nil
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}

func headerNameForIndex(header []string, idx int) string {
	if idx < len(header) && header[idx] != "" {
		return header[idx]
	}
	return fmt.Sprintf("#%d", idx+1)
}

func cleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = cleanCell(cell)
	}
	return out
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
