// Package csvio loads delimited text and spreadsheet files into the
// in-memory table abstraction.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"csvdoctor/domain/table"
	"csvdoctor/internal/errors"
)

// candidateDelimiters are scored against the first line; ties favor the
// comma because it is listed first.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// missingTokens are cell spellings treated as null on load.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// Metadata describes a loaded file.
type Metadata struct {
	FileName    string            `json:"file_name"`
	FileSize    int64             `json:"file_size"`
	Rows        int               `json:"rows"`
	Columns     int               `json:"columns"`
	ColumnNames []string          `json:"column_names"`
	Dtypes      map[string]string `json:"dtypes"`
	MemoryUsage int               `json:"memory_usage"`
}

// StructureValidation reports structural problems found after load.
type StructureValidation struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

// Loader reads a CSV or XLSX file from disk.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given path. The extension selects the
// format: .xlsx goes through excelize, everything else is parsed as
// delimited text.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the file into a table. Any parse failure is a load failure;
// there is no partial load.
func (l *Loader) Load() (*table.Table, *Metadata, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, nil, errors.LoadFailed(fmt.Sprintf("file not found: %s", l.path), err)
	}

	var tbl *table.Table
	if strings.EqualFold(filepath.Ext(l.path), ".xlsx") {
		tbl, err = l.loadXLSX()
	} else {
		f, openErr := os.Open(l.path)
		if openErr != nil {
			return nil, nil, errors.LoadFailed("failed to open file", openErr)
		}
		defer f.Close()
		tbl, err = LoadCSV(f)
	}
	if err != nil {
		return nil, nil, err
	}

	meta := buildMetadata(tbl, filepath.Base(l.path), info.Size())
	return tbl, meta, nil
}

func (l *Loader) loadXLSX() (*table.Table, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, errors.LoadFailed("failed to open spreadsheet", err)
	}
	return tableFromWorkbook(f)
}

// LoadXLSX parses a spreadsheet stream, reading the first sheet.
func LoadXLSX(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.LoadFailed("failed to open spreadsheet", err)
	}
	return tableFromWorkbook(f)
}

func tableFromWorkbook(f *excelize.File) (*table.Table, error) {
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.LoadFailed("spreadsheet has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.LoadFailed(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, errors.LoadFailed("spreadsheet is empty", nil)
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// excelize trims trailing empty cells; pad back to header width.
		padded := make([]string, len(header))
		copy(padded, row)
		records = append(records, padded)
	}
	return buildTable(header, records)
}

// LoadCSV parses delimited text from a reader, auto-detecting the
// delimiter from the first line.
func LoadCSV(r io.Reader) (*table.Table, error) {
	buffered := bufio.NewReader(r)
	firstLine, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.LoadFailed("failed to read input", err)
	}
	if len(firstLine) == 0 {
		return nil, errors.LoadFailed("CSV is empty", nil)
	}
	delimiter := DetectDelimiter(string(firstLine))

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.LoadFailed("failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, errors.LoadFailed("CSV is empty", nil)
	}
	return buildTable(records[0], records[1:])
}

// LoadCSVString parses delimited text from a string.
func LoadCSVString(data string) (*table.Table, error) {
	return LoadCSV(strings.NewReader(data))
}

// DetectDelimiter picks whichever candidate delimiter appears most often in
// the first line. Ties favor the comma.
func DetectDelimiter(line string) rune {
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	detected := ','
	maxCount := 0
	for _, d := range candidateDelimiters {
		count := strings.Count(line, string(d))
		if count > maxCount {
			maxCount = count
			detected = d
		}
	}
	return detected
}

// buildTable types each column from its raw cells: a column whose non-null
// cells all parse as numbers is stored numeric, all-boolean columns are
// stored boolean, everything else stays string.
func buildTable(header []string, records [][]string) (*table.Table, error) {
	names := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = name
	}

	columns := make([]table.Column, len(names))
	for c, name := range names {
		raw := make([]string, len(records))
		for r, record := range records {
			if c >= len(record) {
				return nil, errors.LoadFailed(fmt.Sprintf("row %d has %d fields, expected %d", r+1, len(record), len(names)), nil)
			}
			raw[r] = record[c]
		}
		columns[c] = table.Column{Name: name, Values: typeCells(raw)}
	}

	tbl, err := table.New(columns)
	if err != nil {
		return nil, errors.LoadFailed("invalid table structure", err)
	}
	return tbl, nil
}

func typeCells(raw []string) []table.Value {
	allNumeric := true
	allBool := true
	nonMissing := 0
	for _, cell := range raw {
		s := strings.TrimSpace(cell)
		if missingTokens[strings.ToLower(s)] {
			continue
		}
		nonMissing++
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allNumeric = false
		}
		if !isBoolToken(s) {
			allBool = false
		}
	}

	values := make([]table.Value, len(raw))
	for i, cell := range raw {
		s := strings.TrimSpace(cell)
		if missingTokens[strings.ToLower(s)] {
			values[i] = table.MissingValue()
			continue
		}
		switch {
		case nonMissing > 0 && allNumeric:
			f, _ := strconv.ParseFloat(s, 64)
			values[i] = table.NewNumberValue(f)
		case nonMissing > 0 && allBool:
			values[i] = table.NewBoolValue(strings.EqualFold(s, "true"))
		default:
			values[i] = table.NewStringValue(cell)
		}
	}
	return values
}

func isBoolToken(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func buildMetadata(tbl *table.Table, name string, size int64) *Metadata {
	dtypes := make(map[string]string, tbl.NumCols())
	for i := range tbl.Columns {
		dtypes[tbl.Columns[i].Name] = string(tbl.Columns[i].Storage())
	}
	return &Metadata{
		FileName:    name,
		FileSize:    size,
		Rows:        tbl.NumRows(),
		Columns:     tbl.NumCols(),
		ColumnNames: tbl.ColumnNames(),
		Dtypes:      dtypes,
		MemoryUsage: tbl.MemoryUsage(),
	}
}

// ValidateStructure flags structural issues: an empty table, fully-null
// columns and unnamed columns.
func ValidateStructure(tbl *table.Table) StructureValidation {
	validation := StructureValidation{IsValid: true, Issues: []string{}}

	if tbl.NumRows() == 0 {
		validation.Issues = append(validation.Issues, "CSV is empty")
	}

	var emptyCols, unnamedCols []string
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		if tbl.NumRows() > 0 && col.NullCount() == tbl.NumRows() {
			emptyCols = append(emptyCols, col.Name)
		}
		if strings.HasPrefix(col.Name, "Unnamed") {
			unnamedCols = append(unnamedCols, col.Name)
		}
	}
	if len(emptyCols) > 0 {
		validation.Issues = append(validation.Issues, fmt.Sprintf("Empty columns found: %v", emptyCols))
	}
	if len(unnamedCols) > 0 {
		validation.Issues = append(validation.Issues, fmt.Sprintf("Unnamed columns found: %v", unnamedCols))
	}
	return validation
}

// Sample returns the first n rows as generic records, missing cells as
// nil.
func Sample(tbl *table.Table, n int) []map[string]interface{} {
	if n > tbl.NumRows() {
		n = tbl.NumRows()
	}
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		record := make(map[string]interface{}, tbl.NumCols())
		for c := range tbl.Columns {
			record[tbl.Columns[c].Name] = cellValue(tbl.Columns[c].Values[i])
		}
		out = append(out, record)
	}
	return out
}

func cellValue(v table.Value) interface{} {
	switch v.Kind {
	case table.ValueKindNumber:
		return v.Num
	case table.ValueKindBool:
		return v.Bool
	case table.ValueKindString:
		return v.Str
	case table.ValueKindTime:
		return v.String()
	}
	return nil
}
