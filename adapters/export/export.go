// Package export serializes tables to downloadable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"csvdoctor/domain/table"
	"csvdoctor/internal/errors"
)

// Format names a supported export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTSV:
		return FormatTSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", errors.UnsupportedFormat(s)
}

// ContentType returns the MIME type served for a format.
func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatTSV:
		return "text/tab-separated-values"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html"
	}
	return "application/octet-stream"
}

// FileName builds a download name from a base name, replacing its
// extension with the format's.
func FileName(base string, f Format) string {
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return fmt.Sprintf("%s.%s", base, f)
}

// Write serializes the table in the given format.
func Write(w io.Writer, tbl *table.Table, f Format) error {
	switch f {
	case FormatCSV:
		return writeDelimited(w, tbl, ',')
	case FormatTSV:
		return writeDelimited(w, tbl, '\t')
	case FormatJSON:
		return writeJSON(w, tbl)
	case FormatXLSX:
		return writeXLSX(w, tbl)
	case FormatHTML:
		return writeHTML(w, tbl)
	}
	return errors.UnsupportedFormat(string(f))
}

func writeDelimited(w io.Writer, tbl *table.Table, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(tbl.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, tbl.NumCols())
	for r := 0; r < tbl.NumRows(); r++ {
		for c := range tbl.Columns {
			v := tbl.Columns[c].Values[r]
			if v.IsMissing() {
				record[c] = ""
			} else {
				record[c] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, tbl *table.Table) error {
	records := make([]map[string]interface{}, 0, tbl.NumRows())
	for r := 0; r < tbl.NumRows(); r++ {
		record := make(map[string]interface{}, tbl.NumCols())
		for c := range tbl.Columns {
			record[tbl.Columns[c].Name] = jsonCell(tbl.Columns[c].Values[r])
		}
		records = append(records, record)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func jsonCell(v table.Value) interface{} {
	switch v.Kind {
	case table.ValueKindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil
		}
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

func writeXLSX(w io.Writer, tbl *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, tbl.NumCols())
	for c, name := range tbl.ColumnNames() {
		header[c] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := make([]interface{}, tbl.NumCols())
	for r := 0; r < tbl.NumRows(); r++ {
		for c := range tbl.Columns {
			row[c] = xlsxCell(tbl.Columns[c].Values[r])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func xlsxCell(v table.Value) interface{} {
	switch v.Kind {
	case table.ValueKindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil
		}
		return v.Num
	case table.ValueKindBool:
		return v.Bool
	case table.ValueKindString:
		return v.Str
	case table.ValueKindTime:
		return v.Time
	}
	return nil
}

func writeHTML(w io.Writer, tbl *table.Table) error {
	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, name := range tbl.ColumnNames() {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(name))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for r := 0; r < tbl.NumRows(); r++ {
		b.WriteString("<tr>")
		for c := range tbl.Columns {
			v := tbl.Columns[c].Values[r]
			if v.IsMissing() {
				b.WriteString("<td></td>")
			} else {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(v.String()))
			}
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	_, err := io.WriteString(w, b.String())
	return err
}
