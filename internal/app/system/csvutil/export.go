// Package csvutil renders export rows as CSV the way spreadsheet users in
// the console expect them: French dates, Oui/Non booleans and a UTF-8 BOM.
package csvutil

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DateLayout is the fr-FR date-time rendering used in every export.
const DateLayout = "02/01/2006 15:04:05"

// utf8BOM makes Excel detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Field is one named cell.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered row.
type Record []Field

// Encode writes records as CSV. The header comes from the first record's
// keys; later records are written positionally. An empty slice writes nothing.
func Encode(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)

	header := make([]string, len(records[0]))
	for i, f := range records[0] {
		header[i] = f.Key
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i := range row {
			row[i] = ""
			if i < len(rec) {
				row[i] = formatValue(rec[i].Value)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatValue renders one cell.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Oui"
		}
		return "Non"
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(DateLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(DateLayout)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	case map[string]any, []any, []string:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// Format selects the Content-Type of an attachment.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ParseFormat maps the ?format= query value; anything but "excel" is CSV.
func ParseFormat(s string) Format {
	if s == string(FormatExcel) {
		return FormatExcel
	}
	return FormatCSV
}

// ContentType returns the response Content-Type for f.
func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.ms-excel"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns "<name>_<YYYY-MM-DD>.csv".
func Filename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", name, now.Format("2006-01-02"))
}

// WriteAttachment encodes records into a buffer and, on success, sends them
// as a download with a BOM prefix. Encoding errors are returned before any
// byte is written so the caller can still answer with an error status.
func WriteAttachment(w http.ResponseWriter, name string, format Format, now time.Time, records []Record) error {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	if err := Encode(&buf, records); err != nil {
		return err
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename(name, now)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
