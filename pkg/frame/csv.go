package frame

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// CSVOptions controls CSV decoding and encoding.
type CSVOptions struct {
	// Delimiter separates fields; defaults to ','
	Delimiter rune
	// NullString is the cell text read and written as NULL; defaults to ""
	NullString string
	// DisableInference keeps every column as TypeString
	DisableInference bool
}

// timestampLayouts ends with the date layout so a column mixing dates and
// timestamps widens to timestamp, as InferType does.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	dateLayout,
}

const dateLayout = "2006-01-02"

// ReadCSV decodes a CSV document whose first record is the header. Column
// types are inferred per column in the order int, float, bool, date,
// timestamp, falling back to string. Cells equal to NullString become nil.
func ReadCSV(r io.Reader, opts CSVOptions) (*Frame, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv input is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var cells [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		cells = append(cells, record)
	}

	columns := make([]Column, len(header))
	for j, name := range header {
		t := TypeString
		if !opts.DisableInference {
			t = inferCSVColumn(cells, j, opts.NullString)
		}
		columns[j] = Column{Name: name, Type: t}
	}

	f := New(columns...)
	f.rows = make([][]any, 0, len(cells))
	for i, record := range cells {
		row := make([]any, len(columns))
		for j, cell := range record {
			value, err := parseCell(cell, columns[j].Type, opts.NullString)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, columns[j].Name, err)
			}
			row[j] = value
		}
		f.rows = append(f.rows, row)
	}
	return f, nil
}

func inferCSVColumn(cells [][]string, j int, null string) Type {
	candidates := []Type{TypeInt, TypeFloat, TypeBool, TypeDate, TypeTimestamp}
	seen := false
	for _, record := range cells {
		cell := record[j]
		if cell == null {
			continue
		}
		seen = true
		kept := candidates[:0]
		for _, t := range candidates {
			if _, err := parseCell(cell, t, null); err == nil {
				kept = append(kept, t)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			return TypeString
		}
	}
	if !seen {
		return TypeString
	}
	return candidates[0]
}

func parseCell(cell string, t Type, null string) (any, error) {
	if cell == null {
		return nil, nil
	}
	switch t {
	case TypeInt:
		return strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	case TypeFloat:
		return strconv.ParseFloat(strings.TrimSpace(cell), 64)
	case TypeBool:
		return strconv.ParseBool(strings.TrimSpace(cell))
	case TypeDate:
		return time.Parse(dateLayout, strings.TrimSpace(cell))
	case TypeTimestamp:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(cell)); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("%q is not a timestamp", cell)
	default:
		return cell, nil
	}
}

// WriteCSV encodes the frame with a header record.
func (f *Frame) WriteCSV(w io.Writer, opts CSVOptions) error {
	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	if err := writer.Write(f.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(f.columns))
	for _, row := range f.rows {
		for j, value := range row {
			s, err := formatCell(value, f.columns[j].Type, opts.NullString)
			if err != nil {
				return err
			}
			record[j] = s
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(value any, t Type, null string) (string, error) {
	switch v := value.(type) {
	case nil:
		return null, nil
	case string:
		return v, nil
	case time.Time:
		if t == TypeDate {
			return v.Format(dateLayout), nil
		}
		return v.Format(time.RFC3339Nano), nil
	case []byte:
		return `\x` + hex.EncodeToString(v), nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode json cell: %w", err)
		}
		return string(b), nil
	case float64:
		if s, ok := nonFinite(v); ok {
			return s, nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}
