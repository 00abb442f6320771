// Package frame provides Frame, an in-memory table of rows and named, typed
// columns. Query results are materialized into a Frame and StoreFrame writes
// one back to the database.
//
// A Frame is not safe for concurrent mutation. Once built it can be read
// from multiple goroutines.
package frame

import (
	"fmt"
)

// Column describes a single frame column.
type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Frame holds rows of values aligned with its columns. Row values use plain
// Go types: int64, float64, bool, string, time.Time, []byte, nil for NULL,
// and decoded JSON (map[string]any, []any) for json columns.
type Frame struct {
	columns []Column
	rows    [][]any
}

// New creates an empty frame with the given columns.
func New(columns ...Column) *Frame {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Frame{columns: cols}
}

// FromRows creates a frame from columns and rows, inferring the type of any
// column declared as TypeUnknown from its values.
func FromRows(columns []Column, rows [][]any) (*Frame, error) {
	f := New(columns...)
	for i, row := range rows {
		if err := f.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	f.InferUnknownTypes()
	return f, nil
}

// AppendRow appends a row. The number of values must match the number of
// columns.
func (f *Frame) AppendRow(values ...any) error {
	if len(values) != len(f.columns) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(values), len(f.columns))
	}
	row := make([]any, len(values))
	copy(row, values)
	f.rows = append(f.rows, row)
	return nil
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// NumColumns returns the number of columns.
func (f *Frame) NumColumns() int {
	return len(f.columns)
}

// Columns returns a copy of the column descriptions.
func (f *Frame) Columns() []Column {
	cols := make([]Column, len(f.columns))
	copy(cols, f.columns)
	return cols
}

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row returns the values of row i. The slice is shared with the frame.
func (f *Frame) Row(i int) []any {
	return f.rows[i]
}

// Value returns the value at row i, column j.
func (f *Frame) Value(i, j int) any {
	return f.rows[i][j]
}

// Column returns every value of the named column.
func (f *Frame) Column(name string) ([]any, bool) {
	j := f.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	values := make([]any, len(f.rows))
	for i, row := range f.rows {
		values[i] = row[j]
	}
	return values, true
}

// Rows returns all rows. The slices are shared with the frame.
func (f *Frame) Rows() [][]any {
	return f.rows
}

// Records returns the rows as maps keyed by column name.
func (f *Frame) Records() []map[string]any {
	records := make([]map[string]any, len(f.rows))
	for i, row := range f.rows {
		record := make(map[string]any, len(f.columns))
		for j, c := range f.columns {
			record[c.Name] = row[j]
		}
		records[i] = record
	}
	return records
}

// InferUnknownTypes replaces TypeUnknown column types with the type inferred
// from the column values.
func (f *Frame) InferUnknownTypes() {
	for j, c := range f.columns {
		if c.Type != TypeUnknown && c.Type != "" {
			continue
		}
		values := make([]any, len(f.rows))
		for i, row := range f.rows {
			values[i] = row[j]
		}
		f.columns[j].Type = InferType(values)
	}
}
