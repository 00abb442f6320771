package frame

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/nimble/pkg/pool"
)

// MarshalJSON encodes the frame as an array of row objects. Keys follow
// column order.
func (f *Frame) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the frame as a JSON array of row objects followed by a
// newline.
func (f *Frame) WriteJSON(w io.Writer) error {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := f.encodeJSON(buf); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *Frame) encodeJSON(buf *bytes.Buffer) error {
	keys := make([][]byte, len(f.columns))
	for j, c := range f.columns {
		k, err := json.Marshal(c.Name)
		if err != nil {
			return fmt.Errorf("failed to encode column name %q: %w", c.Name, err)
		}
		keys[j] = k
	}

	buf.WriteByte('[')
	for i, row := range f.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, value := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			if s, ok := nonFinite(value); ok {
				buf.WriteByte('"')
				buf.WriteString(s)
				buf.WriteByte('"')
				continue
			}
			v, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("failed to encode row %d column %q: %w", i, f.columns[j].Name, err)
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return nil
}

// nonFinite returns the PostgreSQL spelling of NaN and the infinities, which
// JSON numbers cannot represent.
func nonFinite(value any) (string, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return "", false
	}
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	}
	return "", false
}
