package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ajitpratap0/nimble/pkg/compression"
	"github.com/ajitpratap0/nimble/pkg/frame"
	"github.com/ajitpratap0/nimble/pkg/nimbleerrors"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func parseFormat(format string) (string, error) {
	switch f := strings.ToLower(format); f {
	case formatTable, formatCSV, formatJSON:
		return f, nil
	default:
		return "", nimbleerrors.Newf(nimbleerrors.ErrorTypeValidation,
			"unknown format %q (want table, csv or json)", format)
	}
}

func writeFrame(w io.Writer, f *frame.Frame, format string) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case formatCSV:
		err = f.WriteCSV(w, frame.CSVOptions{})
	case formatJSON:
		err = f.WriteJSON(w)
	default:
		err = writeTable(w, f)
	}
	if err != nil {
		return nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeFile, "failed to write result")
	}
	return nil
}

// writeFrameFile writes f to path compressed with alg. An empty alg picks the
// algorithm from the path suffix.
func writeFrameFile(path string, f *frame.Frame, format string, alg compression.Algorithm) (err error) {
	if alg == "" {
		alg = compression.FromPath(path)
	}

	file, err := os.Create(path)
	if err != nil {
		return nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = nimbleerrors.Wrap(cerr, nimbleerrors.ErrorTypeFile, "failed to close output file").
				WithDetail("path", path)
		}
	}()

	w, err := compression.NewWriter(file, alg)
	if err != nil {
		return nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeFile, "failed to open compressor").
			WithDetail("path", path)
	}
	if err := writeFrame(w, f, format); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeFile, "failed to flush output file").
			WithDetail("path", path)
	}
	return nil
}

func openReader(r io.Reader, path string) (io.ReadCloser, error) {
	rc, err := compression.NewReader(r, compression.FromPath(path))
	if err != nil {
		return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeFile, "failed to open decompressor").
			WithDetail("path", path)
	}
	return rc, nil
}

// writeTable prints f as aligned columns followed by a row count, the way
// psql does.
func writeTable(w io.Writer, f *frame.Frame) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	names := f.ColumnNames()
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	rules := make([]string, len(names))
	for i, name := range names {
		rules[i] = strings.Repeat("-", max(len(name), 3))
	}
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	cells := make([]string, len(names))
	for _, row := range f.Rows() {
		for j, v := range row {
			cells[j] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	noun := "rows"
	if f.NumRows() == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(w, "(%d %s)\n", f.NumRows(), noun)
	return err
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("\\x%x", x)
	case string:
		return strings.NewReplacer("\t", " ", "\n", " ").Replace(x)
	default:
		return fmt.Sprint(x)
	}
}
