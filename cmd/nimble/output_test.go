package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/nimble/pkg/compression"
	"github.com/ajitpratap0/nimble/pkg/frame"
	"github.com/ajitpratap0/nimble/pkg/nimbleerrors"
	"github.com/ajitpratap0/nimble/pkg/testutil"
)

func sampleFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New(
		frame.Column{Name: "id", Type: frame.TypeInt},
		frame.Column{Name: "name", Type: frame.TypeString},
	)
	require.NoError(t, f.AppendRow(int64(1), "ann"))
	require.NoError(t, f.AppendRow(int64(2), nil))
	return f
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, sampleFrame(t), formatTable))

	assert.Equal(t, "id   name\n"+
		"---  ----\n"+
		"1    ann\n"+
		"2    NULL\n"+
		"(2 rows)\n", buf.String())
}

func TestWriteTable_SingleRow(t *testing.T) {
	f := frame.New(frame.Column{Name: "?column?", Type: frame.TypeInt})
	require.NoError(t, f.AppendRow(int64(1)))

	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, f, "TABLE"))
	assert.Contains(t, buf.String(), "(1 row)\n")
}

func TestWriteFrame_CSVAndJSON(t *testing.T) {
	var csvOut bytes.Buffer
	require.NoError(t, writeFrame(&csvOut, sampleFrame(t), formatCSV))
	assert.Equal(t, "id,name\n1,ann\n2,\n", csvOut.String())

	var jsonOut bytes.Buffer
	require.NoError(t, writeFrame(&jsonOut, sampleFrame(t), formatJSON))
	assert.JSONEq(t, `[{"id":1,"name":"ann"},{"id":2,"name":null}]`, jsonOut.String())
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("Json")
	require.NoError(t, err)
	assert.Equal(t, formatJSON, f)

	_, err = parseFormat("xml")
	require.Error(t, err)
	assert.True(t, nimbleerrors.IsType(err, nimbleerrors.ErrorTypeValidation))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, `\x0102`, formatValue([]byte{1, 2}))
	assert.Equal(t, "a b", formatValue("a\tb"))
	assert.Equal(t, "1.5", formatValue(1.5))
}

func TestFrameFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.csv", "out.csv.gz", "out.csv.zst", "out.csv.lz4", "out.csv.sz", "out.csv.s2"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, writeFrameFile(path, sampleFrame(t), formatCSV, ""))

			f, err := readFrameFile(path, frame.CSVOptions{})
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name"}, f.ColumnNames())
			assert.Equal(t, 2, f.NumRows())
			assert.Equal(t, int64(1), f.Value(0, 0))
			assert.Equal(t, "ann", f.Value(0, 1))
			assert.Nil(t, f.Value(1, 1))
		})
	}
}

func TestWriteFrameFile_ExplicitCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, writeFrameFile(path, sampleFrame(t), formatCSV, compression.Zstd))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	r, err := compression.NewReader(file, compression.Zstd)
	require.NoError(t, err)
	defer r.Close()

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,ann\n2,\n", string(content))
}

func TestReadFrameFile_Errors(t *testing.T) {
	_, err := readFrameFile(filepath.Join(t.TempDir(), "missing.csv"), frame.CSVOptions{})
	require.Error(t, err)
	assert.True(t, nimbleerrors.IsType(err, nimbleerrors.ErrorTypeFile))

	path := testutil.WriteFile(t, "bad.csv.gz", []byte("not gzip"))
	_, err = readFrameFile(path, frame.CSVOptions{})
	require.Error(t, err)
}
