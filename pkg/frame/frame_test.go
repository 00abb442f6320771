package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_AppendRow(t *testing.T) {
	f := New(Column{Name: "id", Type: TypeInt}, Column{Name: "name", Type: TypeString})

	require.NoError(t, f.AppendRow(int64(1), "alice"))
	require.NoError(t, f.AppendRow(int64(2), nil))
	assert.Error(t, f.AppendRow(int64(3)))

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 2, f.NumColumns())
	assert.Equal(t, []string{"id", "name"}, f.ColumnNames())
	assert.Equal(t, "alice", f.Value(0, 1))
	assert.Nil(t, f.Value(1, 1))
}

func TestFrame_AppendRowCopiesValues(t *testing.T) {
	f := New(Column{Name: "v", Type: TypeInt})
	values := []any{int64(1)}
	require.NoError(t, f.AppendRow(values...))

	values[0] = int64(99)
	assert.Equal(t, int64(1), f.Value(0, 0))
}

func TestFrame_ColumnLookup(t *testing.T) {
	f := New(Column{Name: "a", Type: TypeInt}, Column{Name: "b", Type: TypeString})
	require.NoError(t, f.AppendRow(int64(1), "x"))
	require.NoError(t, f.AppendRow(int64(2), "y"))

	assert.Equal(t, 1, f.ColumnIndex("b"))
	assert.Equal(t, -1, f.ColumnIndex("missing"))

	values, ok := f.Column("b")
	require.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, values)

	_, ok = f.Column("missing")
	assert.False(t, ok)
}

func TestFrame_Records(t *testing.T) {
	f := New(Column{Name: "id", Type: TypeInt}, Column{Name: "ok", Type: TypeBool})
	require.NoError(t, f.AppendRow(int64(7), true))

	assert.Equal(t, []map[string]any{{"id": int64(7), "ok": true}}, f.Records())
}

func TestFromRows_InfersUnknownTypes(t *testing.T) {
	f, err := FromRows(
		[]Column{{Name: "n"}, {Name: "mixed", Type: TypeUnknown}, {Name: "kept", Type: TypeString}},
		[][]any{
			{1, 1, int64(5)},
			{2, 2.5, int64(6)},
		},
	)
	require.NoError(t, err)

	cols := f.Columns()
	assert.Equal(t, TypeInt, cols[0].Type)
	assert.Equal(t, TypeFloat, cols[1].Type)
	assert.Equal(t, TypeString, cols[2].Type)
}

func TestFromRows_ArityMismatch(t *testing.T) {
	_, err := FromRows([]Column{{Name: "a"}}, [][]any{{1, 2}})
	assert.Error(t, err)
}

func TestInferType(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		values []any
		want   Type
	}{
		{"empty", nil, TypeUnknown},
		{"all null", []any{nil, nil}, TypeUnknown},
		{"ints", []any{1, int32(2), nil, int64(3)}, TypeInt},
		{"ints and floats", []any{1, 2.5}, TypeFloat},
		{"bools", []any{true, false}, TypeBool},
		{"timestamps", []any{now, nil}, TypeTimestamp},
		{"bytes", []any{[]byte("a")}, TypeBinary},
		{"json", []any{map[string]any{"a": 1.0}, []any{1.0}}, TypeJSON},
		{"strings", []any{"a", "b"}, TypeString},
		{"mixed", []any{1, "a"}, TypeString},
		{"bool and int", []any{true, 1}, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.values))
		})
	}
}

func TestType_PostgresType(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{TypeInt, "bigint"},
		{TypeFloat, "double precision"},
		{TypeBool, "boolean"},
		{TypeString, "text"},
		{TypeTimestamp, "timestamptz"},
		{TypeDate, "date"},
		{TypeJSON, "jsonb"},
		{TypeBinary, "bytea"},
		{TypeUnknown, "text"},
		{"something", "text"},
	}

	for _, tt := range tests {
		t.Run(string(tt.t), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.PostgresType())
		})
	}
}
