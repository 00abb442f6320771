package connector

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory stand-in for a server. It only understands the
// statements the connector issues: DROP TABLE, CREATE TABLE and COPY.
type fakeDB struct {
	mu sync.Mutex

	tables map[string][][]any
	// statements holds every statement executed, committed or not
	statements []string
	// failOn makes Exec fail for statements containing the key
	failOn map[string]error
	// copyErr makes CopyFrom fail
	copyErr error
	// beginErr makes Begin fail
	beginErr error
	// queryResult is returned by Query
	queryResult *fakeRows
	queryErr    error

	dials      int
	closed     int
	commits    int
	rollbacks  int
	lastConfig *pgx.ConnConfig
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		tables: make(map[string][][]any),
		failOn: make(map[string]error),
	}
}

func (db *fakeDB) dialer() Dialer {
	return func(ctx context.Context, cfg *pgx.ConnConfig) (Conn, error) {
		db.mu.Lock()
		defer db.mu.Unlock()
		db.dials++
		db.lastConfig = cfg
		return &fakeConn{db: db}, nil
	}
}

func (db *fakeDB) rowCount(table string) (int, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	rows, ok := db.tables[table]
	return len(rows), ok
}

type fakeConn struct {
	db *fakeDB
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.statements = append(c.db.statements, sql)
	if c.db.queryErr != nil {
		return nil, c.db.queryErr
	}
	if c.db.queryResult == nil {
		return &fakeRows{}, nil
	}
	return c.db.queryResult, nil
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.db.beginErr != nil {
		return nil, c.db.beginErr
	}
	return &fakeTx{db: c.db, staged: make(map[string][][]any)}, nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	c.db.closed++
	return nil
}

type fakeTx struct {
	pgx.Tx

	db      *fakeDB
	staged  map[string][][]any
	dropped []string
	done    bool
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.statements = append(tx.db.statements, sql)

	for substr, err := range tx.db.failOn {
		if strings.Contains(sql, substr) {
			return pgconn.CommandTag{}, err
		}
	}

	switch {
	case strings.HasPrefix(sql, "DROP TABLE IF EXISTS "):
		name := strings.TrimPrefix(sql, "DROP TABLE IF EXISTS ")
		tx.dropped = append(tx.dropped, name)
		delete(tx.staged, name)
	case strings.HasPrefix(sql, "CREATE TABLE "):
		rest := strings.TrimPrefix(sql, "CREATE TABLE ")
		rest = strings.TrimPrefix(rest, "IF NOT EXISTS ")
		name := strings.Fields(rest)[0]
		tx.staged[name] = [][]any{}
	}
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if tx.db.copyErr != nil {
		return 0, tx.db.copyErr
	}
	name := tableName.Sanitize()
	if _, ok := tx.staged[name]; !ok {
		return 0, &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	}
	var n int64
	for rowSrc.Next() {
		values, err := rowSrc.Values()
		if err != nil {
			return n, err
		}
		if len(values) != len(columnNames) {
			return n, errors.New("column count mismatch")
		}
		tx.staged[name] = append(tx.staged[name], values)
		n++
	}
	return n, rowSrc.Err()
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	for _, name := range tx.dropped {
		delete(tx.db.tables, name)
	}
	for name, rows := range tx.staged {
		tx.db.tables[name] = rows
	}
	tx.db.commits++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.rollbacks++
	return nil
}

type fakeRows struct {
	pgx.Rows

	fields []pgconn.FieldDescription
	values [][]any
	err    error

	pos    int
	closed bool
}

func (r *fakeRows) Close() {
	r.closed = true
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	return r.fields
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.values[r.pos-1]
	out := make([]any, len(row))
	copy(out, row)
	return out, nil
}
