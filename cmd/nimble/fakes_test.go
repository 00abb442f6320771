package main

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ajitpratap0/nimble/pkg/connector"
)

// fakeServer stands in for PostgreSQL behind the connector's Dialer. Query
// answers with fields and values; COPY input is captured.
type fakeServer struct {
	mu sync.Mutex

	fields []pgconn.FieldDescription
	values [][]any

	dials       int
	statements  []string
	copyTable   pgx.Identifier
	copyColumns []string
	copied      [][]any
	commits     int
}

func (s *fakeServer) dial(ctx context.Context, cfg *pgx.ConnConfig) (connector.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dials++
	return &fakeConn{srv: s}, nil
}

type fakeConn struct {
	srv *fakeServer
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	c.srv.statements = append(c.srv.statements, sql)
	return &fakeRows{fields: c.srv.fields, values: c.srv.values}, nil
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{srv: c.srv}, nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	return nil
}

type fakeTx struct {
	pgx.Tx
	srv *fakeServer
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.srv.mu.Lock()
	defer tx.srv.mu.Unlock()
	tx.srv.statements = append(tx.srv.statements, sql)
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	tx.srv.mu.Lock()
	defer tx.srv.mu.Unlock()
	tx.srv.copyTable = table
	tx.srv.copyColumns = columns
	tx.srv.copied = nil
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		tx.srv.copied = append(tx.srv.copied, values)
	}
	return int64(len(tx.srv.copied)), src.Err()
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.srv.mu.Lock()
	defer tx.srv.mu.Unlock()
	tx.srv.commits++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	return nil
}

type fakeRows struct {
	pgx.Rows

	fields []pgconn.FieldDescription
	values [][]any
	pos    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	return r.fields
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
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
