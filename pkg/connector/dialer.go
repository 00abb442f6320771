package connector

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Conn is the subset of *pgx.Conn the connector uses.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// Dialer opens a connection. The default dials PostgreSQL with pgx.
type Dialer func(ctx context.Context, cfg *pgx.ConnConfig) (Conn, error)

func pgxDialer(ctx context.Context, cfg *pgx.ConnConfig) (Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
