package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nimble/pkg/frame"
	"github.com/ajitpratap0/nimble/pkg/nimbleerrors"
)

// StoreFrame writes f to the table name, replacing the table if it exists.
// The table gets one column per frame column and no key column. Drop,
// create and COPY run in one transaction, so on failure the previous table
// is left as it was. Returns the number of rows written.
//
// name may be schema-qualified ("analytics.events"); each part is quoted.
func (c *Connector) StoreFrame(ctx context.Context, f *frame.Frame, name string) (int64, error) {
	var written int64
	err := c.run(ctx, opStoreFrame, []attribute.KeyValue{attribute.String("db.sql.table", name)},
		func(ctx context.Context, log *zap.Logger) (int64, error) {
			if f == nil || f.NumColumns() == 0 {
				return 0, nimbleerrors.New(nimbleerrors.ErrorTypeValidation, "frame has no columns").
					WithDetail("table", name)
			}
			table, err := parseTableName(name)
			if err != nil {
				return 0, err
			}
			columns := f.Columns()
			createSQL := createTableSQL(table, columns)

			conn, err := c.connect(ctx)
			if err != nil {
				return 0, err
			}
			defer c.closeConn(ctx, conn, log)

			var n int64
			err = inTx(ctx, conn, log, func(tx pgx.Tx) error {
				if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+table.Sanitize()); err != nil {
					return classify(err, nimbleerrors.ErrorTypeStatement, "failed to drop table").
						WithDetail("table", name)
				}
				if _, err := tx.Exec(ctx, createSQL); err != nil {
					return classify(err, nimbleerrors.ErrorTypeStatement, "failed to create table").
						WithDetail("table", name)
				}
				n, err = tx.CopyFrom(ctx, table, f.ColumnNames(), copySource(f, columns))
				if err != nil {
					return classify(err, nimbleerrors.ErrorTypeStatement, "failed to copy rows").
						WithDetail("table", name)
				}
				return nil
			})
			if err != nil {
				return 0, err
			}

			log.Info("frame stored",
				zap.String("table", name),
				zap.Int64("rows", n),
				zap.Int("columns", len(columns)))
			written = n
			return n, nil
		})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func parseTableName(name string) (pgx.Identifier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nimbleerrors.New(nimbleerrors.ErrorTypeValidation, "table name is required")
	}
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return nil, nimbleerrors.New(nimbleerrors.ErrorTypeValidation, "table name has an empty part").
				WithDetail("table", name)
		}
	}
	return pgx.Identifier(parts), nil
}

func createTableSQL(table pgx.Identifier, columns []frame.Column) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(table.Sanitize())
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{col.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(col.Type.PostgresType())
	}
	b.WriteString(")")
	return b.String()
}

// copySource feeds frame rows to COPY, coercing values the target column
// type cannot take directly.
func copySource(f *frame.Frame, columns []frame.Column) pgx.CopyFromSource {
	return pgx.CopyFromSlice(f.NumRows(), func(i int) ([]any, error) {
		row := f.Row(i)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = copyValue(v, columns[j].Type)
		}
		return values, nil
	})
}

func copyValue(v any, t frame.Type) any {
	if v == nil {
		return nil
	}
	switch t {
	case frame.TypeFloat:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		}
	case frame.TypeString, frame.TypeUnknown, "":
		if _, ok := v.(string); !ok {
			return fmt.Sprint(v)
		}
	}
	return v
}
