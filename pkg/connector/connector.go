package connector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nimble/pkg/config"
	"github.com/ajitpratap0/nimble/pkg/frame"
	"github.com/ajitpratap0/nimble/pkg/logger"
	"github.com/ajitpratap0/nimble/pkg/metrics"
	"github.com/ajitpratap0/nimble/pkg/nimbleerrors"
	"github.com/ajitpratap0/nimble/pkg/observability"
)

const (
	opExecuteQuery = "execute_query"
	opCreateTable  = "create_table"
	opStoreFrame   = "store_frame"
	opPing         = "ping"

	closeTimeout = 5 * time.Second
)

// Connector runs statements against a single PostgreSQL database. Every
// call opens its own connection and closes it before returning; nothing is
// pooled or shared between calls, so a Connector is safe for concurrent use.
type Connector struct {
	cfg        config.ConnectionConfig
	connConfig *pgx.ConnConfig
	dial       Dialer
	logger     *zap.Logger
	metrics    *metrics.Recorder
}

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Connector) {
		c.logger = l
	}
}

// WithDialer replaces the function used to open connections.
func WithDialer(d Dialer) Option {
	return func(c *Connector) {
		c.dial = d
	}
}

// WithMetrics sets the metrics recorder. Defaults to metrics.Default().
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Connector) {
		c.metrics = r
	}
}

// New validates cfg and returns a Connector. It does not contact the server.
func New(cfg config.ConnectionConfig, opts ...Option) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeConfig, "invalid connection config")
	}

	connConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeConfig, "failed to parse connection string").
			WithDetail("dsn", cfg.Redacted())
	}
	if cfg.ConnectTimeout > 0 {
		connConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	c := &Connector{
		cfg:        cfg,
		connConfig: connConfig,
		dial:       pgxDialer,
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	c.logger = c.logger.With(
		zap.String("component", "connector"),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return c, nil
}

// Config returns the connection parameters the connector was built with.
func (c *Connector) Config() config.ConnectionConfig {
	return c.cfg
}

// String returns the connection string with the password masked.
func (c *Connector) String() string {
	return c.cfg.Redacted()
}

// ExecuteQuery runs sql and returns every result row as a frame. A statement
// that produces no rows returns an empty frame. Failures are returned as
// *nimbleerrors.Error typed connection, authentication, permission,
// statement or timeout.
func (c *Connector) ExecuteQuery(ctx context.Context, sql string) (*frame.Frame, error) {
	var result *frame.Frame
	err := c.run(ctx, opExecuteQuery, nil, func(ctx context.Context, log *zap.Logger) (int64, error) {
		conn, err := c.connect(ctx)
		if err != nil {
			return 0, err
		}
		defer c.closeConn(ctx, conn, log)

		rows, err := conn.Query(ctx, sql)
		if err != nil {
			return 0, classify(err, nimbleerrors.ErrorTypeStatement, "failed to execute query")
		}

		f, err := collectFrame(rows)
		if err != nil {
			return 0, err
		}
		result = f
		return int64(f.NumRows()), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTable executes a DDL statement in its own transaction and commits
// it. On failure the transaction is rolled back.
func (c *Connector) CreateTable(ctx context.Context, sql string) error {
	return c.run(ctx, opCreateTable, nil, func(ctx context.Context, log *zap.Logger) (int64, error) {
		conn, err := c.connect(ctx)
		if err != nil {
			return 0, err
		}
		defer c.closeConn(ctx, conn, log)

		err = inTx(ctx, conn, log, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, sql); err != nil {
				return classify(err, nimbleerrors.ErrorTypeStatement, "failed to execute statement")
			}
			return nil
		})
		if err != nil {
			return 0, err
		}

		log.Info("table created")
		return 0, nil
	})
}

// Ping opens a connection and runs SELECT 1.
func (c *Connector) Ping(ctx context.Context) error {
	return c.run(ctx, opPing, nil, func(ctx context.Context, log *zap.Logger) (int64, error) {
		conn, err := c.connect(ctx)
		if err != nil {
			return 0, err
		}
		defer c.closeConn(ctx, conn, log)

		rows, err := conn.Query(ctx, "SELECT 1")
		if err != nil {
			return 0, classify(err, nimbleerrors.ErrorTypeConnection, "ping failed")
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, classify(err, nimbleerrors.ErrorTypeConnection, "ping failed")
		}
		return 0, nil
	})
}

// run wraps an operation with an operation id, a span, metrics and a
// single error log line.
func (c *Connector) run(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(context.Context, *zap.Logger) (int64, error)) error {
	ctx = logger.WithOperation(ctx, op, uuid.NewString())
	log := logger.FromContext(ctx, c.logger)

	attrs = append(attrs,
		attribute.String("db.system", "postgresql"),
		attribute.String("db.name", c.cfg.Database),
		attribute.String("server.address", c.cfg.Host))
	ctx, span := observability.StartSpan(ctx, "connector."+op, attrs...)
	defer span.End()

	timer := metrics.NewTimer()
	rows, err := fn(ctx, log)
	duration := timer.Stop()

	c.metrics.Observe(op, duration, rows, err)
	span.SetAttributes(attribute.Int64("db.rows", rows))

	if err != nil {
		span.RecordError(err)
		log.Error("operation failed",
			zap.Error(err),
			zap.String("error_type", string(nimbleerrors.TypeOf(err))),
			zap.Duration("duration", duration))
		return err
	}

	log.Debug("operation completed",
		zap.Int64("rows", rows),
		zap.Duration("duration", duration))
	return nil
}

func (c *Connector) connect(ctx context.Context) (Conn, error) {
	conn, err := c.dial(ctx, c.connConfig.Copy())
	if err != nil {
		return nil, classify(err, nimbleerrors.ErrorTypeConnection, "failed to connect to database").
			WithDetail("dsn", c.cfg.Redacted())
	}
	return conn, nil
}

func (c *Connector) closeConn(ctx context.Context, conn Conn, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	if err := conn.Close(ctx); err != nil {
		log.Warn("failed to close connection", zap.Error(err))
	}
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on any error.
func inTx(ctx context.Context, conn Conn, log *zap.Logger, fn func(pgx.Tx) error) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return classify(err, nimbleerrors.ErrorTypeConnection, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if rbErr := tx.Rollback(rollbackCtx); rbErr != nil {
			log.Warn("failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(err, nimbleerrors.ErrorTypeStatement, "failed to commit transaction")
	}
	return nil
}

// collectFrame drains rows into a frame and closes them.
func collectFrame(rows pgx.Rows) (*frame.Frame, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]frame.Column, len(fields))
	for i, fd := range fields {
		columns[i] = frame.Column{
			Name: fd.Name,
			Type: frame.TypeFromOID(fd.DataTypeOID),
		}
	}

	f := frame.New(columns...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeData, "failed to decode row")
		}
		for i, v := range values {
			values[i] = frame.NormalizeValue(v)
		}
		if err := f.AppendRow(values...); err != nil {
			return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeData, "row does not match result columns")
		}
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, nimbleerrors.ErrorTypeStatement, "failed to read query result")
	}
	return f, nil
}
