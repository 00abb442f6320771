// Package connector runs SQL against a PostgreSQL database and moves tabular
// data in and out of it.
//
// A Connector holds validated connection settings and nothing else. Each
// operation opens a fresh connection, does its work and closes the
// connection before returning, even when the context is cancelled.
//
//	conn, err := connector.New(cfg.Database)
//	if err != nil {
//		return err
//	}
//
//	f, err := conn.ExecuteQuery(ctx, "SELECT id, name FROM users")
//	err = conn.CreateTable(ctx, "CREATE TABLE IF NOT EXISTS audit (at timestamptz)")
//	n, err := conn.StoreFrame(ctx, f, "users_copy")
//
// # Errors
//
// Failures are returned as *nimbleerrors.Error. Server errors are typed by
// SQLSTATE (class 28 is authentication, 42501 is permission, 57014 is
// timeout) and carry the code in the "sqlstate" detail. Failures to reach
// the server are typed connection. The driver error stays reachable through
// errors.As.
//
// # Storing frames
//
// StoreFrame drops the target table, creates it from the frame's columns and
// loads the rows with COPY, all in one transaction. Either the new table is
// visible with every row or the old table is untouched.
//
// # Observability
//
// Every operation gets a uuid operation id that is attached to its log
// lines, a span named "connector.<operation>" and a sample in the
// nimble_operation_* Prometheus metrics.
package connector
