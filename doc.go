// Package nimble runs SQL against PostgreSQL and moves tabular data in and
// out of it.
//
// # Packages
//
//   - pkg/connector: the Connector. ExecuteQuery returns a frame,
//     CreateTable runs DDL in a committed transaction, StoreFrame replaces a
//     table with the contents of a frame using COPY.
//   - pkg/frame: an ordered, typed table of rows with CSV and JSON codecs.
//   - pkg/config: connection settings from YAML, NIMBLE_* environment
//     variables and flags.
//   - pkg/nimbleerrors: typed errors (connection, authentication, statement,
//     permission, timeout, ...).
//   - pkg/logger, pkg/metrics, pkg/observability: zap logging, Prometheus
//     metrics and OpenTelemetry spans for every connector operation.
//   - pkg/compression: gzip, zstd, lz4, snappy and s2 streams chosen by file
//     suffix.
//
// # Quick Start
//
//	cfg, err := config.LoadFromViper(config.NewViper())
//	if err != nil {
//		return err
//	}
//	conn, err := connector.New(cfg.Database)
//	if err != nil {
//		return err
//	}
//
//	f, err := conn.ExecuteQuery(ctx, "SELECT * FROM events WHERE day = current_date")
//	if err != nil {
//		return err
//	}
//	n, err := conn.StoreFrame(ctx, f, "analytics.events_today")
//
// The nimble command wraps the same operations:
//
//	nimble query "SELECT 1"
//	nimble exec "CREATE TABLE IF NOT EXISTS audit (at timestamptz)"
//	nimble store --file events.csv.zst --table analytics.events
package nimble
