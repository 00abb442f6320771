package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/nimble/pkg/compression"
	"github.com/ajitpratap0/nimble/pkg/frame"
	"github.com/ajitpratap0/nimble/pkg/logger"
	"github.com/ajitpratap0/nimble/pkg/nimbleerrors"
)

func (a *app) queryCommand() *cobra.Command {
	var format, output, compress string

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print the result",
		Long: `Run a query and print every result row.

Example:
  nimble query "SELECT id, name FROM users" --format csv --output users.csv.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseFormat(format); err != nil {
				return err
			}
			var alg compression.Algorithm
			if compress != "" {
				parsed, err := compression.Parse(compress)
				if err != nil {
					return nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeValidation, "invalid compression")
				}
				alg = parsed
			}
			conn, err := a.connector()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			f, err := conn.ExecuteQuery(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return writeFrame(a.out, f, format)
			}
			return writeFrameFile(output, f, format, alg)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table, csv, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file; .gz, .zst, .lz4, .sz and .s2 suffixes compress it")
	cmd.Flags().StringVar(&compress, "compression", "", "Compression for --output, overriding the suffix (gzip, zstd, lz4, snappy, s2, none)")
	return cmd
}

func (a *app) execCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Execute a DDL statement and commit it",
		Long: `Execute a statement such as CREATE TABLE in its own transaction.

Example:
  nimble exec "CREATE TABLE IF NOT EXISTS audit (at timestamptz, actor text)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connector()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			return conn.CreateTable(ctx, args[0])
		},
	}
}

func (a *app) storeCommand() *cobra.Command {
	var file, table, nullString string
	var delimiter string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Load a CSV file into a table, replacing the table",
		Long: `Load a CSV file into a table. The table is dropped and recreated with one
column per CSV column; column types are inferred from the data.

Example:
  nimble store --file events.csv.zst --table analytics.events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := frame.CSVOptions{NullString: nullString}
			if delimiter == "" && strings.HasSuffix(compression.TrimExtension(file), ".tsv") {
				delimiter = "\t"
			}
			if delimiter != "" {
				r := []rune(strings.ReplaceAll(delimiter, `\t`, "\t"))
				if len(r) != 1 {
					return nimbleerrors.Newf(nimbleerrors.ErrorTypeValidation, "delimiter must be a single character, got %q", delimiter)
				}
				opts.Delimiter = r[0]
			}

			f, err := readFrameFile(file, opts)
			if err != nil {
				return err
			}
			logger.Get().Debug("csv loaded",
				zap.String("file", file),
				zap.Int("rows", f.NumRows()),
				zap.Strings("columns", f.ColumnNames()))

			conn, err := a.connector()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			n, err := conn.StoreFrame(ctx, f, table)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d rows written to %s\n", n, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file to load; compressed files are detected by suffix (required)")
	cmd.Flags().StringVarP(&table, "table", "t", "", "Target table, optionally schema-qualified (required)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", `Field delimiter (default "," or "\t" for .tsv files)`)
	cmd.Flags().StringVar(&nullString, "null", "", "Cell text treated as NULL")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func (a *app) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connector()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			if err := conn.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "ok %s\n", conn)
			return nil
		},
	}
}

// readFrameFile reads a CSV file, decompressing it according to its suffix.
func readFrameFile(path string, opts frame.CSVOptions) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeFile, "failed to open input file").
			WithDetail("path", path)
	}
	defer file.Close()

	r, err := openReader(file, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	f, err := frame.ReadCSV(r, opts)
	if err != nil {
		return nil, nimbleerrors.Wrap(err, nimbleerrors.ErrorTypeData, "failed to read CSV").
			WithDetail("path", path)
	}
	return f, nil
}
