// Package source extracts the raw record table from the relational source
// with a single SELECT * query.
package source

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/YuminosukeSato/creditdefault/frame"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
)

// Opener returns a handle for cfg. The loader closes it after the query.
type Opener func(cfg Config) (*sql.DB, error)

// Loader runs the extraction query.
type Loader struct {
	cfg    Config
	logger log.Logger
	open   Opener
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithOpener replaces the driver-backed opener, mainly for tests.
func WithOpener(open Opener) LoaderOption {
	return func(l *Loader) {
		l.open = open
	}
}

// NewLoader creates a Loader.
func NewLoader(cfg Config, logger log.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{cfg: cfg, logger: logger, open: OpenDB}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenDB opens a database/sql handle through the native driver connector.
func OpenDB(cfg Config) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverSQLServer:
		connector, err := mssql.NewConnector(dsn)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	default:
		connConfig, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, err
		}
		return stdlib.OpenDB(*connConfig), nil
	}
}

// Load opens the connection, runs the query, materializes every row and
// closes the connection before returning. Errors are logged and returned
// as SourceError; nothing is retried.
func (l *Loader) Load(ctx context.Context) (f *frame.Frame, err error) {
	logger := l.logger.With(log.ComponentKey, "source", log.TableKey, l.cfg.Table)
	start := time.Now()

	defer func() {
		if err != nil {
			logger.Error("extraction failed", err)
		}
	}()

	query, err := l.cfg.Query()
	if err != nil {
		return nil, err
	}

	db, err := l.open(l.cfg)
	if err != nil {
		return nil, errors.NewSourceError("open", l.cfg.Driver, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("closing connection failed", log.ErrorKey, cerr)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.NewSourceError("ping", l.cfg.Driver, err)
	}

	logger.Debug("running extraction query", "query", query)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewSourceError("query", l.cfg.Driver, err)
	}
	defer rows.Close()

	f, err = materialize(rows)
	if err != nil {
		return nil, errors.NewSourceError("scan", l.cfg.Driver, err)
	}

	logger.Info("extraction finished",
		log.SamplesKey, f.NumRows(),
		log.FeaturesKey, f.NumCols(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return f, nil
}

func materialize(rows *sql.Rows) (*frame.Frame, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	raw := make([][]any, len(types))
	dest := make([]any, len(types))
	cells := make([]any, len(types))
	for i := range dest {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		for i := range cells {
			cells[i] = nil
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range cells {
			// drivers may reuse byte buffers between rows
			if b, ok := v.([]byte); ok {
				v = append([]byte(nil), b...)
			}
			raw[i] = append(raw[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cols := make([]*frame.Column, len(types))
	for i, ct := range types {
		kind, ok := kindFromTypeName(ct.DatabaseTypeName())
		if !ok {
			kind = kindFromValues(raw[i])
		}
		col, err := buildColumn(ct.Name(), kind, raw[i])
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return frame.New(cols...)
}
