// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqliteengine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// Config holds the parameters for opening connections.
type Config struct {
	// Pragmas are executed on every new connection, in order.
	// Defaults to [DefaultPragmas] when nil.
	Pragmas []string

	// Logger receives connection lifecycle messages. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

// DefaultPragmas are applied to every connection unless Config
// overrides them.
var DefaultPragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// Opener opens zombiezen connections.
type Opener struct {
	pragmas []string
	logger  *slog.Logger
}

var _ engine.Opener = (*Opener)(nil)

// NewOpener returns an Opener configured by cfg.
func NewOpener(cfg Config) *Opener {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pragmas := cfg.Pragmas
	if pragmas == nil {
		pragmas = DefaultPragmas
	}
	return &Opener{pragmas: pragmas, logger: logger}
}

// Open opens path and applies the configured pragmas. The returned
// connection is owned by the caller.
func (o *Opener) Open(ctx context.Context, path string) (engine.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := sqlite.OpenConn(path)
	if err != nil {
		return nil, fmt.Errorf("sqliteengine: opening %s: %w", path, err)
	}
	for _, pragma := range o.pragmas {
		if err := sqlitex.ExecuteTransient(raw, pragma, nil); err != nil {
			raw.Close()
			return nil, fmt.Errorf("sqliteengine: %s: %w", pragma, err)
		}
	}
	o.logger.Debug("sqlite connection opened", "path", path)
	return &Conn{raw: raw, path: path, logger: o.logger}, nil
}

// Conn is an [engine.Conn] backed by a zombiezen connection.
type Conn struct {
	raw    *sqlite.Conn
	path   string
	logger *slog.Logger

	// nextAggregate numbers aggregate evaluations on this connection.
	nextAggregate atomic.Uint64

	mu     sync.Mutex
	closed bool

	// cancelStatement cancels the context of the statement running
	// under Execute. Nil between statements.
	cancelStatement context.CancelFunc
}

var _ engine.Conn = (*Conn)(nil)

// Raw returns the underlying zombiezen connection.
func (c *Conn) Raw() *sqlite.Conn { return c.raw }

func (c *Conn) CreateFunction(name string, nArgs int, flags engine.FunctionFlags, callbacks *engine.Callbacks) error {
	if !c.IsOpen() {
		return engine.ErrClosed
	}
	impl := &sqlite.FunctionImpl{
		NArgs:         nArgs,
		Deterministic: flags.Has(engine.FlagDeterministic),
		AllowIndirect: !flags.Has(engine.FlagDirectOnly),
	}
	switch {
	case callbacks == nil:
		impl.Scalar = func(sqlite.Context, []sqlite.Value) (sqlite.Value, error) {
			return sqlite.Value{}, fmt.Errorf("no such function: %s", name)
		}
	case callbacks.Invoke != nil:
		impl.Scalar = scalarTrampoline(callbacks.Invoke)
	case callbacks.Step != nil && callbacks.Final != nil:
		impl.MakeAggregate = func(sqlite.Context) (sqlite.AggregateFunction, error) {
			return &aggregate{id: c.nextAggregate.Add(1), name: name, callbacks: callbacks, logger: c.logger}, nil
		}
	default:
		return fmt.Errorf("sqliteengine: function %s: incomplete callback set: %w", name, engine.ErrUnsupported)
	}
	if err := c.raw.CreateFunction(name, impl); err != nil {
		return fmt.Errorf("sqliteengine: create function %s/%d: %w", name, nArgs, err)
	}
	return nil
}

func (c *Conn) CreateCollation(name string, collation *engine.Collation) error {
	if !c.IsOpen() {
		return engine.ErrClosed
	}
	var compare func(string, string) int
	if collation != nil {
		compare = collationTrampoline(collation)
		if compare == nil {
			return fmt.Errorf("sqliteengine: collation %s: no compare callback: %w", name, engine.ErrUnsupported)
		}
	}
	if err := c.raw.SetCollation(name, compare); err != nil {
		return fmt.Errorf("sqliteengine: set collation %s: %w", name, err)
	}
	return nil
}

// Cancel interrupts the statement running under Execute, if any. It
// only cancels that statement's context: zombiezen's interrupt watcher
// then calls sqlite3_interrupt, and no statement is reset from inside
// a callback. Cancel is a no-op outside Execute.
func (c *Conn) Cancel() {
	c.mu.Lock()
	cancel := c.cancelStatement
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Conn) Execute(ctx context.Context, query string, fn func(engine.Row) error, args ...any) error {
	if !c.IsOpen() {
		return engine.ErrClosed
	}
	statementCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelStatement = cancel
	c.mu.Unlock()
	previous := c.raw.SetInterrupt(statementCtx.Done())
	defer func() {
		c.raw.SetInterrupt(previous)
		c.mu.Lock()
		c.cancelStatement = nil
		c.mu.Unlock()
		cancel()
	}()

	options := &sqlitex.ExecOptions{Args: args}
	if fn != nil {
		options.ResultFunc = func(stmt *sqlite.Stmt) error {
			return fn(readRow(stmt))
		}
	}
	if err := sqlitex.Execute(c.raw, query, options); err != nil {
		return fmt.Errorf("sqliteengine: execute: %w", err)
	}
	return nil
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.raw.Close(); err != nil {
		c.logger.Warn("sqlite connection close failed", "path", c.path, "error", err)
		return fmt.Errorf("sqliteengine: closing %s: %w", c.path, err)
	}
	c.logger.Debug("sqlite connection closed", "path", c.path)
	return nil
}

func readRow(stmt *sqlite.Stmt) engine.Row {
	row := make(engine.Row, stmt.ColumnCount())
	for column := range row {
		switch stmt.ColumnType(column) {
		case sqlite.TypeInteger:
			row[column] = stmt.ColumnInt64(column)
		case sqlite.TypeFloat:
			row[column] = stmt.ColumnFloat(column)
		case sqlite.TypeText:
			row[column] = stmt.ColumnText(column)
		case sqlite.TypeBlob:
			buffer := make([]byte, stmt.ColumnLen(column))
			stmt.ColumnBytes(column, buffer)
			row[column] = buffer
		default:
			row[column] = nil
		}
	}
	return row
}
