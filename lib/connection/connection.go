// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package connection is the open and close path of a logical database
// connection.
//
// Open checks an idle native connection out of the active pool
// strategy, or opens a new one when the pool misses, and binds every
// registered function to it. Close optionally unbinds the functions
// and hands the native connection back to the pool under the version
// it was checked out with; if the pool was cleared in the meantime the
// pool disposes it instead.
//
// In-memory databases and connections opened with pooling disabled
// close their native connection directly.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/litehost/lib/appctx"
	"github.com/bureau-foundation/litehost/lib/engine"
	"github.com/bureau-foundation/litehost/lib/function"
	"github.com/bureau-foundation/litehost/lib/pool"
)

// ErrClosed is returned by operations on a closed Connection.
var ErrClosed = errors.New("connection: closed")

// Options configures Open.
type Options struct {
	// Path is the database file.
	Path string

	// MaxPoolSize bounds the idle connections kept for Path. Zero
	// uses pool.max_pool_size from the configuration.
	MaxPoolSize int

	// DisablePooling opens and closes the native connection directly.
	DisablePooling bool
}

// Connection is one logical connection. It is safe for concurrent
// use, but the underlying engine connection executes one statement at
// a time.
type Connection struct {
	app      *appctx.Context
	path     string
	pooled   bool
	reused   bool
	handle   *pool.Handle
	version  int
	bindings function.Bindings

	mu     sync.Mutex
	closed bool
}

// Open returns a connection to options.Path.
func Open(ctx context.Context, app *appctx.Context, options Options) (*Connection, error) {
	if app == nil {
		return nil, errors.New("connection: nil app context")
	}
	maxPoolSize := options.MaxPoolSize
	if maxPoolSize == 0 {
		maxPoolSize = app.Config.Pool.MaxPoolSize
	}
	pooled := !options.DisablePooling &&
		pool.IsPoolable(options.Path) &&
		app.Pools.ConnectionPool() != nil

	var (
		handle  *pool.Handle
		version int
	)
	if pooled {
		handle, version = app.Pools.Remove(options.Path, maxPoolSize)
	}
	reused := handle != nil
	if handle == nil {
		conn, err := app.Opener.Open(ctx, options.Path)
		if err != nil {
			return nil, fmt.Errorf("connection: open %s: %w", options.Path, err)
		}
		handle = pool.NewHandle(conn, version)
	}

	// Functions bound by the previous owner are replaced below.
	if previous := handle.Attach(nil); previous != nil {
		if err := previous.Close(); err != nil {
			app.Logger.Warn("releasing previous bindings", "path", options.Path, "handle", handle.ID(), "error", err)
		}
	}
	bindings := app.Functions.BindFunctions(handle.Conn(), app.BindFlags())
	handle.Attach(bindings)

	c := &Connection{
		app:      app,
		path:     options.Path,
		pooled:   pooled,
		reused:   reused,
		handle:   handle,
		version:  version,
		bindings: bindings,
	}
	app.Logger.Debug("connection opened",
		"path", options.Path,
		"handle", handle.ID(),
		"reused", reused,
		"pool_version", version,
	)
	return c, nil
}

// Path returns the database file name the connection was opened with.
func (c *Connection) Path() string { return c.path }

// Reused reports whether the native connection came from the pool.
func (c *Connection) Reused() bool { return c.reused }

// Version returns the pool version the native connection belongs to.
func (c *Connection) Version() int { return c.version }

// Handle returns the pooled handle wrapping the native connection.
func (c *Connection) Handle() *pool.Handle { return c.handle }

// Bindings returns the functions bound to this connection.
func (c *Connection) Bindings() function.Bindings { return c.bindings }

// Execute runs query on the native connection.
func (c *Connection) Execute(ctx context.Context, query string, fn func(engine.Row) error, args ...any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return c.handle.Conn().Execute(ctx, query, fn, args...)
}

// Close releases the connection. It is safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.app.Config.Functions.UnbindOnClose && c.handle.IsValid() {
		if !c.app.Functions.UnbindAllFunctions(c.handle.Conn(), c.bindings, c.app.BindFlags(), false) {
			c.app.Logger.Warn("unbinding functions on close", "path", c.path, "handle", c.handle.ID())
			c.handle.Invalidate()
		}
	}

	if c.pooled {
		c.app.Pools.Add(c.path, c.handle, c.version)
		return nil
	}
	if err := c.handle.Close(); err != nil {
		return fmt.Errorf("connection: close %s: %w", c.path, err)
	}
	return nil
}
