// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// Registration is one recorded CreateFunction call that registered
// callbacks.
type Registration struct {
	Name      string
	NArgs     int
	Flags     engine.FunctionFlags
	Callbacks *engine.Callbacks
}

type functionKey struct {
	name  string
	nArgs int
}

// Conn is a fake native connection. It is safe for concurrent use so
// that tests can inspect it while the code under test owns it.
type Conn struct {
	// ID distinguishes connections created by the same [Opener].
	ID   uint64
	Path string

	mu          sync.Mutex
	closed      bool
	closeCalls  int
	closeErr    error
	cancelCalls int
	functions   map[functionKey]*Registration
	collations  map[string]*engine.Collation
	createErrs  map[string]error
	unbindCalls int
}

var _ engine.Conn = (*Conn)(nil)

// NewConn returns an open fake connection.
func NewConn(id uint64, path string) *Conn {
	return &Conn{
		ID:         id,
		Path:       path,
		functions:  make(map[functionKey]*Registration),
		collations: make(map[string]*engine.Collation),
		createErrs: make(map[string]error),
	}
}

func (c *Conn) CreateFunction(name string, nArgs int, flags engine.FunctionFlags, callbacks *engine.Callbacks) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return engine.ErrClosed
	}
	if err := c.createErrs[strings.ToLower(name)]; err != nil {
		return err
	}
	key := functionKey{name: strings.ToLower(name), nArgs: nArgs}
	if callbacks == nil {
		c.unbindCalls++
		delete(c.functions, key)
		return nil
	}
	c.functions[key] = &Registration{Name: name, NArgs: nArgs, Flags: flags, Callbacks: callbacks}
	return nil
}

func (c *Conn) CreateCollation(name string, collation *engine.Collation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return engine.ErrClosed
	}
	if err := c.createErrs[strings.ToLower(name)]; err != nil {
		return err
	}
	key := strings.ToLower(name)
	if collation == nil {
		c.unbindCalls++
		delete(c.collations, key)
		return nil
	}
	c.collations[key] = collation
	return nil
}

func (c *Conn) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCalls++
}

// Execute is not supported by the fake.
func (c *Conn) Execute(_ context.Context, query string, _ func(engine.Row) error, _ ...any) error {
	return fmt.Errorf("enginetest: execute %q: %w", query, engine.ErrUnsupported)
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close marks the connection closed. The first call returns the
// error injected with [Conn.FailClose], if any; the connection is
// closed either way.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCalls++
	if c.closed {
		return nil
	}
	c.closed = true
	return c.closeErr
}

// FailCreate makes every future CreateFunction and CreateCollation
// call for name fail with err. A nil err clears the failure.
func (c *Conn) FailCreate(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.createErrs, strings.ToLower(name))
		return
	}
	c.createErrs[strings.ToLower(name)] = err
}

// FailClose makes the next Close return err.
func (c *Conn) FailClose(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeErr = err
}

// Function returns the registration for name and arity, or nil.
func (c *Conn) Function(name string, nArgs int) *Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.functions[functionKey{name: strings.ToLower(name), nArgs: nArgs}]
}

// Collation returns the registered collation for name, or nil.
func (c *Conn) Collation(name string) *engine.Collation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collations[strings.ToLower(name)]
}

// FunctionCount returns the number of registered functions.
func (c *Conn) FunctionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.functions)
}

// CloseCalls returns how many times Close was called.
func (c *Conn) CloseCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCalls
}

// CancelCalls returns how many times Cancel was called.
func (c *Conn) CancelCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelCalls
}

// UnbindCalls returns how many unregistrations (nil callbacks or nil
// collation) succeeded.
func (c *Conn) UnbindCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unbindCalls
}
