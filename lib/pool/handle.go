// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/litehost/lib/engine"
)

var nextHandleID atomic.Uint64

// Handle owns one native engine connection. Close releases the native
// connection exactly once, no matter how many goroutines call it.
type Handle struct {
	id      uint64
	conn    engine.Conn
	version int

	invalid atomic.Bool

	mu       sync.Mutex
	attached io.Closer

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// NewHandle wraps conn. The version is the pool version the handle
// was created under and is what the owner passes back to Add.
func NewHandle(conn engine.Conn, version int) *Handle {
	return &Handle{
		id:      nextHandleID.Add(1),
		conn:    conn,
		version: version,
	}
}

// ID returns a process-unique identifier for the handle.
func (h *Handle) ID() uint64 { return h.id }

// Conn returns the native connection.
func (h *Handle) Conn() engine.Conn { return h.conn }

// Version returns the pool version the handle was created under.
func (h *Handle) Version() int { return h.version }

// Invalidate marks the handle as unusable. An invalid handle is
// disposed instead of being pooled or handed out.
func (h *Handle) Invalidate() { h.invalid.Store(true) }

// IsValid reports whether the handle may be used: it has not been
// closed or invalidated and the native connection is still open.
func (h *Handle) IsValid() bool {
	if h.conn == nil || h.closed.Load() || h.invalid.Load() {
		return false
	}
	return h.conn.IsOpen()
}

// IsClosed reports whether Close has been called.
func (h *Handle) IsClosed() bool { return h.closed.Load() }

// Attach associates resource with the handle and returns whatever was
// attached before. The attached resource lives as long as the native
// connection: Close closes it first. Attach(nil) detaches.
func (h *Handle) Attach(resource io.Closer) io.Closer {
	h.mu.Lock()
	defer h.mu.Unlock()
	previous := h.attached
	h.attached = resource
	return previous
}

// Close releases the attached resource and then the native
// connection. Subsequent calls return the result of the first.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		var errs []error
		if resource := h.Attach(nil); resource != nil {
			errs = append(errs, resource.Close())
		}
		if h.conn != nil {
			errs = append(errs, h.conn.Close())
		}
		h.closeErr = errors.Join(errs...)
	})
	return h.closeErr
}
