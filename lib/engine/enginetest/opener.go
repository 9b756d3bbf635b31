// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginetest

import (
	"context"
	"sync"

	"github.com/bureau-foundation/litehost/lib/engine"
)

// Opener creates fake connections and remembers every one it made.
type Opener struct {
	mu      sync.Mutex
	nextID  uint64
	conns   []*Conn
	openErr error
}

var _ engine.Opener = (*Opener)(nil)

// NewOpener returns an Opener with no connections.
func NewOpener() *Opener {
	return &Opener{}
}

func (o *Opener) Open(ctx context.Context, path string) (engine.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.nextID++
	conn := NewConn(o.nextID, path)
	o.conns = append(o.conns, conn)
	return conn, nil
}

// FailOpen makes every future Open fail with err. A nil err clears
// the failure.
func (o *Opener) FailOpen(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.openErr = err
}

// Opened returns how many connections have been created.
func (o *Opener) Opened() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.conns)
}

// Conns returns every connection created so far, oldest first.
func (o *Opener) Conns() []*Conn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Conn(nil), o.conns...)
}
