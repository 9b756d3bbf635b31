// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqliteengine_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"zombiezen.com/go/sqlite"

	"github.com/bureau-foundation/litehost/lib/engine"
	"github.com/bureau-foundation/litehost/lib/engine/sqliteengine"
	"github.com/bureau-foundation/litehost/lib/function"
	"github.com/bureau-foundation/litehost/lib/testutil"
)

func openConn(t *testing.T, logger *slog.Logger) engine.Conn {
	t.Helper()
	conn, err := sqliteengine.NewOpener(sqliteengine.Config{Logger: logger}).Open(context.Background(), testutil.DatabasePath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exec(t *testing.T, conn engine.Conn, sql string) []engine.Row {
	t.Helper()
	rows, err := collect(conn, sql)
	if err != nil {
		t.Fatalf("%s: %v", sql, err)
	}
	return rows
}

func collect(conn engine.Conn, sql string) ([]engine.Row, error) {
	var rows []engine.Row
	err := conn.Execute(context.Background(), sql, func(row engine.Row) error {
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func seed(t *testing.T, conn engine.Conn) {
	t.Helper()
	exec(t, conn, "CREATE TABLE t (v TEXT)")
	exec(t, conn, "INSERT INTO t VALUES ('a'), ('a'), ('a'), ('a'), ('a')")
}

func bind(t *testing.T, conn engine.Conn, descriptor function.Descriptor, funcs function.Funcs) {
	t.Helper()
	registry := function.NewRegistry(nil)
	if _, err := registry.RegisterFuncs(descriptor, funcs); err != nil {
		t.Fatalf("RegisterFuncs(%s): %v", descriptor, err)
	}
	for d, bound := range registry.BindFunctions(conn, 0) {
		if bound == nil {
			t.Fatalf("%s did not bind", d)
		}
	}
}

func TestFailingCollationInterruptsStatement(t *testing.T) {
	conn := openConn(t, nil)
	seed(t, conn)

	var calls atomic.Int32
	bind(t, conn, function.Descriptor{Name: "flaky", Kind: function.KindCollation}, function.Funcs{
		Compare: func(left, right string) (int, error) {
			if calls.Add(1) == 3 {
				return 0, errors.New("flaky comparison")
			}
			return strings.Compare(left, right), nil
		},
	})

	_, err := collect(conn, "SELECT v FROM t WHERE v = 'a' COLLATE flaky")
	if err != nil && sqlite.ErrCode(err) != sqlite.ResultInterrupt {
		t.Errorf("query error = %v, want nil or an interrupt", err)
	}
	if calls.Load() < 3 {
		t.Errorf("collation called %d times, want at least 3", calls.Load())
	}

	// The interrupt is scoped to the failed statement.
	rows := exec(t, conn, "SELECT count(*) FROM t")
	if rows[0][0] != int64(5) {
		t.Errorf("count after interrupted statement = %#v, want 5", rows[0][0])
	}
}

func TestCancelOutsideExecuteIsNoOp(t *testing.T) {
	conn := openConn(t, nil)
	conn.Cancel()
	seed(t, conn)
	if rows := exec(t, conn, "SELECT count(*) FROM t"); rows[0][0] != int64(5) {
		t.Errorf("count = %#v, want 5", rows[0][0])
	}
}

func TestCancelInterruptsRunningStatement(t *testing.T) {
	conn := openConn(t, nil)
	var calls atomic.Int32
	bind(t, conn, function.Descriptor{Name: "stop", Arity: 1, Kind: function.KindScalar}, function.Funcs{
		Invoke: func(_ *function.Call, args []any) (any, error) {
			if calls.Add(1) == 10 {
				conn.Cancel()
			}
			return args[0], nil
		},
	})

	_, err := collect(conn, "WITH RECURSIVE n(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM n) SELECT stop(i) FROM n")
	if sqlite.ErrCode(err) != sqlite.ResultInterrupt {
		t.Fatalf("unbounded query error = %v, want an interrupt", err)
	}
	if rows := exec(t, conn, "SELECT stop(7)"); rows[0][0] != int64(7) {
		t.Errorf("stop(7) after cancel = %#v, want 7", rows[0][0])
	}
}

func countingWindow(final func(state any) (any, error)) function.Funcs {
	add := func(delta int64) func(*function.Call, []any, int, *any) error {
		return func(_ *function.Call, _ []any, _ int, state *any) error {
			n, _ := (*state).(int64)
			*state = n + delta
			return nil
		}
	}
	return function.Funcs{
		Step:    add(1),
		Inverse: add(-1),
		Value:   func(_ *function.Call, _ any) (any, error) { return "value", nil },
		Final:   func(_ *function.Call, state any) (any, error) { return final(state) },
	}
}

func TestWindowFinalResultIsNotVisibleToSQL(t *testing.T) {
	conn := openConn(t, nil)
	seed(t, conn)
	bind(t, conn, function.Descriptor{Name: "wfin", Arity: 1, Kind: function.KindWindow},
		countingWindow(func(any) (any, error) { return "final", nil }))

	rows := exec(t, conn, "SELECT wfin(v) FROM t")
	if len(rows) != 1 || rows[0][0] != "value" {
		t.Errorf("wfin rows = %#v, want the Value result", rows)
	}
}

func TestWindowFinalErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	conn := openConn(t, slog.New(slog.NewTextHandler(&logs, nil)))
	seed(t, conn)
	bind(t, conn, function.Descriptor{Name: "wfail", Arity: 1, Kind: function.KindWindow},
		countingWindow(func(any) (any, error) { return nil, errors.New("final boom") }))

	rows := exec(t, conn, "SELECT wfail(v) FROM t")
	if len(rows) != 1 || rows[0][0] != "value" {
		t.Errorf("wfail rows = %#v, want the Value result", rows)
	}
	output := logs.String()
	for _, want := range []string{"window function final failed", "function=wfail", "final boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("log missing %q:\n%s", want, output)
		}
	}
}

func TestSubTypesAreNotSurfaced(t *testing.T) {
	conn := openConn(t, nil)
	var sub uint32 = 99
	var fromBind = true
	bind(t, conn, function.Descriptor{Name: "tag", Arity: 1, Kind: function.KindScalar, Flags: engine.FlagSubType}, function.Funcs{
		Invoke: func(call *function.Call, args []any) (any, error) {
			sub, _ = call.ParameterSubType(0)
			fromBind, _ = call.ParameterFromBind(0)
			call.SetReturnSubType(74)
			return args[0], nil
		},
	})

	rows, err := collect(conn, "SELECT tag(tag('x'))")
	if err != nil {
		t.Fatalf("tag(tag('x')): %v", err)
	}
	if rows[0][0] != "x" {
		t.Errorf("tag(tag('x')) = %#v, want \"x\"", rows[0][0])
	}
	if sub != 0 || fromBind {
		t.Errorf("inner sub-type = %d, from bind = %v; want 0, false", sub, fromBind)
	}
}
