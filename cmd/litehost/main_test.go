// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/litehost/lib/config"
	"github.com/bureau-foundation/litehost/lib/testutil"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	var stdout bytes.Buffer
	if err := run(args, &stdout); err != nil {
		t.Fatalf("litehost %s: %v", strings.Join(args, " "), err)
	}
	return stdout.String()
}

func decodeReport(t *testing.T, output string) snapshot {
	t.Helper()
	var report snapshot
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("decoding report: %v\n%s", err, output)
	}
	return report
}

func TestProbeSingleWorkerReusesOneConnection(t *testing.T) {
	database := testutil.DatabasePath(t)
	report := decodeReport(t, runCommand(t, "probe",
		"--db", database, "--workers", "1", "--iterations", "5", "--format", "json"))

	if report.Reused != 4 {
		t.Errorf("reused = %d, want 4", report.Reused)
	}
	if report.Counts.Opened != 4 || report.Counts.Closed != 5 {
		t.Errorf("checkouts/returns = %d/%d, want 4/5", report.Counts.Opened, report.Counts.Closed)
	}
	if report.Counts.Queued != 1 {
		t.Errorf("idle = %d, want 1", report.Counts.Queued)
	}
}

func TestProbeConcurrentWorkers(t *testing.T) {
	database := testutil.DatabasePath(t)
	report := decodeReport(t, runCommand(t, "probe",
		"--db", database, "--workers", "3", "--iterations", "20", "--format", "json"))

	if report.Counts.Closed != 60 {
		t.Errorf("returns = %d, want 60", report.Counts.Closed)
	}
	if report.Counts.Opened != report.Reused {
		t.Errorf("checkouts = %d, reused = %d; want equal", report.Counts.Opened, report.Reused)
	}
	if report.Counts.Queued < 1 || report.Counts.Queued > 3 {
		t.Errorf("idle = %d, want between 1 and 3", report.Counts.Queued)
	}
}

func TestProbeWithoutPooling(t *testing.T) {
	database := testutil.DatabasePath(t)
	report := decodeReport(t, runCommand(t, "probe",
		"--db", database, "--strategy", "none", "--workers", "1", "--iterations", "3", "--format", "json"))
	if report.Reused != 0 || report.Counts.Closed != 0 {
		t.Errorf("report = %+v, want no pooling", report)
	}
}

func TestProbeMetrics(t *testing.T) {
	database := testutil.DatabasePath(t)
	output := runCommand(t, "probe", "--db", database, "--workers", "1", "--iterations", "2", "--metrics")
	for _, want := range []string{
		"litehost_pool_checkouts_total 1",
		"litehost_pool_returns_total 2",
		"litehost_pool_idle_connections_total 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestStatsReadsProbeSnapshot(t *testing.T) {
	database := testutil.DatabasePath(t)
	snapshotPath := filepath.Join(t.TempDir(), "probe.cbor")
	runCommand(t, "probe", "--db", database, "--workers", "1", "--iterations", "3", "--snapshot", snapshotPath)

	report := decodeReport(t, runCommand(t, "stats", snapshotPath, "--format", "json"))
	if report.Path != database || report.Iterations != 3 || report.Counts.Closed != 3 {
		t.Errorf("decoded snapshot = %+v", report)
	}

	diagnostic := runCommand(t, "stats", snapshotPath, "--format", "diag")
	if !strings.HasPrefix(diagnostic, "{1: ") {
		t.Errorf("diagnostic notation = %q, want a map keyed by integers", diagnostic)
	}
}

func TestFunctionsListsStockCatalog(t *testing.T) {
	got := runCommand(t, "functions")
	want := "scalar double/1\nwindow moving_sum/1\ncollation natural\naggregate sum_squares/1\n"
	if got != want {
		t.Errorf("functions output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRunRejectsUnknownInput(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"frobnicate"}, &stdout); err == nil {
		t.Error("unknown command succeeded")
	}
	if err := run([]string{"probe", "--format", "xml", "--db", "x.db"}, &stdout); err == nil {
		t.Error("probe --format xml succeeded")
	}
	if err := run([]string{"stats"}, &stdout); err == nil {
		t.Error("stats without a file succeeded")
	}
}

func TestVersion(t *testing.T) {
	if got := runCommand(t, "version"); !strings.HasPrefix(got, "litehost ") {
		t.Errorf("version output = %q", got)
	}
}
