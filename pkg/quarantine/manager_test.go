package quarantine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	base := t.TempDir()
	mgr := NewManager(filepath.Join(base, "quarantine"), filepath.Join(base, "quarantine_log.json"))
	mgr.now = func() time.Time { return time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC) }
	return mgr, base
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestQuarantineMovesFileAndLogs(t *testing.T) {
	mgr, base := newTestManager(t)
	threat := writeTestFile(t, base, "downloads/invoice.pdf.exe", "malicious bytes")

	res, err := mgr.Quarantine([]string{threat})
	if err != nil {
		t.Fatalf("Quarantine: %v", err)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("failures: %+v", res.Failed)
	}
	if len(res.Succeeded) != 1 {
		t.Fatalf("succeeded = %d, want 1", len(res.Succeeded))
	}

	entry := res.Succeeded[0]
	if entry.OriginalPath != threat {
		t.Errorf("original path = %q", entry.OriginalPath)
	}
	wantName := "20260829143005_invoice.pdf.exe.quarantined"
	if filepath.Base(entry.QuarantinePath) != wantName {
		t.Errorf("cell name = %q, want %q", filepath.Base(entry.QuarantinePath), wantName)
	}
	if entry.Timestamp != "2026-08-29 14:30:05" {
		t.Errorf("timestamp = %q", entry.Timestamp)
	}

	// Original gone, cell holds the bytes.
	if _, err := os.Stat(threat); !os.IsNotExist(err) {
		t.Error("original file still present after quarantine")
	}
	moved, err := os.ReadFile(entry.QuarantinePath)
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if string(moved) != "malicious bytes" {
		t.Errorf("cell content = %q", moved)
	}

	statuses, err := mgr.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0].Status != models.QuarantineSecured {
		t.Errorf("entries = %+v", statuses)
	}
}

// Two same-named threats isolated within the same second must land in
// distinct cells with distinct log paths, and restoring one must not disturb
// the other's entry.
func TestSameNameSameSecondGetsDistinctCells(t *testing.T) {
	mgr, base := newTestManager(t) // fixed clock: every move shares one timestamp
	first := writeTestFile(t, base, "downloads/invoice.pdf.exe", "first payload")
	second := writeTestFile(t, base, "mail/invoice.pdf.exe", "second payload")

	res, err := mgr.Quarantine([]string{first, second})
	if err != nil {
		t.Fatalf("Quarantine: %v", err)
	}
	if len(res.Failed) != 0 || len(res.Succeeded) != 2 {
		t.Fatalf("result = %+v", res)
	}
	cellA, cellB := res.Succeeded[0].QuarantinePath, res.Succeeded[1].QuarantinePath
	if cellA == cellB {
		t.Fatalf("both entries share cell %q", cellA)
	}
	if got, _ := os.ReadFile(cellA); string(got) != "first payload" {
		t.Errorf("first cell content = %q", got)
	}
	if got, _ := os.ReadFile(cellB); string(got) != "second payload" {
		t.Errorf("second cell content = %q", got)
	}

	// Restoring one entry leaves the other quarantined and logged.
	if failures, err := mgr.Restore([]models.QuarantineEntry{res.Succeeded[1]}); err != nil || len(failures) != 0 {
		t.Fatalf("Restore: %v, %+v", err, failures)
	}
	if got, err := os.ReadFile(second); err != nil || string(got) != "second payload" {
		t.Fatalf("restored file: %v, %q", err, got)
	}
	statuses, err := mgr.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0].QuarantinePath != cellA {
		t.Fatalf("entries after restore = %+v, want only the first cell", statuses)
	}
	if statuses[0].Status != models.QuarantineSecured {
		t.Errorf("remaining entry status = %q", statuses[0].Status)
	}
}

func TestQuarantinePartialSuccess(t *testing.T) {
	mgr, base := newTestManager(t)
	real := writeTestFile(t, base, "real.exe", "x")
	ghost := filepath.Join(base, "already-gone.exe")

	res, err := mgr.Quarantine([]string{ghost, real})
	if err != nil {
		t.Fatalf("Quarantine: %v", err)
	}
	if len(res.Succeeded) != 1 || res.Succeeded[0].OriginalPath != real {
		t.Errorf("succeeded = %+v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].Path != ghost {
		t.Errorf("failed = %+v", res.Failed)
	}

	// Only the success lands in the log.
	statuses, err := mgr.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 {
		t.Errorf("log entries = %d, want 1", len(statuses))
	}
}

// Quarantine then restore puts the identical content back at the original
// path and leaves the log empty.
func TestRestoreRoundTrip(t *testing.T) {
	mgr, base := newTestManager(t)
	threat := writeTestFile(t, base, "deep/nested/dir/payload.bat", "round trip me")

	res, err := mgr.Quarantine([]string{threat})
	if err != nil || len(res.Succeeded) != 1 {
		t.Fatalf("Quarantine: %v, %+v", err, res)
	}

	// Simulate the original parent vanishing; restore must recreate it.
	if err := os.RemoveAll(filepath.Join(base, "deep")); err != nil {
		t.Fatal(err)
	}

	failures, err := mgr.Restore(res.Succeeded)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("failures: %+v", failures)
	}

	content, err := os.ReadFile(threat)
	if err != nil {
		t.Fatalf("restored file unreadable: %v", err)
	}
	if string(content) != "round trip me" {
		t.Errorf("restored content = %q", content)
	}

	statuses, err := mgr.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 0 {
		t.Errorf("log entries after restore = %+v", statuses)
	}
}

// A missing cell file is reported but the log entry is still removed; no
// zombie records.
func TestRestoreMissingCellDropsEntry(t *testing.T) {
	mgr, base := newTestManager(t)
	threat := writeTestFile(t, base, "gone.vbs", "x")

	res, err := mgr.Quarantine([]string{threat})
	if err != nil || len(res.Succeeded) != 1 {
		t.Fatalf("Quarantine: %v, %+v", err, res)
	}
	if err := os.Remove(res.Succeeded[0].QuarantinePath); err != nil {
		t.Fatal(err)
	}

	failures, err := mgr.Restore(res.Succeeded)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %+v, want 1", failures)
	}

	statuses, err := mgr.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 0 {
		t.Errorf("zombie log entry survived: %+v", statuses)
	}
}

func TestDeletePermanently(t *testing.T) {
	mgr, base := newTestManager(t)
	threat := writeTestFile(t, base, "purge-me.exe", "x")

	res, err := mgr.Quarantine([]string{threat})
	if err != nil || len(res.Succeeded) != 1 {
		t.Fatalf("Quarantine: %v, %+v", err, res)
	}
	cell := res.Succeeded[0].QuarantinePath

	failures, err := mgr.DeletePermanently(res.Succeeded)
	if err != nil {
		t.Fatalf("DeletePermanently: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("failures: %+v", failures)
	}
	if _, err := os.Stat(cell); !os.IsNotExist(err) {
		t.Error("cell file still present after purge")
	}

	// Purging an entry whose file is already gone is not an error.
	failures, err = mgr.DeletePermanently(res.Succeeded)
	if err != nil {
		t.Fatal(err)
	}
	if len(failures) != 0 {
		t.Errorf("absent file reported as failure: %+v", failures)
	}
}

func TestEntriesReportsMissingStatus(t *testing.T) {
	mgr, base := newTestManager(t)
	threat := writeTestFile(t, base, "flaky.exe", "x")

	res, err := mgr.Quarantine([]string{threat})
	if err != nil || len(res.Succeeded) != 1 {
		t.Fatalf("Quarantine: %v, %+v", err, res)
	}
	if err := os.Remove(res.Succeeded[0].QuarantinePath); err != nil {
		t.Fatal(err)
	}

	statuses, err := mgr.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0].Status != models.QuarantineMissing {
		t.Errorf("entries = %+v, want Missing", statuses)
	}
}

func TestQuarantineNameKeepsOriginalBase(t *testing.T) {
	mgr, base := newTestManager(t)
	threat := writeTestFile(t, base, "ReadMe.PDF.exe", "x")

	res, err := mgr.Quarantine([]string{threat})
	if err != nil || len(res.Succeeded) != 1 {
		t.Fatalf("Quarantine: %v, %+v", err, res)
	}
	name := filepath.Base(res.Succeeded[0].QuarantinePath)
	if !strings.Contains(name, "ReadMe.PDF.exe") || !strings.HasSuffix(name, ".quarantined") {
		t.Errorf("cell name = %q", name)
	}
}
