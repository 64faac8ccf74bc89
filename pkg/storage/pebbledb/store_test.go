package pebbledb

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

func openTemp(t *testing.T, opts Options) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "signatures.db"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFreshStoreIsSeeded(t *testing.T) {
	store := openTemp(t, DefaultOptions())

	sig, found, err := store.Lookup("275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found {
		t.Fatal("EICAR seed signature missing from fresh store")
	}
	if sig.Name != "EICAR-Test-File" || sig.Category != models.CategoryVirus || sig.Severity != models.SeverityHigh {
		t.Errorf("seed signature = %+v", sig)
	}

	count, err := store.SignatureCount()
	if err != nil {
		t.Fatalf("SignatureCount: %v", err)
	}
	if count != 1 {
		t.Errorf("signature count = %d, want 1", count)
	}
}

func TestSkipSeedLeavesStoreEmpty(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipSeed = true
	store := openTemp(t, opts)

	count, err := store.SignatureCount()
	if err != nil {
		t.Fatalf("SignatureCount: %v", err)
	}
	if count != 0 {
		t.Errorf("signature count = %d, want 0", count)
	}
}

func TestLookupMissIsNotAnError(t *testing.T) {
	store := openTemp(t, DefaultOptions())
	_, found, err := store.Lookup("deadbeef")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Error("unexpected hit for unknown hash")
	}
}

func TestInsertIfAbsentNeverOverwrites(t *testing.T) {
	store := openTemp(t, DefaultOptions())
	sig := models.Signature{Hash: "abc123", Name: "First", Category: models.CategoryVirus, Severity: models.SeverityHigh}

	inserted, err := store.InsertIfAbsent(sig)
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("first insert reported as duplicate")
	}

	// Same hash, different payload: must be a no-op.
	dup := models.Signature{Hash: "abc123", Name: "Second", Category: models.CategoryRansomware, Severity: models.SeverityCritical}
	inserted, err = store.InsertIfAbsent(dup)
	if err != nil {
		t.Fatalf("InsertIfAbsent dup: %v", err)
	}
	if inserted {
		t.Error("duplicate hash reported as inserted")
	}

	got, _, err := store.Lookup("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "First" {
		t.Errorf("record was overwritten: %+v", got)
	}
}

func TestInsertEmptyHashRejected(t *testing.T) {
	store := openTemp(t, DefaultOptions())
	if _, err := store.InsertIfAbsent(models.Signature{Name: "NoHash"}); err == nil {
		t.Fatal("empty hash accepted")
	}
}

func TestUpdateDefinitionsIdempotent(t *testing.T) {
	store := openTemp(t, DefaultOptions())

	added, err := store.UpdateDefinitions(nil)
	if err != nil {
		t.Fatalf("UpdateDefinitions: %v", err)
	}
	if added != len(DefinitionUpdates) {
		t.Errorf("first update added %d, want %d", added, len(DefinitionUpdates))
	}

	added, err = store.UpdateDefinitions(nil)
	if err != nil {
		t.Fatalf("second UpdateDefinitions: %v", err)
	}
	if added != 0 {
		t.Errorf("second update added %d, want 0", added)
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	store := openTemp(t, DefaultOptions())
	base := time.Now().Add(-time.Hour)

	for i, typ := range []models.ScanType{models.ScanQuick, models.ScanFull, models.ScanCustom} {
		run := models.ScanRun{
			ScanType:     typ,
			FilesScanned: i + 1,
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
			FinishedAt:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		}
		if err := store.AppendHistory(run); err != nil {
			t.Fatalf("AppendHistory %d: %v", i, err)
		}
	}

	runs, err := store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	if runs[0].ScanType != models.ScanCustom || runs[2].ScanType != models.ScanQuick {
		t.Errorf("runs not most-recent-first: %v, %v, %v", runs[0].ScanType, runs[1].ScanType, runs[2].ScanType)
	}
}

func TestClearHistoryPreservesSignatures(t *testing.T) {
	store := openTemp(t, DefaultOptions())
	now := time.Now()
	if err := store.AppendHistory(models.ScanRun{ScanType: models.ScanQuick, StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatal(err)
	}

	if err := store.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	runs, err := store.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("history not empty after clear: %d entries", len(runs))
	}

	// Signatures live in a different bucket and must survive.
	if _, found, _ := store.Lookup("275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f"); !found {
		t.Error("seed signature lost by ClearHistory")
	}
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "signatures.db")

	store, err := Open(dbPath, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.InsertIfAbsent(models.Signature{Hash: "persist1", Name: "Keep"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dbPath, DefaultOptions())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, found, _ := reopened.Lookup("persist1"); !found {
		t.Error("signature lost across reopen")
	}
	ver, err := reopened.GetMetadata("schema_version")
	if err != nil {
		t.Fatal(err)
	}
	if ver != "1" {
		t.Errorf("schema_version = %q, want 1", ver)
	}
}

func TestRefusesSensitiveSystemPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("system path guard is linux-only")
	}
	if _, err := Open("/etc/nexashield/signatures.db", DefaultOptions()); err == nil {
		t.Fatal("store initialized under /etc")
	}
}

func TestReadOnlyRequiresExistingDB(t *testing.T) {
	opts := DefaultOptions()
	opts.ReadOnly = true
	if _, err := Open(filepath.Join(t.TempDir(), "missing.db"), opts); err == nil {
		t.Fatal("read-only open of missing database succeeded")
	}
}
